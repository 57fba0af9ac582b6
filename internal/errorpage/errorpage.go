// Package errorpage is the application's top-level error handler. Display
// errors are rendered on the entry-error page; everything else is either
// shown with diagnostics or logged to a date-stamped file behind a generic
// status page.
package errorpage

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bjaus/mvc"
)

const separator = "--------------------------------------------------------------------------------------"

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Handler renders request-terminating errors.
type Handler struct {
	// ShowErrors renders diagnostics for unhandled errors instead of
	// logging them.
	ShowErrors bool

	// LogDir receives one <YYYY-MM-DD>.txt file per day.
	LogDir string

	Renderer mvc.Renderer
	Logger   *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time

	mu sync.Mutex
}

// Handle implements mvc.ErrorHandler.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	status := mvc.StatusOf(err)

	var e *mvc.Error
	if errors.As(err, &e) && e.Displayed() {
		h.render(w, status, "Error.html", map[string]any{
			"title":   e.Title,
			"code":    status,
			"message": e.Text(),
		})
		return
	}

	if h.ShowErrors {
		h.render(w, status, "Exception.html", diagnostics(err, status))
		return
	}

	incident := uuid.NewString()
	if logErr := h.log(r, err, status, incident); logErr != nil {
		h.logger().ErrorContext(r.Context(), "write error log", "error", logErr)
	}
	h.logger().ErrorContext(r.Context(), "unhandled error",
		"incident", incident,
		"status", status,
		"path", r.URL.Path,
		"error", err,
	)

	data := map[string]any{"code": status, "incident": incident}
	page := strconv.Itoa(status) + ".html"
	if hr, ok := h.Renderer.(interface{ Has(string) bool }); ok && !hr.Has(page) {
		page = "Error.html"
		data["title"] = http.StatusText(status)
		data["message"] = "An error occurred (incident " + incident + ")."
	}
	h.render(w, status, page, data)
}

// Recover converts panics in next into unhandled errors.
func (h *Handler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				h.Handle(w, r, mvc.Internal(&PanicError{Value: v, Stack: debug.Stack()}))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data map[string]any) {
	if h.Renderer == nil {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.Renderer.Render(w, page, data); err != nil {
		h.logger().Error("render error page", "page", page, "error", err)
		fmt.Fprintf(w, "<h1>%d %s</h1>", status, http.StatusText(status))
	}
}

// log appends an entry for err to today's log file.
func (h *Handler) log(r *http.Request, err error, status int, incident string) error {
	if h.LogDir == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if mkErr := os.MkdirAll(h.LogDir, 0o755); mkErr != nil {
		return mkErr
	}
	path := filepath.Join(h.LogDir, h.now().Format(time.DateOnly)+".txt")
	f, openErr := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if openErr != nil {
		return openErr
	}
	defer f.Close()

	d := diagnostics(err, status)
	attrs := []slog.Attr{
		slog.String("incident", incident),
		slog.String("method", r.Method),
		slog.String("url", r.URL.String()),
		slog.Int("status", status),
		slog.Any("type", d["type"]),
		slog.Any("message", d["message"]),
	}
	if loc, ok := d["location"]; ok {
		attrs = append(attrs, slog.Any("location", loc))
	}
	if stack, ok := d["stack"]; ok {
		attrs = append(attrs, slog.Any("stack", stack))
	}

	logger := slog.New(slog.NewTextHandler(f, nil))
	logger.LogAttrs(r.Context(), slog.LevelError, "Uncaught exception", attrs...)
	_, writeErr := fmt.Fprintln(f, separator)
	return writeErr
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// diagnostics describes err for the exception page and the log file.
func diagnostics(err error, status int) map[string]any {
	root := err
	var chain []string
	for next := errors.Unwrap(root); next != nil; next = errors.Unwrap(root) {
		chain = append(chain, next.Error())
		root = next
	}

	d := map[string]any{
		"code":    status,
		"type":    fmt.Sprintf("%T", root),
		"message": err.Error(),
		"chain":   chain,
	}

	var e *mvc.Error
	if errors.As(err, &e) && e.Location != nil {
		d["location"] = e.Location.String()
	}
	var p *PanicError
	if errors.As(err, &p) {
		d["type"] = fmt.Sprintf("%T", p.Value)
		d["stack"] = string(p.Stack)
	}
	return d
}
