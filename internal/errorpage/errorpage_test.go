package errorpage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/bjaus/mvc"
)

type call struct {
	page string
	data map[string]any
}

type fakeRenderer struct {
	calls []call
	pages map[string]bool
	err   error
}

func (f *fakeRenderer) Render(w io.Writer, name string, data map[string]any) error {
	f.calls = append(f.calls, call{page: name, data: data})
	if f.err != nil {
		return f.err
	}
	_, err := fmt.Fprintf(w, "page=%s", name)
	return err
}

func (f *fakeRenderer) Has(name string) bool {
	return f.pages[name]
}

type HandlerSuite struct {
	suite.Suite
	renderer *fakeRenderer
	handler  *Handler
	logDir   string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.renderer = &fakeRenderer{pages: map[string]bool{"Error.html": true, "404.html": true, "500.html": true}}
	s.logDir = filepath.Join(s.T().TempDir(), "logs")
	s.handler = &Handler{
		LogDir:   s.logDir,
		Renderer: s.renderer,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return time.Date(2023, 7, 20, 12, 0, 0, 0, time.UTC) },
	}
}

func (s *HandlerSuite) handle(err error) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.Handle(rec, httptest.NewRequest(http.MethodPost, "/departments/create-department", nil), err)
	return rec
}

func (s *HandlerSuite) logContents() string {
	b, err := os.ReadFile(filepath.Join(s.logDir, "2023-07-20.txt"))
	if err != nil {
		return ""
	}
	return string(b)
}

func (s *HandlerSuite) TestDisplayErrorRendersErrorPage() {
	rec := s.handle(mvc.Titled("Department Entry Error", mvc.ValidationFailed("Department name can not be empty")))

	s.Equal(http.StatusNotAcceptable, rec.Code)
	s.Require().Len(s.renderer.calls, 1)
	s.Equal("Error.html", s.renderer.calls[0].page)
	s.Equal(map[string]any{
		"title":   "Department Entry Error",
		"code":    http.StatusNotAcceptable,
		"message": "Department name can not be empty",
	}, s.renderer.calls[0].data)
	s.Empty(s.logContents())
}

func (s *HandlerSuite) TestDisplayErrorIgnoresShowErrors() {
	s.handler.ShowErrors = true

	rec := s.handle(mvc.PersistenceFailure("Role Database Error", errors.New("disk full")))

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("Error.html", s.renderer.calls[0].page)
	s.Equal("disk full", s.renderer.calls[0].data["message"])
}

func (s *HandlerSuite) TestShowErrorsRendersDiagnostics() {
	s.handler.ShowErrors = true

	rec := s.handle(mvc.NotFound("No route matched."))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Exception.html", s.renderer.calls[0].page)
	data := s.renderer.calls[0].data
	s.Equal("*mvc.Error", data["type"])
	s.Equal("No route matched.", data["message"])
	s.Contains(data["location"], "errorpage_test.go")
	s.Empty(s.logContents())
}

func (s *HandlerSuite) TestShowErrorsReportsRootCause() {
	s.handler.ShowErrors = true

	s.handle(fmt.Errorf("load: %w", os.ErrPermission))

	data := s.renderer.calls[0].data
	s.Equal([]string{os.ErrPermission.Error()}, data["chain"])
}

func (s *HandlerSuite) TestHiddenErrorsAreLogged() {
	rec := s.handle(mvc.NotFound("Controller class controllers.Widgets not found."))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("404.html", s.renderer.calls[0].page)

	incident, _ := s.renderer.calls[0].data["incident"].(string)
	s.NotEmpty(incident)

	log := s.logContents()
	s.Contains(log, "Uncaught exception")
	s.Contains(log, "incident="+incident)
	s.Contains(log, "Controller class controllers.Widgets not found.")
	s.Contains(log, "status=404")
	s.Contains(log, separator)
}

func (s *HandlerSuite) TestLogAppends() {
	s.handle(errors.New("first"))
	s.handle(errors.New("second"))

	log := s.logContents()
	s.Contains(log, "first")
	s.Contains(log, "second")
	s.Equal(2, strings.Count(log, separator))
}

func (s *HandlerSuite) TestMissingStatusPageFallsBack() {
	rec := s.handle(mvc.MethodNotAllowed("Method not allowed"))

	s.Equal(http.StatusMethodNotAllowed, rec.Code)
	s.Equal("Error.html", s.renderer.calls[0].page)
	s.Equal("Method Not Allowed", s.renderer.calls[0].data["title"])
}

func (s *HandlerSuite) TestRenderFailureWritesPlainPage() {
	s.renderer.err = errors.New("template broken")

	rec := s.handle(errors.New("boom"))

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), "500 Internal Server Error")
}

func (s *HandlerSuite) TestNoRenderer() {
	s.handler.Renderer = nil

	rec := s.handle(mvc.NotFound("x"))

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestRecover() {
	s.handler.ShowErrors = true
	h := s.handler.Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Equal(http.StatusInternalServerError, rec.Code)
	data := s.renderer.calls[0].data
	s.Equal("string", data["type"])
	s.Equal("panic: kaboom", data["message"])
	s.Contains(data["stack"], "goroutine")
}

func (s *HandlerSuite) TestRecoverPassesThrough() {
	h := s.handler.Recover(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	s.Equal(http.StatusNoContent, rec.Code)
	s.Empty(s.renderer.calls)
}
