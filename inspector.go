package mvc

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a JSON request body is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// maxBodyBytes bounds how much of a request body an inspector reads.
const maxBodyBytes = 1 << 20

// Inspector examines a request and returns a View over its submitted fields.
// Different inspectors handle different encodings (forms, JSON).
type Inspector interface {
	Inspect(r *http.Request) (View, error)
}

// View provides encoding-agnostic access to submitted fields.
type View interface {
	// HasField returns true if the field was submitted.
	HasField(name string) bool

	// GetString returns the field value, or false if it was not submitted
	// or is not a scalar.
	GetString(name string) (string, bool)
}

// FormInspector returns an Inspector over url-encoded and multipart form
// bodies. Only body fields are visible; query-string values are ignored.
func FormInspector() Inspector {
	return formInspector{}
}

type formInspector struct{}

func (formInspector) Inspect(r *http.Request) (View, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	return formView{r: r}, nil
}

type formView struct {
	r *http.Request
}

func (v formView) HasField(name string) bool {
	_, ok := v.r.PostForm[name]
	return ok
}

func (v formView) GetString(name string) (string, bool) {
	vals, ok := v.r.PostForm[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// JSONInspector returns an Inspector that uses gjson for field access.
// Field names are gjson paths, so nested values can be addressed with dots.
func JSONInspector() Inspector {
	return jsonInspector{}
}

type jsonInspector struct{}

func (jsonInspector) Inspect(r *http.Request) (View, error) {
	if r.Body == nil {
		return jsonView{}, nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(raw) == 0 {
		return jsonView{}, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	return jsonView{raw: raw}, nil
}

type jsonView struct {
	raw []byte
}

func (v jsonView) HasField(path string) bool {
	return gjson.GetBytes(v.raw, path).Exists()
}

func (v jsonView) GetString(path string) (string, bool) {
	r := gjson.GetBytes(v.raw, path)
	if !r.Exists() {
		return "", false
	}
	switch r.Type {
	case gjson.String, gjson.Number:
		return r.String(), true
	default:
		return "", false
	}
}
