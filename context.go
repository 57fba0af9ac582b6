package mvc

import (
	"context"
	"io"
	"net/http"
)

// Renderer turns a template name and argument bag into output.
type Renderer interface {
	Render(w io.Writer, name string, data map[string]any) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(w io.Writer, name string, data map[string]any) error

// Render implements Renderer.
func (f RendererFunc) Render(w io.Writer, name string, data map[string]any) error {
	return f(w, name, data)
}

var jsonBody = ContentType("application/json")

// Context is the per-request state handed to a controller. It lives for
// exactly one dispatch.
type Context struct {
	// Params are the route parameters of the matched route. They must not
	// be modified.
	Params Params

	// Target is the resolved controller and action.
	Target Target

	Request  *http.Request
	Response http.ResponseWriter

	renderer Renderer

	fields    View
	fieldsErr error
	inspected bool
}

// NewContext builds a Context. Dispatch calls this; tests may too.
func NewContext(w http.ResponseWriter, r *http.Request, t Target, renderer Renderer) *Context {
	return &Context{
		Params:   t.Params,
		Target:   t,
		Request:  r,
		Response: w,
		renderer: renderer,
	}
}

// Context returns the request's context.Context.
func (c *Context) Context() context.Context {
	return c.Request.Context()
}

// Param returns a route parameter, or "" if absent.
func (c *Context) Param(name string) string {
	return c.Params.Get(name)
}

// Method returns the HTTP method of the request.
func (c *Context) Method() string {
	return c.Request.Method
}

// Is reports whether the request satisfies m.
func (c *Context) Is(m Matcher) bool {
	return m.Match(c)
}

// Fields returns a View over the submitted body fields. JSON bodies are read
// with JSONInspector, everything else with FormInspector. The body is read
// at most once.
func (c *Context) Fields() (View, error) {
	if !c.inspected {
		c.inspected = true
		insp := FormInspector()
		if c.Is(jsonBody) {
			insp = JSONInspector()
		}
		c.fields, c.fieldsErr = insp.Inspect(c.Request)
	}
	return c.fields, c.fieldsErr
}

// Field returns a submitted field value, or "" if absent or unreadable.
func (c *Context) Field(name string) string {
	v, err := c.Fields()
	if err != nil {
		return ""
	}
	s, _ := v.GetString(name)
	return s
}

// Render writes the named template as an HTML page.
func (c *Context) Render(name string, data map[string]any) error {
	if c.renderer == nil {
		return Internal(errNoRenderer)
	}
	c.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
	return c.renderer.Render(c.Response, name, data)
}
