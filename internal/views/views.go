// Package views renders the application's HTML pages from embedded
// templates. Every page is executed inside layout.html and defines the
// "title" and "content" blocks.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed templates
var embedded embed.FS

const layoutName = "layout.html"

// Views renders named pages. Templates are parsed on first use and cached
// for the life of the process.
type Views struct {
	fsys   fs.FS
	prefix string

	once  sync.Once
	pages map[string]*template.Template
	err   error
}

// Option configures Views.
type Option func(*Views)

// WithFS replaces the embedded templates with fsys. The file system must
// contain layout.html at its root.
func WithFS(fsys fs.FS) Option {
	return func(v *Views) {
		v.fsys = fsys
	}
}

// WithQueryLinks makes generated links carry the route in the query
// string ("/?departments/index") instead of the path.
func WithQueryLinks() Option {
	return func(v *Views) {
		v.prefix = "/?"
	}
}

// New returns Views over the embedded templates.
func New(opts ...Option) *Views {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	v := &Views{fsys: sub, prefix: "/"}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Render executes the named page (e.g. "Departments/index.html") with data
// and writes it to w. Nothing is written if execution fails.
func (v *Views) Render(w io.Writer, name string, data map[string]any) error {
	pages, err := v.load()
	if err != nil {
		return err
	}
	t, ok := pages[name]
	if !ok {
		return fmt.Errorf("template %q: %w", name, fs.ErrNotExist)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// Has reports whether a page with the given name exists.
func (v *Views) Has(name string) bool {
	pages, err := v.load()
	if err != nil {
		return false
	}
	_, ok := pages[name]
	return ok
}

// Names returns the page names in sorted order.
func (v *Views) Names() ([]string, error) {
	pages, err := v.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(pages))
	for name := range pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// URL returns the link for a route path in the configured style.
func (v *Views) URL(route string) template.URL {
	route = strings.Trim(route, "/")
	if route == "" {
		return "/"
	}
	return template.URL(v.prefix + route)
}

func (v *Views) load() (map[string]*template.Template, error) {
	v.once.Do(func() {
		v.pages, v.err = v.parse()
	})
	return v.pages, v.err
}

func (v *Views) parse() (map[string]*template.Template, error) {
	funcs := template.FuncMap{"url": v.URL}

	layout, err := template.New(layoutName).Funcs(funcs).ParseFS(v.fsys, layoutName)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template)
	err = fs.WalkDir(v.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".html" || p == layoutName {
			return nil
		}
		t, err := layout.Clone()
		if err != nil {
			return err
		}
		if _, err := t.ParseFS(v.fsys, p); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		pages[p] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}
