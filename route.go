package mvc

import (
	"regexp"
	"strings"
)

// Params holds route parameters: the defaults a route was registered with,
// merged with the named captures of the matched path.
type Params map[string]string

// Get returns the named parameter, or "" if absent.
func (p Params) Get(name string) string {
	return p[name]
}

// clone returns a shallow copy so a route's defaults are never mutated by
// a match.
func (p Params) clone() Params {
	out := make(Params, len(p)+2)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Route is a compiled path-matching rule plus its default parameters.
// Routes are immutable once added.
type Route struct {
	// Template is the path template the route was registered with.
	Template string

	// Expr is the regular expression the template compiled to.
	Expr string

	// Defaults are the parameters supplied at registration.
	Defaults Params

	re  *regexp.Regexp
	err error
}

var (
	slashPattern       = regexp.MustCompile(`/`)
	placeholderPattern = regexp.MustCompile(`\{([a-z]+)\}`)
	customPattern      = regexp.MustCompile(`\{([a-z]+):([^}]+)\}`)
)

// compileTemplate turns a route template into an anchored, case-insensitive
// expression:
//
//	"{controller}/{action}/{id:\d+}"
//	=> `(?i)^(?P<controller>[a-z-]+)\/(?P<action>[a-z-]+)\/(?P<id>\d+)$`
func compileTemplate(template string) string {
	expr := slashPattern.ReplaceAllString(template, `\/`)
	expr = placeholderPattern.ReplaceAllString(expr, `(?P<${1}>[a-z-]+)`)
	expr = customPattern.ReplaceAllString(expr, `(?P<${1}>${2})`)
	return `(?i)^` + expr + `$`
}

func newRoute(template string, defaults Params) Route {
	expr := compileTemplate(template)
	re, err := regexp.Compile(expr)
	if defaults == nil {
		defaults = Params{}
	}
	return Route{
		Template: template,
		Expr:     expr,
		Defaults: defaults,
		re:       re,
		err:      err,
	}
}

// match attempts a full match of path. Captures are applied after the
// defaults, so a capture wins over a default of the same name.
func (rt Route) match(path string) (Params, bool) {
	m := rt.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	params := rt.Defaults.clone()
	for i, name := range rt.re.SubexpNames() {
		if name != "" {
			params[name] = m[i]
		}
	}
	return params, true
}

// StripQuery removes trailing query-string variables from a URL that was
// taken from the raw query string. Everything after the first "&" is
// dropped; if what remains contains "=", it is a bare variable with no
// path component and the result is "".
//
//	"departments/update/4&sort=asc" => "departments/update/4"
//	"page=2&sort=asc"               => ""
func StripQuery(url string) string {
	if url == "" {
		return url
	}
	first, _, _ := strings.Cut(url, "&")
	if strings.Contains(first, "=") {
		return ""
	}
	return first
}

// StudlyCaps converts a hyphenated string to StudlyCaps:
//
//	"post-authors" => "PostAuthors"
func StudlyCaps(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, word := range strings.Split(s, "-") {
		if word == "" {
			continue
		}
		b.WriteString(strings.ToUpper(word[:1]))
		b.WriteString(word[1:])
	}
	return b.String()
}

// CamelCase converts a hyphenated string to camelCase:
//
//	"add-new" => "addNew"
func CamelCase(s string) string {
	studly := StudlyCaps(s)
	if studly == "" {
		return studly
	}
	return strings.ToLower(studly[:1]) + studly[1:]
}
