package mvc

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
)

var errNoRenderer = errors.New("mvc: no renderer configured")

// DefaultRootNamespace is the namespace every controller name is qualified
// with unless WithRootNamespace overrides it.
const DefaultRootNamespace = "controllers"

// Target is the result of resolving a path: the qualified controller
// identifier, the camelCase action name and the route parameters.
type Target struct {
	Controller string
	Action     string
	Params     Params
}

// String returns "Controller.action".
func (t Target) String() string {
	return t.Controller + "." + t.Action
}

// ErrorHandler renders a request-terminating error. ServeHTTP hands every
// dispatch error to it.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Option configures a Router.
type Option func(*Router)

// Router maps request paths to controller actions through an ordered table
// of regular-expression routes.
//
// Usage:
//  1. Create a router with New
//  2. Add routes with Add
//  3. Register controllers with Register
//  4. Serve requests with ServeHTTP, or call Dispatch directly
//
// Router is safe for concurrent use after configuration. Do not call Add or
// Register after serving the first request.
type Router struct {
	routes       []Route
	controllers  map[string]*controllerType
	hooks        hooks
	root         string
	queryRouting bool
	renderer     Renderer
	errorHandler ErrorHandler
}

// New creates a Router with the given options.
//
// Example:
//
//	r := mvc.New(
//	    mvc.WithRenderer(views),
//	    mvc.WithErrorHandler(pages.Handle),
//	)
//	r.Add("", mvc.Params{"controller": "Home", "action": "index"})
//	r.Add("{controller}/{action}", nil)
//	r.Add(`{controller}/{action}/{id:\d+}`, nil)
func New(opts ...Option) *Router {
	r := &Router{
		controllers:  make(map[string]*controllerType),
		root:         DefaultRootNamespace,
		errorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithRootNamespace sets the namespace controller names are qualified with.
func WithRootNamespace(ns string) Option {
	return func(r *Router) {
		r.root = ns
	}
}

// WithRenderer sets the renderer handed to every Context.
func WithRenderer(renderer Renderer) Option {
	return func(r *Router) {
		r.renderer = renderer
	}
}

// WithErrorHandler sets the handler ServeHTTP uses for dispatch errors.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Router) {
		r.errorHandler = h
	}
}

// WithQueryRouting makes ServeHTTP take the path to dispatch from the raw
// query string instead of the URL path. This supports deployments that
// rewrite "/departments/create" to "/?departments/create".
func WithQueryRouting() Option {
	return func(r *Router) {
		r.queryRouting = true
	}
}

// Add appends a route to the routing table. The template consists of
// literal segments and placeholders:
//
//	{name}        matches one or more lowercase letters or hyphens
//	{name:regex}  matches regex
//
// The route matches the whole path, case-insensitively. A template that
// does not compile is kept and reported by Match when reached.
func (r *Router) Add(template string, defaults Params) {
	r.routes = append(r.routes, newRoute(template, defaults))
}

// Routes returns the routing table in registration order.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// ControllerInfo describes a registered controller.
type ControllerInfo struct {
	Name    string
	Actions []string
}

// Controllers returns the registered controllers sorted by name.
func (r *Router) Controllers() []ControllerInfo {
	out := make([]ControllerInfo, 0, len(r.controllers))
	for _, ct := range r.controllers {
		out = append(out, ControllerInfo{Name: ct.name, Actions: append([]string(nil), ct.actions...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Match tries each route in registration order and returns the parameters
// of the first one that matches path: the route defaults merged with the
// named captures, captures winning. It returns nil parameters and a nil
// error when nothing matches, and an error if a route reached before a
// match has a malformed template.
func (r *Router) Match(path string) (Params, error) {
	for _, rt := range r.routes {
		if rt.err != nil {
			return nil, fmt.Errorf("compile route %q: %w", rt.Template, rt.err)
		}
		if params, ok := rt.match(path); ok {
			return params, nil
		}
	}
	return nil, nil
}

// Resolve turns a URL into a dispatch target without invoking anything:
//
//  1. Strip query-string variables (see StripQuery)
//  2. Match the path against the routing table
//  3. Convert the "controller" parameter to StudlyCaps, prefixed with the
//     route's "namespace" parameter (if any) and the root namespace
//  4. Check the controller is registered
//  5. Convert the "action" parameter to camelCase
//  6. Reject action names ending in "action", which are reserved
//  7. Match the controller and action against the registered names,
//     ignoring case
//
// Every failure is a NotFound error.
func (r *Router) Resolve(url string) (Target, error) {
	path := StripQuery(url)

	params, err := r.Match(path)
	if err != nil {
		return Target{}, Internal(err)
	}
	if params == nil {
		return Target{}, NotFound("No route matched.")
	}

	name := StudlyCaps(params["controller"])
	if name == "" {
		return Target{}, NotFound("Route for %q has no controller", path)
	}
	if ns := params["namespace"]; ns != "" {
		name = ns + "." + name
	}
	controller := r.qualify(name)

	ct, ok := r.controller(controller)
	if !ok {
		return Target{}, NotFound("Controller class %s not found.", controller).
			WithSuggestion(closest(controller, r.controllerNames()))
	}
	controller = ct.name

	action := CamelCase(params["action"])
	if action == "" {
		return Target{}, NotFound("Route for %q has no action", path)
	}
	if strings.HasSuffix(strings.ToLower(action), "action") {
		base := action[:len(action)-len("action")]
		suggestion, ok := ct.lookup(base)
		if !ok {
			suggestion = closest(base, ct.actions)
		}
		return Target{}, NotFound("Method %s (in controller %s) not found.", action, controller).
			WithSuggestion(suggestion)
	}
	if a, ok := ct.lookup(action); ok {
		action = a
	}

	return Target{Controller: controller, Action: action, Params: params}, nil
}

// Dispatch resolves url, builds the controller with the route parameters
// and invokes the action.
//
// Hooks are called at appropriate points throughout this flow. A panic in
// the action is reported to the OnFailure hooks and then re-raised.
func (r *Router) Dispatch(w http.ResponseWriter, req *http.Request, url string) error {
	t, err := r.Resolve(url)
	if err != nil {
		if StatusOf(err) == http.StatusNotFound {
			r.callOnNotFound(req.Context(), url, err)
		}
		return err
	}

	ctx := r.callOnMatch(req.Context(), t)
	req = req.WithContext(ctx)
	c := NewContext(w, req, t, r.renderer)

	r.callOnDispatch(ctx, t)

	start := time.Now()
	defer func() {
		if v := recover(); v != nil {
			r.callOnFailure(ctx, t, Internal(fmt.Errorf("panic: %v", v)), time.Since(start))
			panic(v)
		}
	}()

	ct := r.controllers[t.Controller]
	err = ct.invoke(c, t.Action)
	duration := time.Since(start)

	if err != nil {
		if !ct.has(t.Action) {
			r.callOnNotFound(ctx, url, err)
		}
		r.callOnFailure(ctx, t, err, duration)
		return err
	}

	r.callOnSuccess(ctx, t, duration)
	return nil
}

// ServeHTTP is the front controller: it dispatches the request's effective
// path and passes any error to the error handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if err := r.Dispatch(w, req, r.Path(req)); err != nil {
		r.errorHandler(w, req, err)
	}
}

// Path returns the path ServeHTTP dispatches for req: the URL path without
// surrounding slashes, or the raw query string with WithQueryRouting.
func (r *Router) Path(req *http.Request) string {
	if r.queryRouting {
		return req.URL.RawQuery
	}
	return strings.Trim(req.URL.Path, "/")
}

// controller finds a registered controller by qualified name, ignoring case.
func (r *Router) controller(name string) (*controllerType, bool) {
	if ct, ok := r.controllers[name]; ok {
		return ct, true
	}
	for key, ct := range r.controllers {
		if strings.EqualFold(key, name) {
			return ct, true
		}
	}
	return nil, false
}

func (r *Router) qualify(name string) string {
	if r.root == "" {
		return name
	}
	return r.root + "." + name
}

func (r *Router) controllerNames() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	http.Error(w, err.Error(), StatusOf(err))
}

// closest returns the candidate nearest to name by edit distance, or "" if
// none is close enough to be a plausible typo.
func closest(name string, candidates []string) string {
	best, bestDist := "", -1
	lower := strings.ToLower(name)
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist < 0 || bestDist > limit {
		return ""
	}
	return best
}
