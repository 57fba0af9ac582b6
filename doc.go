// Package mvc provides a small front-controller framework for server-rendered
// web applications.
//
// The mvc package maps request paths to controller actions through an
// ordered table of regular-expression routes, builds a controller for each
// request, and invokes the requested action between optional before and
// after hooks. Data access and rendering stay in the application; the
// framework only hands actions their route parameters, the request, and a
// Renderer.
//
// # Quick Start
//
// Define a controller and its actions:
//
//	type Departments struct {
//	    store *models.Departments
//	}
//
//	func (d *Departments) Index(c *mvc.Context) error {
//	    list, err := d.store.ReadAll(c.Context())
//	    if err != nil {
//	        return err
//	    }
//	    return c.Render("Departments/index.html", map[string]any{"departments": list})
//	}
//
// Create a router, add routes, and register the controller:
//
//	r := mvc.New(mvc.WithRenderer(views))
//
//	r.Add("", mvc.Params{"controller": "Home", "action": "index"})
//	r.Add("{controller}/{action}", nil)
//	r.Add(`{controller}/{action}/{id:\d+}`, nil)
//
//	mvc.Register(r, "Departments", newDepartments, mvc.Actions[*Departments]{
//	    "index": (*Departments).Index,
//	})
//
//	http.ListenAndServe(":8080", r)
//
// # Routes
//
// A route template is made of literal segments and placeholders:
//
//   - {name} matches one or more lowercase letters or hyphens
//   - {name:regex} matches the given regular expression
//
// Templates compile to anchored, case-insensitive expressions. Routes are
// tried in registration order and the first match wins; its parameters are
// the route's defaults overlaid with the named captures of the path.
//
// Every match must yield "controller" and "action" parameters. The
// controller name is converted from hyphenated lowercase to StudlyCaps
// ("post-authors" => "PostAuthors") and qualified with the optional
// "namespace" parameter and the root namespace; the action name is
// converted to camelCase ("add-new" => "addNew"). Both are then looked up
// without regard to case, so "departments/INDEX" reaches "index".
//
// # Actions
//
// Actions are registered explicitly, once, as a map from logical name to
// method expression. Action names ending in "action" are reserved and can
// never be reached from a path.
//
// Controllers can implement Beforer and Afterer. Before runs ahead of every
// action; returning ErrAbort skips the action and After without failing the
// request. After runs only when the action succeeded.
//
// # Query-string Routing
//
// Some deployments pass the whole query string to the application in place
// of a path. With WithQueryRouting, ServeHTTP dispatches the raw query and
// StripQuery drops everything after the first "&"; a remainder containing
// "=" is a bare variable and routes as the empty path.
//
// # Hooks
//
// Hooks provide observability without coupling to specific logging or
// metrics systems:
//
//	r := mvc.New(
//	    mvc.WithOnMatch(func(ctx context.Context, t mvc.Target) context.Context {
//	        return logx.WithCtx(ctx, slog.String("target", t.String()))
//	    }),
//	    mvc.WithOnFailure(func(ctx context.Context, t mvc.Target, err error, d time.Duration) {
//	        metrics.Incr("dispatch.error", "target:"+t.String())
//	    }),
//	)
//
// Available hooks:
//   - WithOnMatch: Called after a path resolves, enriches context
//   - WithOnDispatch: Called just before the action executes
//   - WithOnSuccess: Called after the action succeeds
//   - WithOnFailure: Called after the action fails
//   - WithOnNotFound: Called when a path cannot be resolved
//
// # Error Handling
//
// Every failure ends the request. Actions return errors, usually *Error
// values built with NotFound, MethodNotAllowed, ValidationFailed,
// PersistenceFailure or Display, and ServeHTTP passes them to the
// configured ErrorHandler, which picks the status with StatusOf.
//
// # Thread Safety
//
// Router is safe for concurrent use after configuration is complete. Do not
// call Add or Register after serving the first request. A Context belongs to
// a single request.
package mvc
