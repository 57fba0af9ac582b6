package mvc

import (
	"errors"
	"sort"
	"strings"
)

// Action handles one logical action of controller type C. Actions are
// usually method expressions:
//
//	mvc.Actions[*Departments]{
//	    "index":  (*Departments).Index,
//	    "create": (*Departments).Create,
//	}
type Action[C any] func(ctrl C, c *Context) error

// Actions maps logical action names (camelCase, as produced from the route's
// "action" parameter) to handlers.
type Actions[C any] map[string]Action[C]

// Beforer is an optional interface controllers implement to run code before
// every action. Returning ErrAbort skips the action and the After hook
// without raising an error; any other error fails the request.
type Beforer interface {
	Before(c *Context) error
}

// Afterer is an optional interface controllers implement to run code after
// every action that completed without error.
type Afterer interface {
	After(c *Context) error
}

// controllerType is the type-erased registration of a controller.
type controllerType struct {
	name    string
	actions []string
	folded  map[string]string // lower-cased action -> registered spelling
	invoke  func(c *Context, action string) error
}

// Register adds a controller type under name. The name is relative to the
// router's root namespace and may carry a sub-namespace, e.g. "Admin.Users".
// build is called once per dispatch with the request context; the returned
// value receives the action call.
//
// This is a package-level function (not a method) due to Go generics
// limitations: methods cannot have type parameters independent of the
// receiver.
//
// Example:
//
//	mvc.Register(r, "Departments", func(c *mvc.Context) (*Departments, error) {
//	    return &Departments{store: store}, nil
//	}, mvc.Actions[*Departments]{
//	    "index": (*Departments).Index,
//	})
func Register[C any](r *Router, name string, build func(c *Context) (C, error), actions Actions[C]) {
	qualified := r.qualify(name)
	names := make([]string, 0, len(actions))
	for a := range actions {
		names = append(names, a)
	}
	sort.Strings(names)

	folded := make(map[string]string, len(names))
	for _, a := range names {
		folded[strings.ToLower(a)] = a
	}

	r.controllers[qualified] = &controllerType{
		name:    qualified,
		actions: names,
		folded:  folded,
		invoke: func(c *Context, action string) error {
			if a, ok := folded[strings.ToLower(action)]; ok {
				action = a
			}
			ctrl, err := build(c)
			if err != nil {
				return err
			}
			return invoke(ctrl, qualified, actions, names, c, action)
		},
	}
}

// lookup returns the registered spelling of action, ignoring case.
func (ct *controllerType) lookup(action string) (string, bool) {
	a, ok := ct.folded[strings.ToLower(action)]
	return a, ok
}

func (ct *controllerType) has(action string) bool {
	_, ok := ct.lookup(action)
	return ok
}

// invoke runs the named action on ctrl, wrapped in the optional Before and
// After hooks. A Before veto skips both the action and After.
func invoke[C any](ctrl C, typeName string, actions Actions[C], names []string, c *Context, name string) error {
	fn, ok := actions[name]
	if !ok {
		return NotFound("Method %sAction not found in controller %s", name, typeName).
			WithSuggestion(closest(name, names))
	}

	if b, ok := any(ctrl).(Beforer); ok {
		if err := b.Before(c); err != nil {
			if errors.Is(err, ErrAbort) {
				return nil
			}
			return err
		}
	}

	if err := fn(ctrl, c); err != nil {
		return err
	}

	if a, ok := any(ctrl).(Afterer); ok {
		return a.After(c)
	}
	return nil
}
