package mvc

import (
	"context"
	"time"
)

// OnMatchFunc is called after a path resolves to a controller and action.
// Use this to enrich the context with logging fields or trace spans.
// The returned context is used for the rest of the request.
type OnMatchFunc func(ctx context.Context, t Target) context.Context

// OnDispatchFunc is called just before the controller is built and the
// action invoked.
type OnDispatchFunc func(ctx context.Context, t Target)

// OnSuccessFunc is called after the action completes successfully,
// including when a Before hook aborted it.
type OnSuccessFunc func(ctx context.Context, t Target, duration time.Duration)

// OnFailureFunc is called after the action fails.
type OnFailureFunc func(ctx context.Context, t Target, err error, duration time.Duration)

// OnNotFoundFunc is called when a path cannot be resolved: no route
// matched, or the matched controller or action does not exist.
type OnNotFoundFunc func(ctx context.Context, path string, err error)

// hooks holds all configured hook functions.
type hooks struct {
	onMatch    []OnMatchFunc
	onDispatch []OnDispatchFunc
	onSuccess  []OnSuccessFunc
	onFailure  []OnFailureFunc
	onNotFound []OnNotFoundFunc
}

// WithOnMatch adds a hook called after a path resolves.
// Multiple hooks are called in order, with context chaining through each.
//
// Example:
//
//	mvc.WithOnMatch(func(ctx context.Context, t mvc.Target) context.Context {
//	    ctx, _ = tracer.Start(ctx, t.String())
//	    return ctx
//	})
func WithOnMatch(fn OnMatchFunc) Option {
	return func(r *Router) {
		r.hooks.onMatch = append(r.hooks.onMatch, fn)
	}
}

// WithOnDispatch adds a hook called just before the action executes.
// Multiple hooks are called in order.
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(r *Router) {
		r.hooks.onDispatch = append(r.hooks.onDispatch, fn)
	}
}

// WithOnSuccess adds a hook called after the action succeeds.
// Multiple hooks are called in order.
//
// Example:
//
//	mvc.WithOnSuccess(func(ctx context.Context, t mvc.Target, d time.Duration) {
//	    duration.WithLabelValues(t.Controller, t.Action).Observe(d.Seconds())
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(r *Router) {
		r.hooks.onSuccess = append(r.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after the action fails.
// Multiple hooks are called in order.
//
// Example:
//
//	mvc.WithOnFailure(func(ctx context.Context, t mvc.Target, err error, d time.Duration) {
//	    logger.ErrorContext(ctx, "action failed", "target", t, "error", err)
//	})
func WithOnFailure(fn OnFailureFunc) Option {
	return func(r *Router) {
		r.hooks.onFailure = append(r.hooks.onFailure, fn)
	}
}

// WithOnNotFound adds a hook called when a path cannot be resolved.
// Multiple hooks are called in order. The request still fails.
func WithOnNotFound(fn OnNotFoundFunc) Option {
	return func(r *Router) {
		r.hooks.onNotFound = append(r.hooks.onNotFound, fn)
	}
}

func (r *Router) callOnMatch(ctx context.Context, t Target) context.Context {
	for _, fn := range r.hooks.onMatch {
		ctx = fn(ctx, t)
	}
	return ctx
}

func (r *Router) callOnDispatch(ctx context.Context, t Target) {
	for _, fn := range r.hooks.onDispatch {
		fn(ctx, t)
	}
}

func (r *Router) callOnSuccess(ctx context.Context, t Target, d time.Duration) {
	for _, fn := range r.hooks.onSuccess {
		fn(ctx, t, d)
	}
}

func (r *Router) callOnFailure(ctx context.Context, t Target, err error, d time.Duration) {
	for _, fn := range r.hooks.onFailure {
		fn(ctx, t, err, d)
	}
}

func (r *Router) callOnNotFound(ctx context.Context, path string, err error) {
	for _, fn := range r.hooks.onNotFound {
		fn(ctx, path, err)
	}
}
