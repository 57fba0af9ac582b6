package mvc

import (
	"mime"
	"strings"
)

// Matcher is a cheap predicate over a request. Controllers use matchers to
// guard actions, e.g. to require POST for mutations.
type Matcher interface {
	Match(c *Context) bool
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(c *Context) bool

// Match implements Matcher.
func (f MatcherFunc) Match(c *Context) bool { return f(c) }

// Method returns a Matcher that matches when the request method is one of
// methods.
func Method(methods ...string) Matcher {
	return method{methods: methods}
}

type method struct {
	methods []string
}

func (m method) Match(c *Context) bool {
	for _, want := range m.methods {
		if strings.EqualFold(c.Method(), want) {
			return true
		}
	}
	return false
}

// ContentType returns a Matcher that matches when the request media type
// equals mediaType, ignoring parameters such as charset.
func ContentType(mediaType string) Matcher {
	return contentType{mediaType: mediaType}
}

type contentType struct {
	mediaType string
}

func (m contentType) Match(c *Context) bool {
	got, _, err := mime.ParseMediaType(c.Request.Header.Get("Content-Type"))
	return err == nil && strings.EqualFold(got, m.mediaType)
}

// HasFields returns a Matcher that matches when all fields were submitted.
// A request whose fields cannot be read never matches.
func HasFields(names ...string) Matcher {
	return hasFields{names: names}
}

type hasFields struct {
	names []string
}

func (m hasFields) Match(c *Context) bool {
	v, err := c.Fields()
	if err != nil {
		return false
	}
	for _, n := range m.names {
		if !v.HasField(n) {
			return false
		}
	}
	return true
}

// FieldEquals returns a Matcher that matches when the field was submitted
// and equals value.
func FieldEquals(name, value string) Matcher {
	return fieldEquals{name: name, value: value}
}

type fieldEquals struct {
	name  string
	value string
}

func (m fieldEquals) Match(c *Context) bool {
	v, err := c.Fields()
	if err != nil {
		return false
	}
	s, ok := v.GetString(m.name)
	return ok && s == m.value
}

// And returns a Matcher that matches when all matchers match.
func And(ms ...Matcher) Matcher {
	return and{ms: ms}
}

type and struct {
	ms []Matcher
}

func (m and) Match(c *Context) bool {
	for _, sub := range m.ms {
		if !sub.Match(c) {
			return false
		}
	}
	return true
}

// Or returns a Matcher that matches when any matcher matches.
func Or(ms ...Matcher) Matcher {
	return or{ms: ms}
}

type or struct {
	ms []Matcher
}

func (m or) Match(c *Context) bool {
	for _, sub := range m.ms {
		if sub.Match(c) {
			return true
		}
	}
	return false
}

// Not returns a Matcher that inverts m.
func Not(m Matcher) Matcher {
	return MatcherFunc(func(c *Context) bool { return !m.Match(c) })
}
