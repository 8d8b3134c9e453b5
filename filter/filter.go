package filter

import (
	"strings"

	"github.com/viant/geofeat/feature"
)

// Filter decides whether a feature belongs to a result set.
type Filter interface {
	// Evaluate reports whether f satisfies the predicate.
	Evaluate(f *feature.Feature) (bool, error)
	// String returns a printable form used in logs.
	String() string
}

type trueFilter struct{}

func (trueFilter) Evaluate(*feature.Feature) (bool, error) { return true, nil }
func (trueFilter) String() string                          { return "true" }

// True accepts every feature.
var True Filter = trueFilter{}

// IsTrueOrNil reports whether f filters nothing out.
func IsTrueOrNil(f Filter) bool {
	switch v := f.(type) {
	case nil:
		return true
	case trueFilter:
		return true
	case *Expr:
		return v == nil || strings.TrimSpace(v.source) == "true"
	case and:
		for _, child := range v {
			if !IsTrueOrNil(child) {
				return false
			}
		}
		return true
	}
	return false
}

// Func adapts a Go predicate.
type Func func(f *feature.Feature) bool

// Evaluate calls fn.
func (fn Func) Evaluate(f *feature.Feature) (bool, error) { return fn(f), nil }

func (fn Func) String() string { return "func" }

type and []Filter

// And combines filters; a feature must satisfy every one of them.
func And(filters ...Filter) Filter {
	var out and
	for _, f := range filters {
		if IsTrueOrNil(f) {
			continue
		}
		out = append(out, f)
	}
	switch len(out) {
	case 0:
		return True
	case 1:
		return out[0]
	}
	return out
}

func (a and) Evaluate(f *feature.Feature) (bool, error) {
	for _, child := range a {
		ok, err := child.Evaluate(f)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (a and) String() string {
	parts := make([]string, len(a))
	for i, child := range a {
		parts[i] = "(" + child.String() + ")"
	}
	return strings.Join(parts, " && ")
}
