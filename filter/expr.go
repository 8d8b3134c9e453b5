package filter

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viant/geofeat/feature"
)

const programCacheSize = 256

var (
	envOnce  sync.Once
	celEnv   *cel.Env
	envErr   error
	programs *lru.Cache[string, cel.Program]
)

func environment() (*cel.Env, error) {
	envOnce.Do(func() {
		celEnv, envErr = cel.NewEnv(
			cel.Variable("id", cel.StringType),
			cel.Variable("properties", cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable("geometry", cel.StringType),
		)
		if envErr != nil {
			return
		}
		programs, envErr = lru.New[string, cel.Program](programCacheSize)
	})
	return celEnv, envErr
}

// Expr is a compiled CEL predicate.
type Expr struct {
	source  string
	program cel.Program
}

// Compile parses and plans a CEL expression. Compiled programs are cached by
// source text.
func Compile(expression string) (*Expr, error) {
	src := strings.TrimSpace(expression)
	if src == "" {
		return nil, fmt.Errorf("filter: empty expression")
	}
	env, err := environment()
	if err != nil {
		return nil, fmt.Errorf("filter: environment: %w", err)
	}
	if prg, ok := programs.Get(src); ok {
		return &Expr{source: src, program: prg}, nil
	}
	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("filter: compile %q: %w", src, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("filter: program %q: %w", src, err)
	}
	programs.Add(src, prg)
	return &Expr{source: src, program: prg}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expression string) *Expr {
	e, err := Compile(expression)
	if err != nil {
		panic(err)
	}
	return e
}

// Evaluate runs the program against f. The expression must yield a boolean.
// A record lacking a property the expression selects does not match.
func (e *Expr) Evaluate(f *feature.Feature) (bool, error) {
	props := f.Properties
	if props == nil {
		props = map[string]any{}
	}
	geometry := ""
	if f.Geometry != nil {
		geometry = f.Geometry.GeoJSONType()
	}
	out, _, err := e.program.Eval(map[string]any{
		"id":         f.ID,
		"properties": props,
		"geometry":   geometry,
	})
	if err != nil {
		if missingKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("filter: eval %q on %q: %w", e.source, f.ID, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter: %q must return boolean, got %T", e.source, out.Value())
	}
	return result, nil
}

func (e *Expr) String() string { return e.source }

// missingKey reports CEL selection of an absent map key or attribute.
func missingKey(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "no such key") || strings.HasPrefix(msg, "no such attribute")
}
