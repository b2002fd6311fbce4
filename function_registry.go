package tokens

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function represents a callable registered against evaluators.
type Function func(args ...any) (any, error)

type registeredFunction struct {
	name string
	fn   Function
}

// FunctionRegistry stores custom functions keyed by name. Lookups ignore
// case; Names reports the spelling used at registration.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]registeredFunction
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]registeredFunction),
	}
}

// DefaultFunctionRegistry returns a registry holding the token helpers
// isReference, refTarget, isHexColor and unitOf.
func DefaultFunctionRegistry() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register("isReference", fnIsReference)
	_ = registry.Register("refTarget", fnRefTarget)
	_ = registry.Register("isHexColor", fnIsHexColor)
	_ = registry.Register("unitOf", fnUnitOf)
	return registry
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("tokens: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("tokens: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]registeredFunction)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("tokens: function %q already registered", name)
	}
	r.functions[key] = registeredFunction{name: name, fn: fn}
	return nil
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{
		functions: make(map[string]registeredFunction, len(r.functions)),
	}
	for key, entry := range r.functions {
		clone.functions[key] = entry
	}
	return clone
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("tokens: function registry is nil")
	}
	r.mu.RLock()
	entry, ok := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tokens: function %q not registered", name)
	}
	return entry.fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for _, entry := range r.functions {
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry replaces the rule set's function registry.
func WithFunctionRegistry(registry *FunctionRegistry) RuleOption {
	return func(cfg *ruleConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for the rule set.
func WithCustomFunction(name string, fn Function) RuleOption {
	return func(cfg *ruleConfig) {
		if cfg.functions == nil {
			cfg.functions = DefaultFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

func singleArg(name string, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("tokens: %s expects 1 argument, got %d", name, len(args))
	}
	return args[0], nil
}

func fnIsReference(args ...any) (any, error) {
	value, err := singleArg("isReference", args)
	if err != nil {
		return nil, err
	}
	return IsReference(value), nil
}

func fnRefTarget(args ...any) (any, error) {
	value, err := singleArg("refTarget", args)
	if err != nil {
		return nil, err
	}
	s, _ := value.(string)
	target, _ := ParseReference(s)
	return target, nil
}

func fnIsHexColor(args ...any) (any, error) {
	value, err := singleArg("isHexColor", args)
	if err != nil {
		return nil, err
	}
	s, ok := value.(string)
	return ok && hexColorPattern.MatchString(s), nil
}

// fnUnitOf returns the unit suffix of a dimension string ("px", "rem", "em"
// or "%"), or an empty string.
func fnUnitOf(args ...any) (any, error) {
	value, err := singleArg("unitOf", args)
	if err != nil {
		return nil, err
	}
	s, ok := value.(string)
	if !ok {
		return "", nil
	}
	match := dimensionPattern.FindStringSubmatch(s)
	if match == nil {
		return "", nil
	}
	return match[len(match)-1], nil
}

// bindingValue converts raw token values into the plain types evaluators
// understand: json.Number becomes float64 (or stays a string when it does
// not fit), ordered objects become maps.
func bindingValue(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case *Object:
		out := make(map[string]any, typed.Len())
		typed.Range(func(key string, v any) bool {
			out[key] = bindingValue(v)
			return true
		})
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = bindingValue(v)
		}
		return out
	default:
		return value
	}
}
