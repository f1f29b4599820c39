package builderopts

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Function is a helper callable from generator rules.
type Function func(args ...any) (any, error)

// FunctionRegistry holds rule helpers. Lookups ignore case; engines bind each
// helper under the spelling it was registered with.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]registeredFunction
}

type registeredFunction struct {
	name string
	fn   Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{functions: make(map[string]registeredFunction)}
}

// Register adds fn under name. A name may be registered once, in any case.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if name == "" {
		return fmt.Errorf("builderopts: function name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("builderopts: function %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]registeredFunction)
	}
	key := strings.ToLower(name)
	if existing, dup := r.functions[key]; dup {
		return fmt.Errorf("builderopts: function %q already registered as %q", name, existing.name)
	}
	r.functions[key] = registeredFunction{name: name, fn: fn}
	return nil
}

// Clone returns an independent registry with the same functions.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{functions: make(map[string]registeredFunction, len(r.functions))}
	for key, entry := range r.functions {
		clone.functions[key] = entry
	}
	return clone
}

// Call invokes the function registered under name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("builderopts: no functions registered")
	}
	r.mu.RLock()
	entry, ok := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("builderopts: function %q not registered", name)
	}
	return entry.fn(args...)
}

// Names lists the registered spellings sorted. A nil registry has none.
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

// WithFunctionRegistry makes registry available to the default evaluator.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *optionsConfig) {
		if registry != nil {
			cfg.functions = registry.Clone()
		}
	}
}

// WithCustomFunction registers a single helper. Registration errors are
// ignored; use a FunctionRegistry to observe them.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *optionsConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// Generator rule helpers registered by GeneratorFunctions.
const (
	FuncMethodName  = "methodName"
	FuncSimpleName  = "simpleName"
	FuncAnnotations = "annotations"
)

// GeneratorFunctions returns a registry with the helpers generator rules use
// to render code:
//
//	methodName("with", "name")     "withName"; an empty prefix keeps the field
//	simpleName("javax.annotation.Nonnull")  "Nonnull"
//	annotations(useJSR305Annotations, useFindbugsAnnotation)  qualified names
func GeneratorFunctions() *FunctionRegistry {
	registry := NewFunctionRegistry()
	_ = registry.Register(FuncMethodName, func(args ...any) (any, error) {
		prefix, field, err := stringPair(FuncMethodName, args)
		if err != nil {
			return nil, err
		}
		return prefixedName(prefix, field), nil
	})
	_ = registry.Register(FuncSimpleName, func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, arityError(FuncSimpleName, 1, len(args))
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("builderopts: %s: want string, got %T", FuncSimpleName, args[0])
		}
		return simpleName(name), nil
	})
	_ = registry.Register(FuncAnnotations, func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, arityError(FuncAnnotations, 2, len(args))
		}
		jsr305, ok1 := args[0].(bool)
		findbugs, ok2 := args[1].(bool)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("builderopts: %s: want two booleans, got %T, %T", FuncAnnotations, args[0], args[1])
		}
		names := nullabilityAnnotations(jsr305, findbugs)
		out := make([]any, len(names))
		for i, name := range names {
			out[i] = name
		}
		return out, nil
	})
	return registry
}

// WithGeneratorFunctions adds the GeneratorFunctions helpers to the wrapper's
// registry. Helpers already registered under the same name are kept.
func WithGeneratorFunctions() Option {
	return func(cfg *optionsConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		for _, entry := range GeneratorFunctions().functions {
			_ = cfg.functions.Register(entry.name, entry.fn)
		}
	}
}

func stringPair(name string, args []any) (string, string, error) {
	if len(args) != 2 {
		return "", "", arityError(name, 2, len(args))
	}
	first, ok1 := args[0].(string)
	second, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return "", "", fmt.Errorf("builderopts: %s: want two strings, got %T, %T", name, args[0], args[1])
	}
	return first, second, nil
}

func arityError(name string, want, got int) error {
	return fmt.Errorf("builderopts: %s expects %d argument(s), got %d", name, want, got)
}
