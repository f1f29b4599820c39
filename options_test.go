package builderopts

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var evaluatorFactories = []struct {
	name string
	new  func(cache ProgramCache, registry *FunctionRegistry) Evaluator
	// call renders a registry function invocation in the engine's syntax.
	call func(name string, arg string) string
}{
	{
		name: "expr",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry))
		},
		call: func(name, arg string) string { return name + `("` + arg + `")` },
	},
	{
		name: "cel",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry))
		},
		call: func(name, arg string) string { return `call("` + name + `", ["` + arg + `"])` },
	},
	{
		name: "js",
		new: func(cache ProgramCache, registry *FunctionRegistry) Evaluator {
			return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry))
		},
		call: func(name, arg string) string { return name + `("` + arg + `")` },
	},
}

type rulesFixture struct {
	Snapshot map[string]any `json:"snapshot"`
	Cases    []struct {
		Name   string `json:"name"`
		Expr   string `json:"expr"`
		Expect any    `json:"expect"`
	} `json:"cases"`
}

func loadRules(t *testing.T) rulesFixture {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", "generator_rules.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var fx rulesFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return fx
}

func TestGeneratorRulesAcrossEvaluators(t *testing.T) {
	fx := loadRules(t)
	for _, factory := range evaluatorFactories {
		evaluator := factory.new(nil, nil)
		if evaluator == nil {
			continue
		}
		for _, tc := range fx.Cases {
			t.Run(factory.name+"/"+tc.Name, func(t *testing.T) {
				opts := New(fx.Snapshot, WithEvaluator(evaluator))
				resp, err := opts.Evaluate(tc.Expr)
				if err != nil {
					t.Fatalf("evaluate %q: %v", tc.Expr, err)
				}
				if diff := cmp.Diff(tc.Expect, resp.Value); diff != "" {
					t.Fatalf("unexpected result (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestCustomFunctionsAcrossEvaluators(t *testing.T) {
	registry := NewFunctionRegistry()
	err := registry.Register("capitalize", func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, errors.New("capitalize expects one argument")
		}
		s, _ := args[0].(string)
		return strings.ToUpper(s[:1]) + s[1:], nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, factory := range evaluatorFactories {
		evaluator := factory.new(nil, registry)
		if evaluator == nil {
			continue
		}
		t.Run(factory.name, func(t *testing.T) {
			opts := New(map[string]any{"withNotation": true}, WithEvaluator(evaluator))
			resp, err := opts.Evaluate(factory.call("capitalize", "name"))
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if resp.Value != "Name" {
				t.Fatalf("expected Name, got %#v", resp.Value)
			}
		})
	}
}

func TestEvaluatorProgramCache(t *testing.T) {
	fx := loadRules(t)
	for _, factory := range evaluatorFactories {
		cache := NewMemoryProgramCache()
		evaluator := factory.new(cache, nil)
		if evaluator == nil {
			continue
		}
		t.Run(factory.name, func(t *testing.T) {
			opts := New(fx.Snapshot, WithEvaluator(evaluator))
			for i := 0; i < 3; i++ {
				if _, err := opts.Evaluate("finalSetters && !finalFields"); err != nil {
					t.Fatalf("evaluate: %v", err)
				}
			}
			if cache.Len() != 1 {
				t.Fatalf("expected one cached program, got %d", cache.Len())
			}
		})
	}
}

func TestDefaultEvaluatorUsesConfiguredFunctions(t *testing.T) {
	opts := New(map[string]any{"withNotation": true},
		WithCustomFunction("prefix", func(...any) (any, error) { return "with", nil }),
	)
	resp, err := opts.Evaluate(`withNotation ? prefix() : ""`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if resp.Value != "with" {
		t.Fatalf("expected with, got %#v", resp.Value)
	}
}

func TestEvaluateLogsEvents(t *testing.T) {
	var events []EvaluatorLogEvent
	opts := New(map[string]any{"withJavadoc": true},
		WithEvaluatorLogger(EvaluatorLoggerFunc(func(e EvaluatorLogEvent) { events = append(events, e) })),
	)
	if _, err := opts.EvaluateWith(RuleContext{Label: "javadoc"}, "withJavadoc"); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if _, err := opts.Evaluate("withJavadoc +"); err == nil {
		t.Fatalf("expected syntax error")
	}
	if len(events) != 2 {
		t.Fatalf("expected two log events, got %d", len(events))
	}
	if events[0].Engine != "expr" || events[0].Label != "javadoc" || events[0].Err != nil {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	var evalErr *EvaluationError
	if !errors.As(events[1].Err, &evalErr) || evalErr.Label != "rule" {
		t.Fatalf("expected EvaluationError labelled rule, got %v", events[1].Err)
	}
}

func TestEvaluateRejectsEmptyExpression(t *testing.T) {
	if _, err := New(map[string]any{}).Evaluate(""); !errors.Is(err, ErrEmptyExpression) {
		t.Fatalf("expected ErrEmptyExpression, got %v", err)
	}
}

func TestEvaluateBool(t *testing.T) {
	opts := New(map[string]any{"finalSetters": true})
	ok, err := opts.EvaluateBool(RuleContext{}, "finalSetters")
	if err != nil || !ok {
		t.Fatalf("expected true, got %v (%v)", ok, err)
	}
	if _, err := opts.EvaluateBool(RuleContext{}, `"with"`); err == nil {
		t.Fatalf("expected non-boolean result to fail")
	}
}

func TestEvaluateWithArgsAndSnapshotOverride(t *testing.T) {
	opts := New(map[string]any{"withNotation": false})
	resp, err := opts.EvaluateWith(RuleContext{
		Snapshot: map[string]any{"withNotation": true},
		Args:     map[string]any{"field": "name"},
	}, `withNotation ? "with" + args.field : args.field`)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if resp.Value != "withname" {
		t.Fatalf("expected withname, got %#v", resp.Value)
	}
}

func TestRuleContextDefaults(t *testing.T) {
	capture := &capturingEvaluator{}
	opts := New(map[string]any{}, WithEvaluator(capture))
	if _, err := opts.Evaluate("true"); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	ctx := capture.contexts[0]
	if ctx.Now == nil || ctx.Now.IsZero() {
		t.Fatalf("expected Now to default")
	}
	if ctx.Args == nil || ctx.Metadata == nil {
		t.Fatalf("expected maps to default")
	}
	if engineName(capture) != "custom" {
		t.Fatalf("expected custom engine name, got %q", engineName(capture))
	}
}

func TestLoadRunsValidation(t *testing.T) {
	_, err := Load(GeneratorSettings{WithNotation: true, SetNotation: true})
	if !errors.Is(err, ErrConflictingPrefix) {
		t.Fatalf("expected ErrConflictingPrefix, got %v", err)
	}
	if _, err := Load(GeneratorSettings{WithNotation: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFunctionRegistry(t *testing.T) {
	registry := NewFunctionRegistry()
	fn := func(...any) (any, error) { return nil, nil }
	if err := registry.Register("Prefix", fn); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register("prefix", fn); err == nil {
		t.Fatalf("expected case-insensitive duplicate to fail")
	}
	if err := registry.Register("", fn); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	clone := registry.Clone()
	_ = clone.Register("other", fn)
	if diff := cmp.Diff([]string{"Prefix"}, registry.Names()); diff != "" {
		t.Fatalf("clone leaked into original (-want +got):\n%s", diff)
	}
	if _, err := registry.Call("missing"); err == nil {
		t.Fatalf("expected missing function to fail")
	}
}

type capturingEvaluator struct {
	contexts []RuleContext
}

func (c *capturingEvaluator) Evaluate(ctx RuleContext, _ string) (any, error) {
	c.contexts = append(c.contexts, ctx)
	return true, nil
}

func (c *capturingEvaluator) Compile(string, ...CompileOption) (CompiledRule, error) {
	return nil, errors.New("not supported")
}
