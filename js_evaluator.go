//go:build js_eval

package builderopts

import (
	"fmt"

	"github.com/dop251/goja"
)

const jsEvaluatorAvailable = true

// jsEvaluator runs rules as JavaScript expressions in a fresh goja runtime
// per evaluation. Compiled programs are shared between runtimes.
type jsEvaluator struct {
	cfg jsConfig
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	return &jsEvaluator{cfg: newJSConfig(opts)}
}

func (e *jsEvaluator) Engine() string { return "js" }

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile builds a reusable rule. JavaScript resolves names at run time, so
// declared variables are not checked; the rule label is honoured.
func (e *jsEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, engineError("js", ErrEmptyExpression)
	}
	cfg := applyCompileOptions(opts)
	if e.cfg.cache != nil {
		if cached, ok := e.cfg.cache.Get(expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return &jsRule{evaluator: e, program: program, expression: expression, cfg: cfg}, nil
			}
		}
	}
	program, err := goja.Compile("rule", fmt.Sprintf("(function(){ return (%s); })()", expression), true)
	if err != nil {
		return nil, ruleError("js", expression, cfg.label, err)
	}
	if e.cfg.cache != nil {
		e.cfg.cache.Set(expression, program)
	}
	return &jsRule{evaluator: e, program: program, expression: expression, cfg: cfg}, nil
}

func (e *jsEvaluator) runtime(ctx RuleContext) *goja.Runtime {
	vm := goja.New()
	_ = vm.Set("now", ctx.timestamp())
	_ = vm.Set("args", ctx.Args)
	_ = vm.Set("metadata", ctx.Metadata)
	for name, value := range snapshotAsMap(ctx.Snapshot) {
		_ = vm.Set(name, value)
	}
	registry := e.cfg.functions
	for _, name := range registry.Names() {
		fn := name
		_ = vm.Set(fn, func(arguments ...any) (any, error) {
			return registry.Call(fn, arguments...)
		})
	}
	return vm
}

type jsRule struct {
	evaluator  *jsEvaluator
	program    *goja.Program
	expression string
	cfg        compileConfig
}

func (r *jsRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = r.cfg.labelled(ctx).withDefaults()
	value, err := r.evaluator.runtime(ctx).RunProgram(r.program)
	if err != nil {
		return nil, ruleError("js", r.expression, ctx.label(), err)
	}
	return value.Export(), nil
}
