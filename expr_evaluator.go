package builderopts

import (
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluatorOption configures the expr-lang evaluator.
type ExprEvaluatorOption func(*exprEvaluator)

// ExprWithProgramCache reuses compiled programs across evaluations.
func ExprWithProgramCache(cache ProgramCache) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry exposes registry functions to rules by name.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprEvaluatorOption {
	return func(e *exprEvaluator) {
		e.functions = registry.Clone()
	}
}

// exprEvaluator is the default engine. Resolved option names are top-level
// variables, so `withNotation && !setNotation` reads naturally.
type exprEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
func NewExprEvaluator(opts ...ExprEvaluatorOption) Evaluator {
	e := &exprEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *exprEvaluator) Engine() string { return "expr" }

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, engineError("expr", ErrEmptyExpression)
	}
	program, err := e.program(expression, nil)
	if err != nil {
		return nil, err
	}
	return e.run(program, expression, ctx.withDefaults())
}

// Compile builds a reusable rule. Declared variables (WithRuleVariables) turn
// references to unknown names into compile errors.
func (e *exprEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, engineError("expr", ErrEmptyExpression)
	}
	cfg := applyCompileOptions(opts)
	program, err := e.program(expression, cfg.variables)
	if err != nil {
		return nil, err
	}
	return &exprRule{evaluator: e, program: program, expression: expression, cfg: cfg}, nil
}

func (e *exprEvaluator) program(expression string, variables []string) (*exprvm.Program, error) {
	key := expression
	if len(variables) > 0 {
		key += "\x00" + strings.Join(variables, ",")
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{exprlang.Env(declaredEnv(variables))}
	if len(variables) == 0 {
		options = append(options, exprlang.AllowUndefinedVariables())
	}
	for _, name := range e.functions.Names() {
		options = append(options, exprlang.Function(name, e.bind(name)))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, ruleError("expr", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

// declaredEnv types every declared variable as an option boolean next to the
// context values each rule can read.
func declaredEnv(variables []string) map[string]any {
	env := map[string]any{}
	if len(variables) == 0 {
		return env
	}
	env["now"] = time.Time{}
	env["args"] = map[string]any{}
	env["metadata"] = map[string]any{}
	for _, name := range variables {
		env[name] = false
	}
	return env
}

func (e *exprEvaluator) run(program *exprvm.Program, expression string, ctx RuleContext) (any, error) {
	result, err := exprlang.Run(program, e.environment(ctx))
	if err != nil {
		return nil, ruleError("expr", expression, ctx.label(), err)
	}
	return result, nil
}

func (e *exprEvaluator) environment(ctx RuleContext) map[string]any {
	env := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	for name, value := range snapshotAsMap(ctx.Snapshot) {
		env[name] = value
	}
	for _, name := range e.functions.Names() {
		env[name] = e.bind(name)
	}
	return env
}

func (e *exprEvaluator) bind(name string) func(...any) (any, error) {
	return func(arguments ...any) (any, error) {
		return e.functions.Call(name, arguments...)
	}
}

type exprRule struct {
	evaluator  *exprEvaluator
	program    *exprvm.Program
	expression string
	cfg        compileConfig
}

func (r *exprRule) Evaluate(ctx RuleContext) (any, error) {
	return r.evaluator.run(r.program, r.expression, r.cfg.labelled(ctx).withDefaults())
}

// snapshotAsMap exposes the evaluation snapshot as variables. Values and
// plain maps are supported; anything else contributes no variables.
func snapshotAsMap(value any) map[string]any {
	switch v := value.(type) {
	case map[string]any:
		return v
	case Values:
		return v.Snapshot()
	case map[string]bool:
		return Values(v).Snapshot()
	default:
		return map[string]any{}
	}
}
