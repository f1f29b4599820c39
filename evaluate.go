package builderopts

import (
	"errors"
	"time"
)

var (
	// ErrNoEvaluator is returned when no evaluator could be configured.
	ErrNoEvaluator = errors.New("builderopts: evaluator not configured")
	// ErrEmptyExpression rejects blank rules before they reach an engine.
	ErrEmptyExpression = errors.New("builderopts: expression must not be empty")
)

// Engine is implemented by evaluators that report a name for logs and errors.
type Engine interface {
	Engine() string
}

// Evaluate runs expr against the wrapped value.
func (o *Options[T]) Evaluate(expr string) (Response[any], error) {
	return o.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith runs expr using ctx. A nil ctx.Snapshot falls back to the
// wrapped value.
func (o *Options[T]) EvaluateWith(ctx RuleContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, ErrEmptyExpression
	}
	evaluator, err := o.resolveEvaluator()
	if err != nil {
		return Response[any]{}, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = o.Value
	}
	ctx = ctx.withDefaults()

	engine := engineName(evaluator)
	start := time.Now()
	value, err := evaluator.Evaluate(ctx, expr)
	err = ruleError(engine, expr, ctx.label(), err)
	o.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Label:    ctx.label(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return Response[any]{}, err
	}
	return Response[any]{Value: value}, nil
}

// EvaluateBool runs expr and requires a boolean result.
func (o *Options[T]) EvaluateBool(ctx RuleContext, expr string) (bool, error) {
	resp, err := o.EvaluateWith(ctx, expr)
	if err != nil {
		return false, err
	}
	value, ok := resp.Value.(bool)
	if !ok {
		return false, ruleError(engineName(o.cfg.evaluator), expr, ctx.label(),
			errors.New("result is not a boolean"))
	}
	return value, nil
}

// CompileRule compiles expr once with the configured evaluator. Evaluate the
// returned rule with a RuleContext whose Snapshot holds the values to test.
func (o *Options[T]) CompileRule(expr string, opts ...CompileOption) (CompiledRule, error) {
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	evaluator, err := o.resolveEvaluator()
	if err != nil {
		return nil, err
	}
	rule, err := evaluator.Compile(expr, opts...)
	if err != nil {
		return nil, ruleError(engineName(evaluator), expr, applyCompileOptions(opts).label, err)
	}
	return rule, nil
}

func (o *Options[T]) resolveEvaluator() (Evaluator, error) {
	if o.cfg.evaluator != nil {
		return o.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if o.cfg.programCache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(o.cfg.programCache))
	}
	if o.cfg.functions != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(o.cfg.functions))
	}
	evaluator := NewExprEvaluator(exprOpts...)
	if evaluator == nil {
		return nil, ErrNoEvaluator
	}
	o.cfg.evaluator = evaluator
	return evaluator, nil
}

func engineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(Engine); ok {
		return named.Engine()
	}
	return "custom"
}
