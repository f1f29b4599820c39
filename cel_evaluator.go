package builderopts

import (
	"reflect"
	"sort"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache reuses checked programs across evaluations.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry exposes registry functions through
// call("name", [args...]).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.functions = registry.Clone()
	}
}

// celEvaluator type-checks rules against the snapshot's variable names, so a
// typo in an option name fails at compile time instead of reading false.
type celEvaluator struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Engine() string { return "cel" }

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile validates expression syntax. Without declared variables type
// checking happens per snapshot shape on first evaluation; with them
// (WithRuleVariables) the rule is checked here and unknown names fail.
func (e *celEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, engineError("cel", ErrEmptyExpression)
	}
	cfg := applyCompileOptions(opts)
	if len(cfg.variables) > 0 {
		if _, err := e.program(expression, cfg.variables); err != nil {
			return nil, ruleError("cel", expression, cfg.label, err)
		}
		return &celRule{evaluator: e, expression: expression, cfg: cfg}, nil
	}
	env, err := e.env(nil)
	if err != nil {
		return nil, engineError("cel", err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, ruleError("cel", expression, cfg.label, issues.Err())
	}
	return &celRule{evaluator: e, expression: expression, cfg: cfg}, nil
}

func (e *celEvaluator) program(expression string, variables []string) (cel.Program, error) {
	key := expression + "\x00" + strings.Join(variables, ",")
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(cel.Program); ok {
				return program, nil
			}
		}
	}
	env, err := e.env(variables)
	if err != nil {
		return nil, engineError("cel", err)
	}
	checked, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(checked)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *celEvaluator) env(variables []string) (*cel.Env, error) {
	opts := []cel.EnvOption{
		cel.Variable("now", cel.TimestampType),
		cel.Variable("args", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("metadata", cel.MapType(cel.StringType, cel.DynType)),
	}
	for _, name := range variables {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	if e.functions != nil {
		opts = append(opts, cel.Function("call",
			cel.Overload("call_string_list",
				[]*cel.Type{cel.StringType, cel.ListType(cel.DynType)},
				cel.DynType,
				cel.BinaryBinding(e.call),
			),
		))
	}
	return cel.NewEnv(opts...)
}

func (e *celEvaluator) call(name, arguments ref.Val) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("builderopts: call name must be a string")
	}
	native, err := arguments.ConvertToNative(reflect.TypeOf([]any{}))
	if err != nil {
		return types.NewErr("builderopts: call arguments: %v", err)
	}
	result, err := e.functions.Call(fn, native.([]any)...)
	if err != nil {
		return types.NewErr("%v", err)
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

type celRule struct {
	evaluator  *celEvaluator
	expression string
	cfg        compileConfig
}

func (r *celRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = r.cfg.labelled(ctx).withDefaults()
	snapshot := snapshotAsMap(ctx.Snapshot)
	activation := map[string]any{
		"now":      ctx.timestamp(),
		"args":     ctx.Args,
		"metadata": ctx.Metadata,
	}
	for name, value := range snapshot {
		activation[name] = value
	}

	variables := r.cfg.variables
	if len(variables) > 0 {
		// Declared identities missing from the snapshot were never persisted.
		for _, name := range variables {
			if _, ok := activation[name]; !ok {
				activation[name] = false
			}
		}
	} else {
		variables = make([]string, 0, len(snapshot))
		for name := range snapshot {
			variables = append(variables, name)
		}
		sort.Strings(variables)
	}

	program, err := r.evaluator.program(r.expression, variables)
	if err != nil {
		return nil, ruleError("cel", r.expression, ctx.label(), err)
	}
	out, _, err := program.Eval(activation)
	if err != nil {
		return nil, ruleError("cel", r.expression, ctx.label(), err)
	}
	return out.Value(), nil
}
