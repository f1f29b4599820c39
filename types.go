package builderopts

import (
	"slices"
	"sort"
	"time"
)

// Options wraps resolved generator settings. It evaluates rules against the
// value and remembers the layers it was merged from.
type Options[T any] struct {
	Value T

	cfg    optionsConfig
	layers []layerSnapshot
}

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}

// RuleContext carries the inputs of one rule evaluation.
type RuleContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// Label names the rule in logs and errors.
	Label string
}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	return *ctx.withDefaults().Now
}

func (ctx RuleContext) label() string {
	if ctx.Label != "" {
		return ctx.Label
	}
	return "rule"
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct {
	label     string
	variables []string
}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	f(cfg)
}

// WithRuleLabel names a compiled rule in logs and errors when the evaluation
// context carries no label of its own.
func WithRuleLabel(label string) CompileOption {
	return compileOptionFunc(func(cfg *compileConfig) {
		cfg.label = label
	})
}

// WithRuleVariables declares the snapshot variables a rule may reference.
// The expr and CEL engines then reject any other identifier at compile time.
func WithRuleVariables(names ...string) CompileOption {
	return compileOptionFunc(func(cfg *compileConfig) {
		cfg.variables = append(cfg.variables, names...)
	})
}

// WithCatalogueVariables declares the value name of every identity in
// catalogue, e.g. "withNotation".
func WithCatalogueVariables(catalogue Catalogue) CompileOption {
	ids := catalogue.Options()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, id.Name())
	}
	return WithRuleVariables(names...)
}

func applyCompileOptions(opts []CompileOption) compileConfig {
	var cfg compileConfig
	for _, opt := range opts {
		if opt != nil {
			opt.applyCompileOption(&cfg)
		}
	}
	if len(cfg.variables) > 0 {
		sort.Strings(cfg.variables)
		cfg.variables = slices.Compact(cfg.variables)
	}
	return cfg
}

// labelled applies the compiled label to ctx when it has none.
func (cfg compileConfig) labelled(ctx RuleContext) RuleContext {
	if ctx.Label == "" {
		ctx.Label = cfg.label
	}
	return ctx
}

// Option configures an Options wrapper.
type Option func(*optionsConfig)

type optionsConfig struct {
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	logger       EvaluatorLogger
}

func applyOptions(opts []Option) optionsConfig {
	cfg := optionsConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (o *Options[T]) evaluatorLogger() EvaluatorLogger {
	if o.cfg.logger != nil {
		return o.cfg.logger
	}
	return noopLogger{}
}
