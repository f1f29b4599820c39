package builderopts

type jsConfig struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// JSEvaluatorOption configures the JavaScript evaluator.
type JSEvaluatorOption func(*jsConfig)

// JSWithProgramCache reuses compiled scripts across evaluations.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *jsConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry exposes registry functions as JavaScript globals.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *jsConfig) {
		cfg.functions = registry.Clone()
	}
}

func newJSConfig(opts []JSEvaluatorOption) jsConfig {
	var cfg jsConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return jsEvaluatorAvailable
}
