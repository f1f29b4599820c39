//go:build !js_eval

package builderopts

const jsEvaluatorAvailable = false

// NewJSEvaluator returns nil unless built with the js_eval tag. Passing the
// nil result to WithEvaluator leaves the default expr engine in place.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	_ = newJSConfig(opts)
	return nil
}
