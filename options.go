package builderopts

import "reflect"

// New constructs an Options wrapper around value.
func New[T any](value T, opts ...Option) *Options[T] {
	return &Options[T]{
		Value: value,
		cfg:   applyOptions(opts),
	}
}

// Load constructs an Options wrapper and runs validation when the value
// implements Validate() error.
func Load[T any](value T, opts ...Option) (*Options[T], error) {
	wrapper := New(value, opts...)
	if err := validateValue(wrapper.Value); err != nil {
		return nil, err
	}
	return wrapper, nil
}

// WithEvaluator configures the evaluator used by Evaluate.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *optionsConfig) {
		cfg.evaluator = e
	}
}

// WithValue returns a copy of the wrapper holding value. Configuration and
// layer provenance are kept.
func (o *Options[T]) WithValue(value T) *Options[T] {
	if o == nil {
		return New(value)
	}
	return &Options[T]{
		Value:  value,
		cfg:    o.cfg,
		layers: append([]layerSnapshot(nil), o.layers...),
	}
}

// Validate invokes the Validate method on the wrapped value when present.
func (o *Options[T]) Validate() error {
	return validateValue(o.Value)
}

func validateValue[T any](value T) error {
	if v, ok := any(value).(interface{ Validate() error }); ok {
		return v.Validate()
	}
	if rv := reflect.ValueOf(&value).Elem(); rv.Kind() != reflect.Pointer {
		if v, ok := rv.Addr().Interface().(interface{ Validate() error }); ok {
			return v.Validate()
		}
	}
	return nil
}
