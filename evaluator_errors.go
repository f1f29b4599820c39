package builderopts

import (
	"errors"
	"fmt"
	"strings"
)

// EvaluationError reports a failed generator rule with the engine and rule
// label that produced it.
type EvaluationError struct {
	Engine string
	Expr   string
	Label  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	expr := "expr=<empty>"
	if e.Expr != "" {
		expr = fmt.Sprintf("expr=%q", e.Expr)
	}
	return fmt.Sprintf("builderopts: %s rule %s %s: %v", e.Engine, e.Label, expr, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// engineError prefixes a setup failure that is not tied to one expression.
func engineError(engine string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) || strings.HasPrefix(err.Error(), "builderopts:") {
		return err
	}
	return fmt.Errorf("builderopts: %s evaluator: %w", engine, err)
}

// ruleError attaches rule metadata to err, filling only fields still empty.
func ruleError(engine, expr, label string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{Engine: engine, Expr: expr, Label: label, Err: err}
	}
	if evalErr.Engine == "" {
		evalErr.Engine = engine
	}
	if evalErr.Expr == "" {
		evalErr.Expr = expr
	}
	if evalErr.Label == "" {
		evalErr.Label = label
	}
	return evalErr
}
