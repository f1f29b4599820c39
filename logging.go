package builderopts

import "time"

// EvaluatorLogEvent describes one rule evaluation.
type EvaluatorLogEvent struct {
	Engine   string
	Expr     string
	Label    string
	Duration time.Duration
	Err      error
}

// EvaluatorLogger records evaluator events.
type EvaluatorLogger interface {
	LogEvaluation(EvaluatorLogEvent)
}

// EvaluatorLoggerFunc adapts a function to EvaluatorLogger.
type EvaluatorLoggerFunc func(EvaluatorLogEvent)

// LogEvaluation implements EvaluatorLogger.
func (f EvaluatorLoggerFunc) LogEvaluation(event EvaluatorLogEvent) {
	if f != nil {
		f(event)
	}
}

// Session log event kinds.
const (
	SessionEventStarted   = "session.started"
	SessionEventSkipped   = "session.skipped"
	SessionEventHeadless  = "session.headless"
	SessionEventChanged   = "option.changed"
	SessionEventConfirmed = "session.confirmed"
	SessionEventCancelled = "session.cancelled"
	SessionEventAborted   = "session.aborted"

	SessionEventActivityFailed = "activity.failed"
)

// SessionLogEvent describes a selection session transition or option write.
type SessionLogEvent struct {
	Kind      string
	SessionID string
	Key       string
	OldValue  any
	NewValue  any
	Items     int
	Err       error
}

// SessionLogger records selection session events.
type SessionLogger interface {
	LogSession(SessionLogEvent)
}

// SessionLoggerFunc adapts a function to SessionLogger.
type SessionLoggerFunc func(SessionLogEvent)

// LogSession implements SessionLogger.
func (f SessionLoggerFunc) LogSession(event SessionLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvaluation(EvaluatorLogEvent) {}
func (noopLogger) LogSession(SessionLogEvent)      {}

// WithEvaluatorLogger attaches an evaluator logger to the Options wrapper.
func WithEvaluatorLogger(logger EvaluatorLogger) Option {
	return func(cfg *optionsConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
