// Package zaplog routes session and evaluator events to a zap logger.
package zaplog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	builderopts "github.com/goliatone/go-builder-options"
)

// Logger implements builderopts.SessionLogger and builderopts.EvaluatorLogger.
type Logger struct {
	log *zap.Logger
}

var (
	_ builderopts.SessionLogger   = (*Logger)(nil)
	_ builderopts.EvaluatorLogger = (*Logger)(nil)
)

// New wraps log. A nil logger discards everything.
func New(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log.Named("builderopts")}
}

// LogSession writes aborts and hook failures at warn level, everything else
// at debug except terminal transitions, which are info.
func (l *Logger) LogSession(event builderopts.SessionLogEvent) {
	fields := []zap.Field{zap.String("kind", event.Kind)}
	if event.SessionID != "" {
		fields = append(fields, zap.String("session_id", event.SessionID))
	}
	if event.Key != "" {
		fields = append(fields,
			zap.String("key", event.Key),
			zap.Any("old_value", event.OldValue),
			zap.Any("new_value", event.NewValue),
		)
	}
	if event.Items > 0 {
		fields = append(fields, zap.Int("items", event.Items))
	}
	if event.Err != nil {
		fields = append(fields, zap.Error(event.Err))
	}
	l.log.Check(sessionLevel(event), "selection "+event.Kind).Write(fields...)
}

// LogEvaluation writes successful rules at debug and failures at warn.
func (l *Logger) LogEvaluation(event builderopts.EvaluatorLogEvent) {
	level := zapcore.DebugLevel
	fields := []zap.Field{
		zap.String("engine", event.Engine),
		zap.String("label", event.Label),
		zap.String("expr", event.Expr),
		zap.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		level = zapcore.WarnLevel
		fields = append(fields, zap.Error(event.Err))
	}
	l.log.Check(level, "rule evaluated").Write(fields...)
}

func sessionLevel(event builderopts.SessionLogEvent) zapcore.Level {
	switch {
	case event.Kind == builderopts.SessionEventAborted, event.Kind == builderopts.SessionEventActivityFailed:
		return zapcore.WarnLevel
	case event.Kind == builderopts.SessionEventConfirmed, event.Kind == builderopts.SessionEventCancelled:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
