// Package ecslog adapts go.uber.org/zap to the ecs.Logger interface.
package ecslog

import (
	ecs "github.com/parasys/ecs"
	"go.uber.org/zap"
)

// zapLogger adapts a *zap.SugaredLogger to ecs.Logger.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZap wraps logger as an ecs.Logger.
func NewZap(logger *zap.Logger) ecs.Logger {
	if logger == nil {
		return Noop()
	}
	return zapLogger{sugar: logger.Sugar()}
}

func (l zapLogger) With(key string, value any) ecs.Logger {
	return zapLogger{sugar: l.sugar.With(key, value)}
}

func (l zapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l zapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

type noopLogger struct{}

// Noop returns an ecs.Logger that discards everything, for tests and
// callers who don't want logging overhead.
func Noop() ecs.Logger {
	return noopLogger{}
}

func (noopLogger) With(key string, value any) ecs.Logger { return noopLogger{} }
func (noopLogger) Info(msg string, args ...any)          {}
func (noopLogger) Error(msg string, args ...any)         {}

var (
	_ ecs.Logger = zapLogger{}
	_ ecs.Logger = noopLogger{}
)
