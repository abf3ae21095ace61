package ecs

import "time"

// TickSummary captures what happened during one Executor.Run call, handed
// to any registered TickObserver once the tick (including deferred
// command application) has finished.
type TickSummary struct {
	Tick            uint64
	Duration        time.Duration
	SystemsTotal    int
	SystemsExecuted int
	CommandsApplied int
	Error           error
}

// TickObserver receives a summary after every tick. Register one or more
// via ExecutorBuilder.WithObserver; ecsmetrics.Collector implements this
// interface against real Prometheus metrics.
type TickObserver interface {
	TickCompleted(summary TickSummary)
}

type compositeObserver struct {
	observers []TickObserver
}

func (c compositeObserver) TickCompleted(summary TickSummary) {
	for _, observer := range c.observers {
		observer.TickCompleted(summary)
	}
}

func buildObserverChain(observers ...TickObserver) TickObserver {
	filtered := make([]TickObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	switch len(filtered) {
	case 0:
		return noopObserver{}
	case 1:
		return filtered[0]
	default:
		return compositeObserver{observers: filtered}
	}
}

// loggingObserver writes a one-line structured log entry per tick using
// the Logger given to NewLoggingObserver (for example ecslog.NewZap); it
// is independent of the logger set with ExecutorBuilder.WithLogger.
type loggingObserver struct {
	logger Logger
}

// NewLoggingObserver wraps logger as a TickObserver.
func NewLoggingObserver(logger Logger) TickObserver {
	if logger == nil {
		return noopObserver{}
	}
	return loggingObserver{logger: logger}
}

func (o loggingObserver) TickCompleted(summary TickSummary) {
	entry := o.logger.With("tick", summary.Tick).
		With("duration_ms", float64(summary.Duration)/float64(time.Millisecond)).
		With("systems_total", summary.SystemsTotal).
		With("systems_executed", summary.SystemsExecuted).
		With("commands_applied", summary.CommandsApplied)
	if summary.Error != nil {
		entry.Error("tick completed with error", "err", summary.Error)
		return
	}
	entry.Info("tick completed")
}

type noopLogger struct{}

func (noopLogger) With(key string, value any) Logger { return noopLogger{} }
func (noopLogger) Info(msg string, args ...any)       {}
func (noopLogger) Error(msg string, args ...any)      {}

type noopObserver struct{}

func (noopObserver) TickCompleted(TickSummary) {}

var (
	_ Logger       = noopLogger{}
	_ TickObserver = noopObserver{}
	_ TickObserver = compositeObserver{}
	_ TickObserver = loggingObserver{}
)
