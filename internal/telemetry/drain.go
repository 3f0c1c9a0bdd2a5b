package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"git.home.luguber.info/inful/kostelemetry/internal/logfields"
	"git.home.luguber.info/inful/kostelemetry/internal/metrics"
	"git.home.luguber.info/inful/kostelemetry/internal/observability"
	"git.home.luguber.info/inful/kostelemetry/internal/transport"
)

// drainEvents polls client notifications until the client is closed. Nothing
// waits on it; it only logs and counts events.
func drainEvents(client transport.Client, robotID string, recorder metrics.Recorder) {
	ctx := observability.WithRobotID(context.Background(), robotID)
	warnedRejection := false
	for {
		ev, err := client.Poll(ctx)
		if err != nil {
			if !errors.Is(err, transport.ErrClosed) {
				observability.WarnContext(ctx, "Transport event loop stopped", logfields.Error(err))
				return
			}
			observability.DebugContext(ctx, "Transport event loop finished")
			return
		}
		recorder.IncTransportEvent(string(ev.Kind))
		if ev.Kind == transport.EventPublishError && !warnedRejection {
			warnedRejection = true
			observability.WarnContext(ctx, "Broker rejected a publish; further rejections are logged at trace level",
				logfields.Subject(ev.Subject),
				logfields.Error(ev.Err))
		}
		observability.TraceContext(ctx, "Transport event",
			logfields.Event(string(ev.Kind)),
			slog.String("detail", ev.String()))
	}
}
