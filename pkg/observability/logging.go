package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/provision/pkg/domain"
)

// LogHooks returns console hooks that trace every event on logger at debug level.
// Line content is never logged since it may hold credentials.
func LogHooks(logger *slog.Logger) domain.ConsoleHooks {
	return domain.ConsoleHooks{
		OnLine: func(ctx context.Context, ev *domain.LineEvent) {
			logger.DebugContext(ctx, "line",
				"console_id", ev.ConsoleID,
				"kind", ev.Kind,
				"mode", ev.Mode.String(),
				"gated", ev.Gated,
				"malformed", ev.Malformed,
			)
		},
		OnModeChange: func(ctx context.Context, ev *domain.ModeEvent) {
			logger.DebugContext(ctx, "mode_change",
				"console_id", ev.ConsoleID,
				"from", ev.From.String(),
				"to", ev.To.String(),
			)
		},
		OnJobStart: func(ctx context.Context, ev *domain.JobEvent) {
			logger.DebugContext(ctx, "job_start", "console_id", ev.ConsoleID, "kind", ev.Kind)
		},
		OnJobDone: func(ctx context.Context, ev *domain.JobEvent) {
			if ev.Err != nil {
				logger.DebugContext(ctx, "job_done",
					"console_id", ev.ConsoleID,
					"kind", ev.Kind,
					"duration", ev.Duration,
					"err", ev.Err,
				)
				return
			}
			logger.DebugContext(ctx, "job_done", "console_id", ev.ConsoleID, "kind", ev.Kind, "duration", ev.Duration)
		},
	}
}
