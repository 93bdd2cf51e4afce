package services

import (
	"context"

	"github.com/tradepulse/backend/internal/domain/reconrun"
)

type triggerKey struct{}

// WithTrigger marks the context with what initiated the reconciliation,
// so the run history can tell API calls, the scheduler and the CLI apart.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

// TriggerFromContext returns the recorded trigger, defaulting to "api"
func TriggerFromContext(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok && t != "" {
		return t
	}
	return reconrun.TriggerAPI
}
