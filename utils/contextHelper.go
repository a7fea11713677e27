package utils

import (
	"context"

	"bitbucket.org/kumulus/repair_costs/appctx"
)

var (
	ContextKeyRunId   = appctx.ContextKeyRunId
	ContextKeyRunDate = appctx.ContextKeyRunDate
)

func GetRunIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyRunId)
}

// GetRunDateFromContext returns the run date as YYYY-MM-DD.
func GetRunDateFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyRunDate)
}

func SetRunIdInContext(ctx context.Context, runId string) context.Context {
	return appctx.Set(ctx, ContextKeyRunId, runId)
}

func SetRunDateInContext(ctx context.Context, runDate string) context.Context {
	return appctx.Set(ctx, ContextKeyRunDate, runDate)
}
