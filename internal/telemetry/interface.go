package telemetry

import "context"

type ITelemetry interface {
	// ReconcilePending re-checks every pending history entry against the
	// chains and settles the ones whose outcome is now known.
	ReconcilePending(ctx context.Context) (*ReconcileReport, error)

	// CountTransactions refreshes the per-status history gauges.
	CountTransactions(ctx context.Context) (map[string]int, error)
}
