package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"
)

const settlementTimeoutReason = "settlement timed out"

// SettlementReaper fails transactions that stayed Pending longer than
// Timeout, which only happens when a process died between recording the
// attempt and recording its outcome.
type SettlementReaper struct {
	Transactions ports.TransactionRepository
	Clock        ports.Clock
	Timeout      time.Duration
	BatchSize    int
	Metrics      ports.Metrics
	Logger       *slog.Logger
}

func (r SettlementReaper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	now := application.Now(r.Clock)
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	stale, err := r.Transactions.ListPendingTransactions(ctx, now.Add(-timeout), limit)
	if err != nil {
		logger.Error("pending settlement sweep failed",
			"event", "course_marketplace_settlement_sweep_failed",
			"module", application.ModuleName,
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	reaped := 0
	for _, transaction := range stale {
		_, err := r.Transactions.FinalizeTransaction(ctx, transaction.TransactionID, ports.Settlement{
			Status:        entities.TransactionStatusFailed,
			FailureReason: settlementTimeoutReason,
			SettledAt:     now,
		})
		if errors.Is(err, domainerrors.ErrTransactionFinalized) {
			continue
		}
		if err != nil {
			logger.Error("pending settlement finalize failed",
				"event", "course_marketplace_settlement_reap_failed",
				"module", application.ModuleName,
				"layer", "worker",
				"transaction_id", transaction.TransactionID,
				"error", err.Error(),
			)
			return err
		}
		if r.Metrics != nil {
			r.Metrics.IncSettlement(entities.TransactionStatusFailed)
		}
		reaped++
	}

	if reaped > 0 {
		logger.Warn("stale pending settlements failed",
			"event", "course_marketplace_settlement_reaped",
			"module", application.ModuleName,
			"layer", "worker",
			"reaped_count", reaped,
		)
	}
	return nil
}
