// Package ledger records payment attempts and their outcomes.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"
)

// DefaultSettleTimeout bounds one collaborator call when Ledger.SettleTimeout
// is unset. It must stay below the settlement reaper timeout so that a live
// attempt is always finalized by the ledger before the reaper can see it.
const DefaultSettleTimeout = 30 * time.Second

const settleDeadlineReason = "settlement deadline exceeded"

type Attempt struct {
	From   entities.Identity
	To     entities.Identity
	Amount uint64
	Memo   string
}

type Ledger struct {
	Transactions ports.TransactionRepository
	Payments     ports.PaymentCollaborator
	Clock        ports.Clock
	IDGenerator  ports.IDGenerator
	Metrics      ports.Metrics
	Logger       *slog.Logger

	// SettleTimeout caps how long RecordAttempt waits for the collaborator.
	SettleTimeout time.Duration
}

// RecordAttempt persists a Pending transaction under a fresh id, asks the
// payment collaborator to settle it, and persists the terminal status before
// returning. It never retries. A collaborator error or a non-terminal reply
// is recorded as Failed, and so is a collaborator that has not answered
// within SettleTimeout.
//
// The returned error is non-nil only when the ledger itself could not be
// written; a declined payment is reported through the transaction status.
func (l Ledger) RecordAttempt(ctx context.Context, attempt Attempt) (entities.Transaction, error) {
	logger := application.ResolveLogger(l.Logger)

	transactionID, err := l.IDGenerator.NewID(ctx)
	if err != nil {
		return entities.Transaction{}, err
	}
	pending, err := entities.NewPendingTransaction(
		transactionID,
		attempt.From,
		attempt.To,
		attempt.Amount,
		attempt.Memo,
		application.Now(l.Clock),
	)
	if err != nil {
		return entities.Transaction{}, err
	}
	if err := l.Transactions.CreateTransaction(ctx, pending); err != nil {
		logger.Error("ledger failed to persist pending transaction",
			"event", "ledger_create_pending_failed",
			"module", application.ModuleName,
			"layer", "application",
			"transaction_id", transactionID,
			"error", err.Error(),
		)
		return entities.Transaction{}, err
	}

	logger.Info("payment attempt started",
		"event", "ledger_payment_started",
		"module", application.ModuleName,
		"layer", "application",
		"transaction_id", transactionID,
		"from", attempt.From.String(),
		"to", attempt.To.String(),
		"amount", attempt.Amount,
		"memo", attempt.Memo,
	)

	result, settleErr := l.settle(ctx, transactionID, ports.SettlementRequest{
		From:   attempt.From,
		To:     attempt.To,
		Amount: attempt.Amount,
		Memo:   attempt.Memo,
	}, logger)
	settlement := resolveSettlement(result, settleErr)
	settlement.SettledAt = application.Now(l.Clock)

	// The terminal status is written even when the caller has gone away.
	finalizeCtx := context.WithoutCancel(ctx)
	final, err := l.Transactions.FinalizeTransaction(finalizeCtx, transactionID, settlement)
	if errors.Is(err, domainerrors.ErrTransactionFinalized) {
		stored, getErr := l.Transactions.GetTransaction(finalizeCtx, transactionID)
		if getErr != nil {
			return entities.Transaction{}, getErr
		}
		logger.Warn("transaction finalized before settlement was recorded",
			"event", "ledger_finalize_lost_race",
			"module", application.ModuleName,
			"layer", "application",
			"transaction_id", transactionID,
			"stored_status", string(stored.Status),
			"settled_status", string(settlement.Status),
		)
		final = stored
	} else if err != nil {
		logger.Error("ledger failed to persist settlement",
			"event", "ledger_finalize_failed",
			"module", application.ModuleName,
			"layer", "application",
			"transaction_id", transactionID,
			"settled_status", string(settlement.Status),
			"error", err.Error(),
		)
		return entities.Transaction{}, err
	}

	if l.Metrics != nil {
		l.Metrics.IncSettlement(final.Status)
	}
	logger.Info("payment attempt finalized",
		"event", "ledger_payment_finalized",
		"module", application.ModuleName,
		"layer", "application",
		"transaction_id", final.TransactionID,
		"status", string(final.Status),
		"settlement_ref", final.SettlementRef,
		"failure_reason", final.FailureReason,
	)
	return final, nil
}

// settle calls the collaborator under the settle deadline. Caller
// cancellation does not abort a started payment. A reply that arrives after
// the deadline is logged for reconciliation and otherwise ignored.
func (l Ledger) settle(
	ctx context.Context,
	transactionID string,
	request ports.SettlementRequest,
	logger *slog.Logger,
) (ports.SettlementResult, error) {
	timeout := l.SettleTimeout
	if timeout <= 0 {
		timeout = DefaultSettleTimeout
	}
	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	type reply struct {
		result ports.SettlementResult
		err    error
	}
	replies := make(chan reply, 1)
	go func() {
		result, err := l.Payments.Settle(settleCtx, request)
		replies <- reply{result: result, err: err}
	}()

	select {
	case r := <-replies:
		return r.result, r.err
	case <-settleCtx.Done():
		go func() {
			late := <-replies
			if late.err == nil && late.result.Status == entities.TransactionStatusCompleted {
				logger.Error("collaborator completed a payment after its deadline",
					"event", "ledger_late_settlement",
					"module", application.ModuleName,
					"layer", "application",
					"transaction_id", transactionID,
					"settlement_ref", late.result.Reference,
					"memo", request.Memo,
				)
			}
		}()
		return ports.SettlementResult{}, fmt.Errorf("%s after %s", settleDeadlineReason, timeout)
	}
}

func (l Ledger) GetTransaction(ctx context.Context, transactionID string) (entities.Transaction, error) {
	return l.Transactions.GetTransaction(ctx, transactionID)
}

func (l Ledger) ListByPayer(ctx context.Context, payer entities.Identity) ([]entities.Transaction, error) {
	return l.Transactions.ListTransactionsByPayer(ctx, payer)
}

func resolveSettlement(result ports.SettlementResult, err error) ports.Settlement {
	if err != nil {
		return ports.Settlement{
			Status:        entities.TransactionStatusFailed,
			Reference:     result.Reference,
			FailureReason: err.Error(),
		}
	}
	if !result.Status.IsTerminal() {
		return ports.Settlement{
			Status:        entities.TransactionStatusFailed,
			Reference:     result.Reference,
			FailureReason: fmt.Sprintf("collaborator returned non-terminal status %q", result.Status),
		}
	}
	return ports.Settlement{
		Status:        result.Status,
		Reference:     result.Reference,
		FailureReason: result.Reason,
	}
}
