package queries

import (
	"context"
	"log/slog"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/application/ledger"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
)

type ListTransactionsQuery struct {
	Caller entities.Identity
}

type ListTransactionsResult struct {
	Items []entities.Transaction
}

// ListTransactionsUseCase returns the caller's own payment attempts, newest
// first.
type ListTransactionsUseCase struct {
	Ledger ledger.Ledger
	Logger *slog.Logger
}

func (u ListTransactionsUseCase) Execute(ctx context.Context, query ListTransactionsQuery) (ListTransactionsResult, error) {
	if query.Caller.IsZero() {
		return ListTransactionsResult{}, domainerrors.ErrMissingIdentity
	}
	items, err := u.Ledger.ListByPayer(ctx, query.Caller)
	if err != nil {
		application.ResolveLogger(u.Logger).Error("list transactions failed",
			"event", "list_transactions_failed",
			"module", application.ModuleName,
			"layer", "application",
			"payer", query.Caller.String(),
			"error", err.Error(),
		)
		return ListTransactionsResult{}, err
	}
	return ListTransactionsResult{Items: items}, nil
}
