package entities

import (
	"strings"
	"time"

	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "Pending"
	TransactionStatusCompleted TransactionStatus = "Completed"
	TransactionStatusFailed    TransactionStatus = "Failed"
)

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// Transaction is one payment attempt. The status moves from Pending to a
// terminal value exactly once.
type Transaction struct {
	TransactionID string
	From          Identity
	To            Identity
	Amount        uint64
	Memo          string
	Status        TransactionStatus
	SettlementRef string
	FailureReason string
	CreatedAt     time.Time
	SettledAt     time.Time
}

func NewPendingTransaction(
	transactionID string,
	from Identity,
	to Identity,
	amount uint64,
	memo string,
	createdAt time.Time,
) (Transaction, error) {
	if strings.TrimSpace(transactionID) == "" || strings.TrimSpace(memo) == "" {
		return Transaction{}, domainerrors.ErrInvalidRequest
	}
	if from.IsZero() {
		return Transaction{}, domainerrors.ErrMissingIdentity
	}
	return Transaction{
		TransactionID: transactionID,
		From:          from,
		To:            to,
		Amount:        amount,
		Memo:          memo,
		Status:        TransactionStatusPending,
		CreatedAt:     createdAt.UTC(),
	}, nil
}

func (t Transaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}

func (t *Transaction) Settle(status TransactionStatus, reference string, reason string, settledAt time.Time) error {
	if t.IsTerminal() {
		return domainerrors.ErrTransactionFinalized
	}
	if !status.IsTerminal() {
		return domainerrors.ErrInvalidSettlement
	}
	t.Status = status
	t.SettlementRef = reference
	t.FailureReason = reason
	t.SettledAt = settledAt.UTC()
	return nil
}
