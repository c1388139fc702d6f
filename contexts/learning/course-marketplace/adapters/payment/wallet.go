// Package payment holds PaymentCollaborator adapters.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	"academy/contexts/learning/course-marketplace/ports"

	"github.com/google/uuid"
)

const insufficientFundsReason = "insufficient funds"

// WalletGateway is a process-local ledger of balances standing in for the
// external wallet service. Every identity starts with the opening balance.
// A transfer either moves the whole amount or nothing.
type WalletGateway struct {
	mu             sync.Mutex
	balances       map[entities.Identity]uint64
	openingBalance uint64
	logger         *slog.Logger
}

func NewWalletGateway(openingBalance uint64, logger *slog.Logger) *WalletGateway {
	return &WalletGateway{
		balances:       make(map[entities.Identity]uint64),
		openingBalance: openingBalance,
		logger:         application.ResolveLogger(logger),
	}
}

func (g *WalletGateway) Settle(ctx context.Context, request ports.SettlementRequest) (ports.SettlementResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.SettlementResult{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	reference := uuid.NewString()
	from := g.balanceLocked(request.From)
	if from < request.Amount {
		g.logger.Info("wallet transfer declined",
			"event", "wallet_transfer_declined",
			"module", application.ModuleName,
			"layer", "adapter",
			"reference", reference,
			"from", request.From.String(),
			"amount", request.Amount,
			"balance", from,
		)
		return ports.SettlementResult{
			Reference: reference,
			Status:    entities.TransactionStatusFailed,
			Reason:    fmt.Sprintf("%s: balance %d below amount %d", insufficientFundsReason, from, request.Amount),
		}, nil
	}

	g.balances[request.From] = from - request.Amount
	if request.To != request.From {
		g.balances[request.To] = g.balanceLocked(request.To) + request.Amount
	} else {
		g.balances[request.To] = from
	}

	g.logger.Info("wallet transfer completed",
		"event", "wallet_transfer_completed",
		"module", application.ModuleName,
		"layer", "adapter",
		"reference", reference,
		"from", request.From.String(),
		"to", request.To.String(),
		"amount", request.Amount,
		"memo", request.Memo,
	)
	return ports.SettlementResult{
		Reference: reference,
		Status:    entities.TransactionStatusCompleted,
	}, nil
}

// Deposit credits an identity, for seeding and tests.
func (g *WalletGateway) Deposit(identity entities.Identity, amount uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[identity] = g.balanceLocked(identity) + amount
}

func (g *WalletGateway) Balance(identity entities.Identity) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balanceLocked(identity)
}

func (g *WalletGateway) balanceLocked(identity entities.Identity) uint64 {
	if balance, ok := g.balances[identity]; ok {
		return balance
	}
	return g.openingBalance
}
