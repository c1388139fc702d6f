package payment

import (
	"context"
	"testing"

	"academy/contexts/learning/course-marketplace/domain/entities"
	"academy/contexts/learning/course-marketplace/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletGatewayMovesFunds(t *testing.T) {
	gateway := NewWalletGateway(0, nil)
	gateway.Deposit("buyer", 150)

	result, err := gateway.Settle(context.Background(), ports.SettlementRequest{
		From:   "buyer",
		To:     "instructor",
		Amount: 100,
		Memo:   "memo-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, result.Status)
	assert.NotEmpty(t, result.Reference)
	assert.Equal(t, uint64(50), gateway.Balance("buyer"))
	assert.Equal(t, uint64(100), gateway.Balance("instructor"))
}

func TestWalletGatewayDeclinesInsufficientFunds(t *testing.T) {
	gateway := NewWalletGateway(10, nil)

	result, err := gateway.Settle(context.Background(), ports.SettlementRequest{
		From:   "buyer",
		To:     "instructor",
		Amount: 11,
		Memo:   "memo-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusFailed, result.Status)
	assert.Contains(t, result.Reason, insufficientFundsReason)
	assert.Equal(t, uint64(10), gateway.Balance("buyer"))
	assert.Equal(t, uint64(10), gateway.Balance("instructor"))
}

func TestWalletGatewayFreeCourseAlwaysSettles(t *testing.T) {
	gateway := NewWalletGateway(0, nil)

	result, err := gateway.Settle(context.Background(), ports.SettlementRequest{From: "buyer", To: "instructor", Memo: "m"})
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, result.Status)
}

func TestWalletGatewayHonoursCancelledContext(t *testing.T) {
	gateway := NewWalletGateway(100, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gateway.Settle(ctx, ports.SettlementRequest{From: "buyer", To: "instructor", Amount: 1, Memo: "m"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(100), gateway.Balance("buyer"))
}
