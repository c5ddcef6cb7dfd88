package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/memory"
)

func TestSettleIsConditional(t *testing.T) {
	repo := memory.NewPaymentRequestRepository()
	ctx := context.Background()

	req := &entity.PaymentRequest{
		ID:        "req-1",
		LeadID:    "lead-1",
		Amount:    500,
		Status:    entity.PaymentPending,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, req))

	won, err := repo.MarkVerified(ctx, "req-1", "fin-1", "ok")
	require.NoError(t, err)
	assert.True(t, won)

	// The second settle loses the compare-and-swap.
	won, err = repo.MarkRejected(ctx, "req-1", "fin-2", "late")
	require.NoError(t, err)
	assert.False(t, won)

	got, err := repo.FindByID(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentVerified, got.Status)
	assert.Equal(t, "fin-1", *got.VerifiedBy)
}

func TestSettleUnknownRequest(t *testing.T) {
	repo := memory.NewPaymentRequestRepository()

	won, err := repo.MarkVerified(context.Background(), "nope", "fin-1", "")
	require.NoError(t, err)
	assert.False(t, won)
}
