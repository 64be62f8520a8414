package services

import (
	"context"
	"testing"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/adapters/persistence/repositories"
	"masonko-stokvel/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications(t *testing.T) {
	db := newTestDB(t)
	repo := repositories.NewNotificationRepository(db)
	svc := NewNotificationService(repo)
	ctx := context.Background()

	payment := &models.PendingPayment{MemberID: 1, Amount: 500, Method: "eft"}
	svc.NotifyPaymentConfirmed(ctx, payment)
	svc.NotifyPaymentRejected(ctx, payment, "no proof")

	// A broadcast (nil user) reaches everyone.
	require.NoError(t, repo.Create(ctx, &models.Notification{
		Type: NotifyTypeMember, Title: "Meeting", Message: "Monthly meeting on Saturday", Time: "09:00", Unread: true,
	}))

	mine, err := svc.ListForUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	other, err := svc.ListForUser(ctx, 2)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "Meeting", other[0].Title)

	require.NoError(t, svc.MarkRead(ctx, mine[0].ID))
	var fresh models.Notification
	require.NoError(t, db.First(&fresh, mine[0].ID).Error)
	assert.False(t, fresh.Unread)
}

func TestChat(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(repositories.NewChatRepository(db))
	ctx := context.Background()

	_, err := svc.Post(ctx, "Thandi", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	first, err := svc.Post(ctx, "Thandi", "Hello everyone")
	require.NoError(t, err)
	assert.True(t, first.IsSent)

	_, err = svc.Post(ctx, "Sipho", "Hi Thandi")
	require.NoError(t, err)

	history, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "Hello everyone", history[0].Message)
	assert.Equal(t, "Hi Thandi", history[1].Message)
}
