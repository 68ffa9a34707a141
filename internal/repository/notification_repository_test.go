package repository_test

import (
	"context"
	"testing"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationCreate_RejectsUnknownBranch(t *testing.T) {
	pg := testDB(t)
	repo := repository.NotificationRepository{DB: pg}

	_, err := repo.Create(context.Background(), repository.CreateNotificationInput{
		BranchID: 1<<40 + 7,
		Title:    "maintenance",
		Message:  "water pump offline",
		Type:     domain.NotificationInfo,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNotificationCreate_TargetsExistingBranch(t *testing.T) {
	pg := testDB(t)
	ctx := context.Background()
	repo := repository.NotificationRepository{DB: pg}

	branchID, _ := seedBranchWithEmployee(t, pg, uniqueSlug("notif"))
	t.Cleanup(func() {
		_, _ = pg.Pool.Exec(ctx, `DELETE FROM notifications WHERE branch_id = $1`, branchID)
	})

	n, err := repo.Create(ctx, repository.CreateNotificationInput{
		BranchID: branchID,
		Title:    "maintenance",
		Message:  "water pump offline",
		Type:     domain.NotificationWarning,
	})
	require.NoError(t, err)
	assert.Equal(t, branchID, n.BranchID)
	assert.False(t, n.IsRead)
}
