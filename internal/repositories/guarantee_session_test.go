package repositories

import (
	"context"
	"testing"

	"resguard/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestUpdateStatusIfRejectsIllegalTransitions(t *testing.T) {
	// The state-machine guard runs before any database access.
	repo := NewGuaranteeSessionRepository(nil)

	tests := []struct {
		from models.SessionStatus
		to   models.SessionStatus
	}{
		{models.StatusCompleted, models.StatusPending},
		{models.StatusCancelled, models.StatusValidated},
		{models.StatusNoshowCharged, models.StatusValidated},
		{models.StatusNoshowFailed, models.StatusNoshowCharged},
		{models.StatusPending, models.StatusCompleted},
		{models.StatusPending, models.StatusNoshowCharged},
		{models.StatusValidated, models.StatusCancelled},
	}

	for _, tt := range tests {
		err := repo.UpdateStatusIf(context.Background(), "sess-1", tt.from, tt.to, nil)
		assert.ErrorIs(t, err, ErrIllegalTransition, "%s -> %s", tt.from, tt.to)
	}
}
