package repositories

import (
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist or does not
	// belong to the requesting merchant.
	ErrNotFound = errors.New("record not found")

	// ErrStatusConflict is returned by conditional status updates when the
	// session already advanced past the expected state.
	ErrStatusConflict = errors.New("session status changed concurrently")

	// ErrIllegalTransition rejects a status change the lifecycle state
	// machine does not allow. Indicates a caller bug, not a race.
	ErrIllegalTransition = errors.New("illegal session status transition")
)

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). Used to resolve idempotent-create races.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
