package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create creates the day's record on check-in.
	Create(ctx context.Context, record Record) (Record, error)

	// GetByUserAndDate retrieves the record for a user on a calendar day.
	// Used to prevent double check-in and to derive the day status.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Record, error)

	// Update mutates an existing record in place (check-out fields).
	Update(ctx context.Context, record Record) error

	// ListByUser retrieves a user's records, most recent date first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, int64, error)

	// ListByDate retrieves every record for one calendar day (manager view).
	ListByDate(ctx context.Context, date time.Time) ([]Record, error)

	// ListOpenBefore retrieves records checked in before the cutoff that
	// have no check-out yet. Used by the auto-close job.
	ListOpenBefore(ctx context.Context, cutoff time.Time) ([]Record, error)
}
