package store

import (
	"context"
	"errors"

	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
)

var (
	// ErrRecordExists means the write this call wanted is already in
	// place: a check-in for a day that has one, or a check-out on a
	// closed record. Queue replays treat it as applied.
	ErrRecordExists = errors.New("attendance record already written for this day")

	ErrNoOpenRecord     = errors.New("no open attendance record for this day")
	ErrStoreUnreachable = errors.New("attendance store unreachable")
)

// RecordStore is the agent's view of the attendance backend: create a
// record on check-in, complete it on check-out, and read it back.
type RecordStore interface {
	CreateRecord(ctx context.Context, req attendance.CheckRequest) (attendance.RecordResponse, error)
	AppendCheckout(ctx context.Context, req attendance.CheckRequest) (attendance.RecordResponse, error)
	FindTodaysRecord(ctx context.Context, userID string) (*attendance.RecordResponse, error)

	// ListByUser returns the user's records most recent first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]attendance.RecordResponse, error)
}
