package attendance

import "time"

// Location is a recorded device position attached to a check-in or
// check-out.
type Location struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters"`
}

// Record is one user's attendance for one calendar day. At most one record
// exists per (UserID, Date): it is created on check-in and mutated in place
// on check-out, never deleted.
type Record struct {
	ID               string
	UserID           string
	Date             time.Time
	CheckInTime      *time.Time
	CheckOutTime     *time.Time
	CheckInLocation  *Location
	CheckOutLocation *Location
	CheckInSelfie    *string
	CheckOutSelfie   *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// DTO
	UserFullName *string
}

// Action distinguishes the two attendance operations.
type Action string

const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

func (a Action) Valid() bool {
	return a == ActionCheckIn || a == ActionCheckOut
}

// DayStatus is the derived attendance state for one day.
type DayStatus string

const (
	StatusNotCheckedIn DayStatus = "not-checked-in"
	StatusCheckedIn    DayStatus = "checked-in"
	StatusCheckedOut   DayStatus = "checked-out"
)

// DeriveDayStatus projects a day's record onto its status. A nil record
// means the user has not checked in.
func DeriveDayStatus(rec *Record) DayStatus {
	switch {
	case rec == nil || rec.CheckInTime == nil:
		return StatusNotCheckedIn
	case rec.CheckOutTime == nil:
		return StatusCheckedIn
	default:
		return StatusCheckedOut
	}
}

// DayKey formats a timestamp as the calendar-day partition key.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
