package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn     = errors.New("you have already checked in today")
	ErrNotCheckedIn         = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut    = errors.New("you have already checked out today")
	ErrOutsideAllowedRadius = errors.New("you are outside the allowed radius")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
)
