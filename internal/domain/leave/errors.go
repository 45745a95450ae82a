package leave

import "errors"

var (
	ErrRequestNotFound    = errors.New("leave request not found")
	ErrInvalidTransition  = errors.New("invalid leave status transition")
	ErrAlreadyDecided     = errors.New("leave request has already been decided")
	ErrInvalidDateRange   = errors.New("to date must not be before from date")
	ErrNotDepartmentOwner = errors.New("leave request belongs to another department")
)
