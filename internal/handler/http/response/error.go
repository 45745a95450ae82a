package response

import (
	"errors"
	"net/http"

	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
	"github.com/sitepulse/attendance-backend-go/internal/domain/auth"
	"github.com/sitepulse/attendance-backend-go/internal/domain/department"
	"github.com/sitepulse/attendance-backend-go/internal/domain/leave"
	"github.com/sitepulse/attendance-backend-go/internal/domain/user"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid username or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUsernameExists):
		Conflict(w, "Username already taken")
	case errors.Is(err, user.ErrEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrAdminAccessRequired),
		errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, err.Error())

	// Attendance domain errors. These carry distinct codes so the
	// device agent can tell the conflict kinds apart when it replays
	// queued actions.
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		fail(w, http.StatusConflict, CodeAlreadyCheckedIn, "Already checked in today", nil)
	case errors.Is(err, attendance.ErrNotCheckedIn):
		fail(w, http.StatusConflict, CodeNotCheckedIn, "Not checked in yet", nil)
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		fail(w, http.StatusConflict, CodeAlreadyCheckedOut, "Already checked out today", nil)
	case errors.Is(err, attendance.ErrOutsideAllowedRadius):
		fail(w, http.StatusBadRequest, CodeOutsideRadius, "Location is outside the allowed site radius", nil)
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Leave domain errors
	case errors.Is(err, leave.ErrRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrAlreadyDecided):
		Conflict(w, "Leave request has already been decided")
	case errors.Is(err, leave.ErrInvalidTransition):
		Conflict(w, "Leave request cannot move to that status")
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, "To date must not be before from date", nil)
	case errors.Is(err, leave.ErrNotDepartmentOwner):
		Forbidden(w, "Leave request belongs to another department")

	// Department domain errors
	case errors.Is(err, department.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, department.ErrDepartmentExists):
		Conflict(w, "Department name already exists")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
