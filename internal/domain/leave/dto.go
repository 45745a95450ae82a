package leave

import (
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/pkg/validator"
)

type CreateRequest struct {
	UserID     string `json:"-"`
	Department string `json:"-"`
	Type       string `json:"type"`
	FromDate   string `json:"from_date"`
	ToDate     string `json:"to_date"`
	Reason     string `json:"reason"`
}

func (r CreateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Type(r.Type).Valid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "must be sick, casual, annual or medical"})
	}
	from, okFrom := validator.IsValidDate(r.FromDate)
	if !okFrom {
		errs = append(errs, validator.ValidationError{Field: "from_date", Message: "must be YYYY-MM-DD"})
	}
	to, okTo := validator.IsValidDate(r.ToDate)
	if !okTo {
		errs = append(errs, validator.ValidationError{Field: "to_date", Message: "must be YYYY-MM-DD"})
	}
	if okFrom && okTo && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "to_date", Message: "must not be before from_date"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// InclusiveDays counts the requested days, both endpoints included.
func InclusiveDays(from, to time.Time) int {
	return int(to.Sub(from).Hours()/24) + 1
}

type RequestResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	UserFullName string `json:"user_full_name,omitempty"`
	Type         string `json:"type"`
	FromDate     string `json:"from_date"`
	ToDate       string `json:"to_date"`
	Reason       string `json:"reason"`
	Status       string `json:"status"`
	Days         int    `json:"days"`
	Department   string `json:"department"`
}

func ToResponse(req Request) RequestResponse {
	var fullName string
	if req.UserFullName != nil {
		fullName = *req.UserFullName
	}

	return RequestResponse{
		ID:           req.ID,
		UserID:       req.UserID,
		UserFullName: fullName,
		Type:         string(req.Type),
		FromDate:     req.FromDate.Format("2006-01-02"),
		ToDate:       req.ToDate.Format("2006-01-02"),
		Reason:       req.Reason,
		Status:       string(req.Status),
		Days:         req.Days,
		Department:   req.Department,
	}
}
