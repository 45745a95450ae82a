package settings

import "github.com/sitepulse/attendance-backend-go/internal/pkg/validator"

type UpdateRequest struct {
	RadiusMeters              float64 `json:"radius_meters"`
	WorkingHoursStart         string  `json:"working_hours_start"`
	WorkingHoursEnd           string  `json:"working_hours_end"`
	AllowEmployeeLocationView bool    `json:"allow_employee_location_view"`
}

func (r UpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.RadiusMeters <= 0 {
		errs = append(errs, validator.ValidationError{Field: "radius_meters", Message: "must be positive"})
	}
	if !validator.IsValidTimeOfDay(r.WorkingHoursStart) {
		errs = append(errs, validator.ValidationError{Field: "working_hours_start", Message: "must be HH:MM"})
	}
	if !validator.IsValidTimeOfDay(r.WorkingHoursEnd) {
		errs = append(errs, validator.ValidationError{Field: "working_hours_end", Message: "must be HH:MM"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type Response struct {
	RadiusMeters              float64 `json:"radius_meters"`
	WorkingHoursStart         string  `json:"working_hours_start"`
	WorkingHoursEnd           string  `json:"working_hours_end"`
	AllowEmployeeLocationView bool    `json:"allow_employee_location_view"`
}

func ToResponse(s Settings) Response {
	return Response{
		RadiusMeters:              s.RadiusMeters,
		WorkingHoursStart:         s.WorkingHoursStart,
		WorkingHoursEnd:           s.WorkingHoursEnd,
		AllowEmployeeLocationView: s.AllowEmployeeLocationView,
	}
}
