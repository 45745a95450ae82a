package attendance

import (
	"strings"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/pkg/validator"
)

// CheckRequest is the body of a check-in or check-out call. Timestamp is
// optional: the agent sets it when replaying offline-queued actions so the
// recorded time is the moment of capture, not the moment of sync.
type CheckRequest struct {
	UserID         string  `json:"-"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters"`
	Selfie         string  `json:"selfie"`
	Timestamp      *string `json:"timestamp,omitempty"`
}

func (r CheckRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidLatitude(r.Latitude) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "out of range"})
	}
	if !validator.IsValidLongitude(r.Longitude) {
		errs = append(errs, validator.ValidationError{Field: "longitude", Message: "out of range"})
	}
	if r.AccuracyMeters < 0 {
		errs = append(errs, validator.ValidationError{Field: "accuracy_meters", Message: "must not be negative"})
	}
	if validator.IsEmpty(r.Selfie) {
		errs = append(errs, validator.ValidationError{Field: "selfie", Message: "is required"})
	} else if !strings.HasPrefix(r.Selfie, "data:image/") {
		errs = append(errs, validator.ValidationError{Field: "selfie", Message: "must be an image data URI"})
	}
	if r.Timestamp != nil {
		if _, ok := validator.IsValidDateTime(*r.Timestamp); !ok {
			errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "must be an ISO8601 timestamp"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EffectiveTime resolves the request timestamp, falling back to now.
func (r CheckRequest) EffectiveTime(now time.Time) time.Time {
	if r.Timestamp != nil {
		if t, ok := validator.IsValidDateTime(*r.Timestamp); ok {
			return t.UTC()
		}
	}
	return now.UTC()
}

type RecordResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	UserFullName     string    `json:"user_full_name,omitempty"`
	Date             string    `json:"date"`
	CheckInTime      *string   `json:"check_in_time"`
	CheckOutTime     *string   `json:"check_out_time"`
	CheckInLocation  *Location `json:"check_in_location"`
	CheckOutLocation *Location `json:"check_out_location"`
	CheckInSelfie    *string   `json:"check_in_selfie"`
	CheckOutSelfie   *string   `json:"check_out_selfie"`
}

type TodayResponse struct {
	Status DayStatus       `json:"status"`
	Record *RecordResponse `json:"record,omitempty"`
}

type ListResponse struct {
	TotalCount int64            `json:"total_count"`
	Records    []RecordResponse `json:"records"`
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

func ToResponse(rec Record) RecordResponse {
	var fullName string
	if rec.UserFullName != nil {
		fullName = *rec.UserFullName
	}

	return RecordResponse{
		ID:               rec.ID,
		UserID:           rec.UserID,
		UserFullName:     fullName,
		Date:             rec.Date.Format("2006-01-02"),
		CheckInTime:      timePtrToString(rec.CheckInTime),
		CheckOutTime:     timePtrToString(rec.CheckOutTime),
		CheckInLocation:  rec.CheckInLocation,
		CheckOutLocation: rec.CheckOutLocation,
		CheckInSelfie:    rec.CheckInSelfie,
		CheckOutSelfie:   rec.CheckOutSelfie,
	}
}
