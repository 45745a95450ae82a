package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
	"github.com/sitepulse/attendance-backend-go/internal/handler/http/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkRequest() attendance.CheckRequest {
	return attendance.CheckRequest{
		Latitude:       26.6814,
		Longitude:      68.0169,
		AccuracyMeters: 10,
		Selfie:         "data:image/jpeg;base64,aGVsbG8=",
	}
}

// The client decodes the error code the API emits, not the wording of
// the message, so conflict kinds survive message changes.
func TestClientMapsConflictCodes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		checkIn bool
	}{
		{"duplicate check-in is already applied", attendance.ErrAlreadyCheckedIn, ErrRecordExists, true},
		{"check-out without check-in has no open record", attendance.ErrNotCheckedIn, ErrNoOpenRecord, false},
		{"duplicate check-out is already applied", attendance.ErrAlreadyCheckedOut, ErrRecordExists, false},
		{"outside fence", attendance.ErrOutsideAllowedRadius, attendance.ErrOutsideAllowedRadius, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				response.HandleError(w, tt.err)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "token")

			var err error
			if tt.checkIn {
				_, err = client.CreateRecord(context.Background(), checkRequest())
			} else {
				_, err = client.AppendCheckout(context.Background(), checkRequest())
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClientDecodesCreatedRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		response.Created(w, "Checked in", attendance.RecordResponse{
			ID:     "rec-1",
			UserID: "user001",
			Date:   "2026-03-09",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token")

	rec, err := client.CreateRecord(context.Background(), checkRequest())
	require.NoError(t, err)
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, "user001", rec.UserID)
}

func TestClientReportsUnreachableStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, "token")

	_, err := client.CreateRecord(context.Background(), checkRequest())
	assert.ErrorIs(t, err, ErrStoreUnreachable)
}
