package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"

	"github.com/google/uuid"
)

// Memory is an in-process RecordStore used by tests and the demo agent.
// It applies the same day-key invariants as the API.
type Memory struct {
	mu      sync.Mutex
	records map[string]attendance.RecordResponse

	// Offline simulates a severed connection: every call fails with
	// ErrStoreUnreachable while set.
	offline bool

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]attendance.RecordResponse),
		now:     time.Now,
	}
}

// SetOffline toggles simulated connectivity loss.
func (m *Memory) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

func (m *Memory) key(userID, day string) string {
	return userID + "/" + day
}

func (m *Memory) dayOf(req attendance.CheckRequest) (string, string) {
	at := req.EffectiveTime(m.now())
	return attendance.DayKey(at), at.UTC().Format(time.RFC3339)
}

// CreateRecord implements RecordStore.
func (m *Memory) CreateRecord(_ context.Context, req attendance.CheckRequest) (attendance.RecordResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offline {
		return attendance.RecordResponse{}, ErrStoreUnreachable
	}

	day, at := m.dayOf(req)
	key := m.key(req.UserID, day)
	if _, exists := m.records[key]; exists {
		return attendance.RecordResponse{}, ErrRecordExists
	}

	rec := attendance.RecordResponse{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Date:        day,
		CheckInTime: &at,
		CheckInLocation: &attendance.Location{
			Latitude:       req.Latitude,
			Longitude:      req.Longitude,
			AccuracyMeters: req.AccuracyMeters,
		},
		CheckInSelfie: &req.Selfie,
	}
	m.records[key] = rec
	return rec, nil
}

// AppendCheckout implements RecordStore.
func (m *Memory) AppendCheckout(_ context.Context, req attendance.CheckRequest) (attendance.RecordResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offline {
		return attendance.RecordResponse{}, ErrStoreUnreachable
	}

	day, at := m.dayOf(req)
	rec, exists := m.records[m.key(req.UserID, day)]
	if !exists || rec.CheckInTime == nil {
		return attendance.RecordResponse{}, ErrNoOpenRecord
	}
	if rec.CheckOutTime != nil {
		return attendance.RecordResponse{}, ErrRecordExists
	}

	rec.CheckOutTime = &at
	rec.CheckOutLocation = &attendance.Location{
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AccuracyMeters: req.AccuracyMeters,
	}
	rec.CheckOutSelfie = &req.Selfie
	m.records[m.key(req.UserID, day)] = rec
	return rec, nil
}

// FindTodaysRecord implements RecordStore.
func (m *Memory) FindTodaysRecord(_ context.Context, userID string) (*attendance.RecordResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offline {
		return nil, ErrStoreUnreachable
	}

	rec, exists := m.records[m.key(userID, attendance.DayKey(m.now()))]
	if !exists {
		return nil, nil
	}
	return &rec, nil
}

// ListByUser implements RecordStore.
func (m *Memory) ListByUser(_ context.Context, userID string, limit, offset int) ([]attendance.RecordResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.offline {
		return nil, ErrStoreUnreachable
	}

	var out []attendance.RecordResponse
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
