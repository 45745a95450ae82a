package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sitepulse/attendance-backend-go/internal/domain/attendance"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.user_id, a.date,
	a.check_in_time, a.check_out_time,
	a.check_in_latitude, a.check_in_longitude, a.check_in_accuracy,
	a.check_out_latitude, a.check_out_longitude, a.check_out_accuracy,
	a.check_in_selfie_url, a.check_out_selfie_url,
	a.created_at, a.updated_at,
	u.full_name
`

// scanRecord assembles a Record from one joined row, folding the nullable
// coordinate columns back into Location values.
func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	var inLat, inLng, inAcc, outLat, outLng, outAcc *float64

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date,
		&rec.CheckInTime, &rec.CheckOutTime,
		&inLat, &inLng, &inAcc,
		&outLat, &outLng, &outAcc,
		&rec.CheckInSelfie, &rec.CheckOutSelfie,
		&rec.CreatedAt, &rec.UpdatedAt,
		&rec.UserFullName,
	)
	if err != nil {
		return attendance.Record{}, err
	}

	if inLat != nil && inLng != nil {
		rec.CheckInLocation = &attendance.Location{Latitude: *inLat, Longitude: *inLng}
		if inAcc != nil {
			rec.CheckInLocation.AccuracyMeters = *inAcc
		}
	}
	if outLat != nil && outLng != nil {
		rec.CheckOutLocation = &attendance.Location{Latitude: *outLat, Longitude: *outLng}
		if outAcc != nil {
			rec.CheckOutLocation.AccuracyMeters = *outAcc
		}
	}

	return rec, nil
}

func locationColumns(loc *attendance.Location) (lat, lng, acc *float64) {
	if loc == nil {
		return nil, nil, nil
	}
	return &loc.Latitude, &loc.Longitude, &loc.AccuracyMeters
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	inLat, inLng, inAcc := locationColumns(rec.CheckInLocation)

	query := `
		INSERT INTO attendance_records (
			id, user_id, date, check_in_time,
			check_in_latitude, check_in_longitude, check_in_accuracy,
			check_in_selfie_url
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Date,
		rec.CheckInTime,
		inLat, inLng, inAcc,
		rec.CheckInSelfie,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return rec, nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1 AND a.date = $2
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return &rec, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	outLat, outLng, outAcc := locationColumns(rec.CheckOutLocation)

	query := `
		UPDATE attendance_records SET
			check_out_time = $2,
			check_out_latitude = $3,
			check_out_longitude = $4,
			check_out_accuracy = $5,
			check_out_selfie_url = $6,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		rec.ID,
		rec.CheckOutTime,
		outLat, outLng, outAcc,
		rec.CheckOutSelfie,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// ListByUser implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	var total int64
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendance_records WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1
		ORDER BY a.date DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, total, rows.Err()
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE a.date = $1
		ORDER BY a.check_in_time ASC
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records by date: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ListOpenBefore implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenBefore(ctx context.Context, cutoff time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE a.check_in_time IS NOT NULL
		  AND a.check_out_time IS NULL
		  AND a.check_in_time < $1
		ORDER BY a.check_in_time ASC
	`

	rows, err := q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
