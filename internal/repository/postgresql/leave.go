package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitepulse/attendance-backend-go/internal/domain/leave"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type leaveRepository struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepository{db: db}
}

const leaveColumns = `
	l.id, l.user_id, l.type, l.from_date, l.to_date,
	l.reason, l.status, l.days, l.department,
	l.created_at, l.updated_at,
	u.full_name
`

func scanLeaveRequest(row pgx.Row) (leave.Request, error) {
	var req leave.Request
	err := row.Scan(
		&req.ID, &req.UserID, &req.Type, &req.FromDate, &req.ToDate,
		&req.Reason, &req.Status, &req.Days, &req.Department,
		&req.CreatedAt, &req.UpdatedAt,
		&req.UserFullName,
	)
	return req, err
}

// Create implements leave.LeaveRepository.
func (r *leaveRepository) Create(ctx context.Context, req leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	query := `
		INSERT INTO leave_requests (
			id, user_id, type, from_date, to_date,
			reason, status, days, department
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID, req.UserID, req.Type, req.FromDate, req.ToDate,
		req.Reason, req.Status, req.Days, req.Department,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return req, nil
}

// GetByID implements leave.LeaveRepository.
func (r *leaveRepository) GetByID(ctx context.Context, id string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveColumns + `
		FROM leave_requests l
		JOIN users u ON u.id = l.user_id
		WHERE l.id = $1
	`

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Request{}, leave.ErrRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return req, nil
}

// ListByUser implements leave.LeaveRepository.
func (r *leaveRepository) ListByUser(ctx context.Context, userID string) ([]leave.Request, error) {
	query := `
		SELECT ` + leaveColumns + `
		FROM leave_requests l
		JOIN users u ON u.id = l.user_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC
	`
	return r.queryRequests(ctx, query, userID)
}

// ListByDepartment implements leave.LeaveRepository.
func (r *leaveRepository) ListByDepartment(ctx context.Context, department string) ([]leave.Request, error) {
	query := `
		SELECT ` + leaveColumns + `
		FROM leave_requests l
		JOIN users u ON u.id = l.user_id
		WHERE l.department = $1
		ORDER BY l.created_at DESC
	`
	return r.queryRequests(ctx, query, department)
}

// ListByStatus implements leave.LeaveRepository.
func (r *leaveRepository) ListByStatus(ctx context.Context, status leave.Status) ([]leave.Request, error) {
	query := `
		SELECT ` + leaveColumns + `
		FROM leave_requests l
		JOIN users u ON u.id = l.user_id
		WHERE l.status = $1
		ORDER BY l.created_at DESC
	`
	return r.queryRequests(ctx, query, status)
}

func (r *leaveRepository) queryRequests(ctx context.Context, query string, args ...any) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// UpdateStatus implements leave.LeaveRepository.
func (r *leaveRepository) UpdateStatus(ctx context.Context, id string, status leave.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update leave request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrRequestNotFound
	}

	return nil
}
