package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/sitepulse/attendance-backend-go/internal/domain/department"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type departmentRepository struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepository{db: db}
}

// Create implements department.DepartmentRepository.
func (r *departmentRepository) Create(ctx context.Context, d department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	query := `
		INSERT INTO departments (id, name, manager_id)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, d.ID, d.Name, d.ManagerID).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "departments_name_key") {
			return department.Department{}, department.ErrDepartmentExists
		}
		return department.Department{}, fmt.Errorf("failed to create department: %w", err)
	}

	return d, nil
}

// GetByID implements department.DepartmentRepository.
func (r *departmentRepository) GetByID(ctx context.Context, id string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.name, d.manager_id, d.created_at, d.updated_at,
		       (SELECT COUNT(*) FROM users u WHERE u.department = d.name)
		FROM departments d
		WHERE d.id = $1
	`

	var d department.Department
	err := q.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Name, &d.ManagerID, &d.CreatedAt, &d.UpdatedAt, &d.EmployeeCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department: %w", err)
	}

	return d, nil
}

// List implements department.DepartmentRepository.
func (r *departmentRepository) List(ctx context.Context) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.name, d.manager_id, d.created_at, d.updated_at,
		       (SELECT COUNT(*) FROM users u WHERE u.department = d.name)
		FROM departments d
		ORDER BY d.name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []department.Department
	for rows.Next() {
		var d department.Department
		if err := rows.Scan(
			&d.ID, &d.Name, &d.ManagerID, &d.CreatedAt, &d.UpdatedAt, &d.EmployeeCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}

	return departments, rows.Err()
}

// Update implements department.DepartmentRepository.
func (r *departmentRepository) Update(ctx context.Context, d department.Department) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE departments SET
			name = $2,
			manager_id = $3,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, d.ID, d.Name, d.ManagerID)
	if err != nil {
		if isUniqueViolation(err, "departments_name_key") {
			return department.ErrDepartmentExists
		}
		return fmt.Errorf("failed to update department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}

	return nil
}

// Delete implements department.DepartmentRepository.
func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}

	return nil
}
