package leave

import "context"

type LeaveRepository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	ListByUser(ctx context.Context, userID string) ([]Request, error)
	ListByDepartment(ctx context.Context, department string) ([]Request, error)
	ListByStatus(ctx context.Context, status Status) ([]Request, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
