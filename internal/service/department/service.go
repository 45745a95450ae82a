package department

import (
	"context"

	"github.com/sitepulse/attendance-backend-go/internal/domain/department"
)

type DepartmentService interface {
	Create(ctx context.Context, name string, managerID *string) (department.Department, error)
	Get(ctx context.Context, id string) (department.Department, error)
	List(ctx context.Context) ([]department.Department, error)
	Update(ctx context.Context, d department.Department) (department.Department, error)
	Delete(ctx context.Context, id string) error
}

type departmentServiceImpl struct {
	departmentRepo department.DepartmentRepository
}

func NewDepartmentService(departmentRepo department.DepartmentRepository) DepartmentService {
	return &departmentServiceImpl{departmentRepo: departmentRepo}
}

func (s *departmentServiceImpl) Create(ctx context.Context, name string, managerID *string) (department.Department, error) {
	return s.departmentRepo.Create(ctx, department.Department{
		Name:      name,
		ManagerID: managerID,
	})
}

func (s *departmentServiceImpl) Get(ctx context.Context, id string) (department.Department, error) {
	return s.departmentRepo.GetByID(ctx, id)
}

func (s *departmentServiceImpl) List(ctx context.Context) ([]department.Department, error) {
	return s.departmentRepo.List(ctx)
}

func (s *departmentServiceImpl) Update(ctx context.Context, d department.Department) (department.Department, error) {
	if err := s.departmentRepo.Update(ctx, d); err != nil {
		return department.Department{}, err
	}
	return s.departmentRepo.GetByID(ctx, d.ID)
}

func (s *departmentServiceImpl) Delete(ctx context.Context, id string) error {
	return s.departmentRepo.Delete(ctx, id)
}
