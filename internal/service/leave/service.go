package leave

import (
	"context"
	"log/slog"

	"github.com/sitepulse/attendance-backend-go/internal/domain/leave"
	"github.com/sitepulse/attendance-backend-go/internal/domain/user"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/email"
	"github.com/sitepulse/attendance-backend-go/internal/pkg/validator"
)

type LeaveService interface {
	// Create files a new leave request. It enters the workflow at
	// pending_manager and waits for the employee's department manager.
	Create(ctx context.Context, req leave.CreateRequest) (leave.RequestResponse, error)

	// Approve moves a request forward one stage: a manager forwards it
	// to the admin, the admin finalizes it as approved.
	Approve(ctx context.Context, id string, actor user.User) (leave.RequestResponse, error)

	// Reject finalizes a request as rejected from either pending stage.
	Reject(ctx context.Context, id string, actor user.User) (leave.RequestResponse, error)

	MyRequests(ctx context.Context, userID string) ([]leave.RequestResponse, error)
	DepartmentRequests(ctx context.Context, department string) ([]leave.RequestResponse, error)
	PendingAdmin(ctx context.Context) ([]leave.RequestResponse, error)
}

type leaveServiceImpl struct {
	leaveRepo    leave.LeaveRepository
	userRepo     user.UserRepository
	emailService email.EmailService
}

func NewLeaveService(
	leaveRepo leave.LeaveRepository,
	userRepo user.UserRepository,
	emailService email.EmailService,
) LeaveService {
	return &leaveServiceImpl{
		leaveRepo:    leaveRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

func (s *leaveServiceImpl) Create(ctx context.Context, req leave.CreateRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}

	from, _ := validator.IsValidDate(req.FromDate)
	to, _ := validator.IsValidDate(req.ToDate)

	created, err := s.leaveRepo.Create(ctx, leave.Request{
		UserID:     req.UserID,
		Type:       leave.Type(req.Type),
		FromDate:   from,
		ToDate:     to,
		Reason:     req.Reason,
		Status:     leave.StatusPendingManager,
		Days:       leave.InclusiveDays(from, to),
		Department: req.Department,
	})
	if err != nil {
		return leave.RequestResponse{}, err
	}

	return leave.ToResponse(created), nil
}

func (s *leaveServiceImpl) Approve(ctx context.Context, id string, actor user.User) (leave.RequestResponse, error) {
	req, err := s.leaveRepo.GetByID(ctx, id)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	var next leave.Status
	switch actor.Role {
	case user.RoleManager:
		if req.Department != actor.Department {
			return leave.RequestResponse{}, leave.ErrNotDepartmentOwner
		}
		next = leave.StatusPendingAdmin
	case user.RoleAdmin:
		next = leave.StatusApproved
	default:
		return leave.RequestResponse{}, user.ErrManagerAccessRequired
	}

	return s.transition(ctx, req, next)
}

func (s *leaveServiceImpl) Reject(ctx context.Context, id string, actor user.User) (leave.RequestResponse, error) {
	req, err := s.leaveRepo.GetByID(ctx, id)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	switch actor.Role {
	case user.RoleManager:
		if req.Department != actor.Department {
			return leave.RequestResponse{}, leave.ErrNotDepartmentOwner
		}
	case user.RoleAdmin:
	default:
		return leave.RequestResponse{}, user.ErrManagerAccessRequired
	}

	return s.transition(ctx, req, leave.StatusRejected)
}

func (s *leaveServiceImpl) transition(ctx context.Context, req leave.Request, next leave.Status) (leave.RequestResponse, error) {
	if req.Status == leave.StatusApproved || req.Status == leave.StatusRejected {
		return leave.RequestResponse{}, leave.ErrAlreadyDecided
	}
	if !leave.CanTransition(req.Status, next) {
		return leave.RequestResponse{}, leave.ErrInvalidTransition
	}

	if err := s.leaveRepo.UpdateStatus(ctx, req.ID, next); err != nil {
		return leave.RequestResponse{}, err
	}
	req.Status = next

	// A final decision notifies the employee by mail. Delivery failures
	// are logged, not surfaced: the decision itself already stuck.
	if next == leave.StatusApproved || next == leave.StatusRejected {
		s.notifyDecision(ctx, req)
	}

	return leave.ToResponse(req), nil
}

func (s *leaveServiceImpl) notifyDecision(ctx context.Context, req leave.Request) {
	if s.emailService == nil {
		return
	}

	employee, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		slog.Warn("failed to load employee for leave notification", "user_id", req.UserID, "error", err)
		return
	}

	status := "approved"
	if req.Status == leave.StatusRejected {
		status = "rejected"
	}

	if err := s.emailService.SendLeaveDecision(
		employee.Email,
		employee.FullName,
		string(req.Type),
		req.FromDate.Format("2006-01-02"),
		req.ToDate.Format("2006-01-02"),
		status,
	); err != nil {
		slog.Warn("failed to send leave decision mail", "user_id", req.UserID, "error", err)
	}
}

func (s *leaveServiceImpl) MyRequests(ctx context.Context, userID string) ([]leave.RequestResponse, error) {
	requests, err := s.leaveRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toResponses(requests), nil
}

func (s *leaveServiceImpl) DepartmentRequests(ctx context.Context, department string) ([]leave.RequestResponse, error) {
	requests, err := s.leaveRepo.ListByDepartment(ctx, department)
	if err != nil {
		return nil, err
	}
	return toResponses(requests), nil
}

func (s *leaveServiceImpl) PendingAdmin(ctx context.Context) ([]leave.RequestResponse, error) {
	requests, err := s.leaveRepo.ListByStatus(ctx, leave.StatusPendingAdmin)
	if err != nil {
		return nil, err
	}
	return toResponses(requests), nil
}

func toResponses(requests []leave.Request) []leave.RequestResponse {
	out := make([]leave.RequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, leave.ToResponse(req))
	}
	return out
}
