package leave

import (
	"context"
	"testing"

	"github.com/sitepulse/attendance-backend-go/internal/domain/leave"
	"github.com/sitepulse/attendance-backend-go/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaveRepo struct {
	requests map[string]leave.Request
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{requests: make(map[string]leave.Request)}
}

func (f *fakeLeaveRepo) Create(_ context.Context, req leave.Request) (leave.Request, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeLeaveRepo) GetByID(_ context.Context, id string) (leave.Request, error) {
	req, ok := f.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrRequestNotFound
	}
	return req, nil
}

func (f *fakeLeaveRepo) ListByUser(_ context.Context, userID string) ([]leave.Request, error) {
	var out []leave.Request
	for _, req := range f.requests {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeLeaveRepo) ListByDepartment(_ context.Context, department string) ([]leave.Request, error) {
	var out []leave.Request
	for _, req := range f.requests {
		if req.Department == department {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeLeaveRepo) ListByStatus(_ context.Context, status leave.Status) ([]leave.Request, error) {
	var out []leave.Request
	for _, req := range f.requests {
		if req.Status == status {
			out = append(out, req)
		}
	}
	return out, nil
}

func (f *fakeLeaveRepo) UpdateStatus(_ context.Context, id string, status leave.Status) error {
	req, ok := f.requests[id]
	if !ok {
		return leave.ErrRequestNotFound
	}
	req.Status = status
	f.requests[id] = req
	return nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func (f *fakeUserRepo) Create(_ context.Context, u user.User) (user.User, error) { return u, nil }
func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetByUsername(_ context.Context, _ string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (f *fakeUserRepo) List(_ context.Context) ([]user.User, error) { return nil, nil }
func (f *fakeUserRepo) ListByDepartment(_ context.Context, _ string) ([]user.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) Update(_ context.Context, _ user.User) error { return nil }
func (f *fakeUserRepo) Delete(_ context.Context, _ string) error    { return nil }

type recordedMail struct {
	to, status string
}

type fakeEmail struct {
	sent []recordedMail
}

func (f *fakeEmail) SendLeaveDecision(to, _, _, _, _, status string) error {
	f.sent = append(f.sent, recordedMail{to: to, status: status})
	return nil
}

func newTestLeaveService() (LeaveService, *fakeLeaveRepo, *fakeEmail) {
	repo := newFakeLeaveRepo()
	mail := &fakeEmail{}
	users := &fakeUserRepo{users: map[string]user.User{
		"user001": {ID: "user001", FullName: "Ahmed Khan", Email: "ahmed@sitepulse.local", Department: "Civil"},
	}}
	return NewLeaveService(repo, users, mail), repo, mail
}

func fileRequest(t *testing.T, svc LeaveService) leave.RequestResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), leave.CreateRequest{
		UserID:     "user001",
		Department: "Civil",
		Type:       "casual",
		FromDate:   "2026-03-10",
		ToDate:     "2026-03-12",
		Reason:     "family event",
	})
	require.NoError(t, err)
	return resp
}

func TestCreateStartsAtPendingManager(t *testing.T) {
	svc, _, _ := newTestLeaveService()

	resp := fileRequest(t, svc)

	assert.Equal(t, string(leave.StatusPendingManager), resp.Status)
	assert.Equal(t, 3, resp.Days, "both endpoints count")
}

func TestCreateRejectsInvertedDateRange(t *testing.T) {
	svc, _, _ := newTestLeaveService()

	_, err := svc.Create(context.Background(), leave.CreateRequest{
		UserID:     "user001",
		Department: "Civil",
		Type:       "sick",
		FromDate:   "2026-03-12",
		ToDate:     "2026-03-10",
		Reason:     "x",
	})
	assert.Error(t, err)
}

func TestManagerApprovalForwardsToAdmin(t *testing.T) {
	svc, _, mail := newTestLeaveService()
	resp := fileRequest(t, svc)

	manager := user.User{Role: user.RoleManager, Department: "Civil"}
	forwarded, err := svc.Approve(context.Background(), resp.ID, manager)
	require.NoError(t, err)

	assert.Equal(t, string(leave.StatusPendingAdmin), forwarded.Status)
	assert.Empty(t, mail.sent, "no mail until a final decision")
}

func TestManagerCannotTouchOtherDepartments(t *testing.T) {
	svc, _, _ := newTestLeaveService()
	resp := fileRequest(t, svc)

	manager := user.User{Role: user.RoleManager, Department: "Electrical"}
	_, err := svc.Approve(context.Background(), resp.ID, manager)
	assert.ErrorIs(t, err, leave.ErrNotDepartmentOwner)
}

func TestAdminApprovalFinalizesAndNotifies(t *testing.T) {
	svc, _, mail := newTestLeaveService()
	resp := fileRequest(t, svc)

	manager := user.User{Role: user.RoleManager, Department: "Civil"}
	_, err := svc.Approve(context.Background(), resp.ID, manager)
	require.NoError(t, err)

	admin := user.User{Role: user.RoleAdmin}
	final, err := svc.Approve(context.Background(), resp.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusApproved), final.Status)

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "ahmed@sitepulse.local", mail.sent[0].to)
	assert.Equal(t, "approved", mail.sent[0].status)
}

func TestAdminCannotSkipManagerStage(t *testing.T) {
	svc, _, _ := newTestLeaveService()
	resp := fileRequest(t, svc)

	admin := user.User{Role: user.RoleAdmin}
	_, err := svc.Approve(context.Background(), resp.ID, admin)
	assert.ErrorIs(t, err, leave.ErrInvalidTransition)
}

func TestDecidedRequestIsFinal(t *testing.T) {
	svc, _, _ := newTestLeaveService()
	resp := fileRequest(t, svc)

	manager := user.User{Role: user.RoleManager, Department: "Civil"}
	_, err := svc.Reject(context.Background(), resp.ID, manager)
	require.NoError(t, err)

	admin := user.User{Role: user.RoleAdmin}
	_, err = svc.Approve(context.Background(), resp.ID, admin)
	assert.ErrorIs(t, err, leave.ErrAlreadyDecided)
}

func TestEmployeeCannotDecide(t *testing.T) {
	svc, _, _ := newTestLeaveService()
	resp := fileRequest(t, svc)

	employee := user.User{Role: user.RoleEmployee, Department: "Civil"}
	_, err := svc.Approve(context.Background(), resp.ID, employee)
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)
}
