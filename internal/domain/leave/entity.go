package leave

import "time"

type Type string

const (
	TypeSick    Type = "sick"
	TypeCasual  Type = "casual"
	TypeAnnual  Type = "annual"
	TypeMedical Type = "medical"
)

func (t Type) Valid() bool {
	switch t {
	case TypeSick, TypeCasual, TypeAnnual, TypeMedical:
		return true
	}
	return false
}

type Status string

const (
	StatusPendingManager Status = "pending_manager"
	StatusPendingAdmin   Status = "pending_admin"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
)

// CanTransition reports whether a request may move from one status to
// another. The workflow is linear: manager approval forwards a request to
// the admin, either stage may reject, and decided requests are final.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPendingManager:
		return to == StatusPendingAdmin || to == StatusRejected
	case StatusPendingAdmin:
		return to == StatusApproved || to == StatusRejected
	}
	return false
}

type Request struct {
	ID         string
	UserID     string
	Type       Type
	FromDate   time.Time
	ToDate     time.Time
	Reason     string
	Status     Status
	Days       int
	Department string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO
	UserFullName *string
}
