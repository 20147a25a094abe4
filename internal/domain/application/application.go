package application

import (
	"time"

	"devsync/internal/common"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status permits no further transition.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusCancelled
}

type Application struct {
	ID          common.UUID `json:"id"`
	ProjectID   common.UUID `json:"project_id"`
	SlotID      common.UUID `json:"slot_id"`
	UserID      common.UUID `json:"user_id"`
	RoleName    string      `json:"role_name"`
	Message     string      `json:"message,omitempty"`
	Status      Status      `json:"status"`
	AppliedAt   time.Time   `json:"applied_at"`
	RespondedAt *time.Time  `json:"responded_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
