package report

import (
	"time"

	"devsync/internal/common"
)

type ContentType string

const (
	ContentPost        ContentType = "post"
	ContentComment     ContentType = "comment"
	ContentProject     ContentType = "project"
	ContentUser        ContentType = "user"
	ContentChat        ContentType = "chat"
	ContentApplication ContentType = "application"
	ContentOther       ContentType = "other"
)

type Reason string

const (
	ReasonSpam          Reason = "spam"
	ReasonAbuse         Reason = "abuse"
	ReasonHarassment    Reason = "harassment"
	ReasonInappropriate Reason = "inappropriate content"
	ReasonOther         Reason = "other"
)

type State string

const (
	StatePending   State = "pending"
	StateResolved  State = "resolved"
	StateRejected  State = "rejected"
	StateCancelled State = "cancelled"
)

type Action string

const (
	ActionNone           Action = "none"
	ActionWarning        Action = "warning"
	ActionSuspension     Action = "suspension"
	ActionBan            Action = "ban"
	ActionContentRemoval Action = "content removal"
)

type Report struct {
	ID          common.UUID  `json:"id"`
	ReporterID  common.UUID  `json:"reporter_id"`
	ReportType  ContentType  `json:"report_type"`
	ContentID   *common.UUID `json:"content_id,omitempty"`
	Reason      Reason       `json:"reason,omitempty"`
	Description string       `json:"description,omitempty"`
	State       State        `json:"state"`
	ActionTaken Action       `json:"action_taken"`
	AdminNote   string       `json:"admin_note,omitempty"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`
	ResolvedBy  *common.UUID `json:"resolved_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Statistics struct {
	Pending   int `json:"pending"`
	Resolved  int `json:"resolved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"`
}
