package project

import (
	"time"

	"devsync/internal/common"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusClosed   Status = "closed"
	StatusRejected Status = "rejected"
)

type Type string

const (
	TypePersonal   Type = "personal"
	TypeTeam       Type = "team"
	TypeOpenSource Type = "open-source"
	TypeFreelance  Type = "freelance"
)

type SlotStatus string

const (
	SlotOpen   SlotStatus = "open"
	SlotFilled SlotStatus = "filled"
)

// Slot is an owned child of Project. It has no standalone collection; every
// read and mutation goes through the project repository.
type Slot struct {
	ID             common.UUID   `json:"id"`
	RoleName       string        `json:"role_name"`
	RequiredSkills []string      `json:"required_skills"`
	OptionalSkills []string      `json:"optional_skills"`
	Quota          int           `json:"quota"`
	Status         SlotStatus    `json:"status"`
	FilledBy       []common.UUID `json:"filled_by"`
}

// Full reports whether the slot has no remaining seats.
func (s Slot) Full() bool {
	return len(s.FilledBy) >= s.Quota
}

// Has reports whether the user already occupies a seat in the slot.
func (s Slot) Has(userID common.UUID) bool {
	for _, id := range s.FilledBy {
		if id == userID {
			return true
		}
	}
	return false
}

type Project struct {
	ID          common.UUID `json:"id"`
	OwnerID     common.UUID `json:"owner_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	ProjectType Type        `json:"project_type"`
	Status      Status      `json:"status"`
	Slots       []Slot      `json:"slots"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// FindSlot returns the slot with the given local id, or nil.
func (p *Project) FindSlot(slotID common.UUID) *Slot {
	for i := range p.Slots {
		if p.Slots[i].ID == slotID {
			return &p.Slots[i]
		}
	}
	return nil
}
