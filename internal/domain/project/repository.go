package project

import (
	"context"

	"devsync/internal/common"
)

type ListFilter struct {
	Status      Status
	Category    string
	ProjectType Type
}

// Repository treats Project as the aggregate root: slots are only reachable
// through it, and FillSlot is the single write path into a slot's seat list.
type Repository interface {
	Create(ctx context.Context, p Project) (*Project, error)
	GetByID(ctx context.Context, id common.UUID) (*Project, error)
	List(ctx context.Context, filter ListFilter) ([]Project, error)
	ListByOwner(ctx context.Context, ownerID common.UUID) ([]Project, error)
	Update(ctx context.Context, p Project) (*Project, error)
	Delete(ctx context.Context, id common.UUID) error

	AddSlot(ctx context.Context, projectID common.UUID, slot Slot) (*Project, error)
	UpdateSlot(ctx context.Context, projectID common.UUID, slot Slot) (*Project, error)
	RemoveSlot(ctx context.Context, projectID, slotID common.UUID) error

	// FillSlot atomically appends userID to the slot's seat list, deriving
	// status=filled when the quota is reached. The append only happens while
	// the seat count is below quota and the user is not already seated; when
	// the condition fails the slot is re-read and a validation error carrying
	// the cause is returned. The returned slot reflects the state after the
	// append.
	FillSlot(ctx context.Context, projectID, slotID, userID common.UUID) (*Slot, error)
}
