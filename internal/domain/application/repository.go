package application

import (
	"context"
	"time"

	"devsync/internal/common"
)

type Repository interface {
	// Create persists a new pending application. A live application for the
	// same (project, slot, user) triple makes it fail with a conflict; the
	// store enforces this, not the caller.
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	ListByUser(ctx context.Context, userID common.UUID) ([]Application, error)
	ListByProject(ctx context.Context, projectID common.UUID) ([]Application, error)
	FindActive(ctx context.Context, projectID, slotID, userID common.UUID) (*Application, error)
	UpdateStatus(ctx context.Context, id common.UUID, status Status, respondedAt *time.Time) (*Application, error)

	// RejectPending bulk-transitions every pending application for the slot,
	// except the one being accepted, to rejected. Returns the number of
	// applications rejected.
	RejectPending(ctx context.Context, projectID, slotID, exceptID common.UUID, respondedAt time.Time) (int64, error)
}
