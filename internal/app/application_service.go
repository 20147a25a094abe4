package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"devsync/internal/common"
	"devsync/internal/domain/application"
	"devsync/internal/domain/project"
	"devsync/internal/domain/user"
)

const maxApplicationMessageLength = 1000

type ApplicationService struct {
	repo     application.Repository
	projects project.Repository
	users    user.Repository
	logger   zerolog.Logger
}

func NewApplicationService(repo application.Repository, projects project.Repository, users user.Repository, logger zerolog.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, projects: projects, users: users, logger: logger}
}

type ApplyInput struct {
	ProjectID common.UUID `json:"project_id"`
	SlotID    common.UUID `json:"slot_id"`
	Message   string      `json:"message"`
}

func (s *ApplicationService) Apply(ctx context.Context, userID common.UUID, input ApplyInput) (*application.Application, error) {
	if len(input.Message) > maxApplicationMessageLength {
		return nil, common.NewValidationError("invalid application payload", map[string]string{"message": "message must be at most 1000 characters"})
	}
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	proj, err := s.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	slot := proj.FindSlot(input.SlotID)
	if slot == nil {
		return nil, common.NewError(common.CodeNotFound, "slot not found", nil)
	}
	if slot.Full() {
		return nil, quotaFullError(*slot)
	}
	if _, err := s.repo.FindActive(ctx, input.ProjectID, input.SlotID, userID); err == nil {
		return nil, common.NewError(common.CodeValidation, "you already have an active application for this slot", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	created, err := s.repo.Create(ctx, application.Application{
		ProjectID: input.ProjectID,
		SlotID:    input.SlotID,
		UserID:    userID,
		RoleName:  slot.RoleName,
		Message:   input.Message,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("application_id", created.ID.String()).
		Str("project_id", input.ProjectID.String()).
		Str("slot_id", input.SlotID.String()).
		Msg("application submitted")
	return created, nil
}

func (s *ApplicationService) Cancel(ctx context.Context, applicationID, actorID common.UUID) (*application.Application, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != actorID {
		return nil, common.NewError(common.CodeForbidden, "application belongs to another user", nil)
	}
	switch app.Status {
	case application.StatusAccepted:
		return nil, common.NewError(common.CodeValidation, "accepted applications cannot be cancelled", nil)
	case application.StatusRejected:
		return nil, common.NewError(common.CodeValidation, "rejected applications cannot be cancelled", nil)
	case application.StatusCancelled:
		return nil, common.NewError(common.CodeValidation, "application is already cancelled", nil)
	}
	now := time.Now().UTC()
	return s.repo.UpdateStatus(ctx, applicationID, application.StatusCancelled, &now)
}

// Accept admits the applicant into the slot. The conditional append in
// FillSlot is the authoritative step: the application only transitions after
// the seat is taken, and the quota check cannot be raced past. When the slot
// fills, every remaining pending application for it is rejected in bulk.
func (s *ApplicationService) Accept(ctx context.Context, applicationID, actorID common.UUID) (*application.Application, error) {
	app, proj, err := s.decisionContext(ctx, applicationID, actorID)
	if err != nil {
		return nil, err
	}
	switch app.Status {
	case application.StatusAccepted:
		return nil, common.NewError(common.CodeValidation, "application is already accepted", nil)
	case application.StatusRejected:
		return nil, common.NewError(common.CodeValidation, "rejected applications cannot be accepted", nil)
	case application.StatusCancelled:
		return nil, common.NewError(common.CodeValidation, "cancelled applications cannot be accepted", nil)
	}
	slot := proj.FindSlot(app.SlotID)
	if slot == nil {
		return nil, common.NewError(common.CodeNotFound, "slot not found", nil)
	}
	if slot.Full() {
		return nil, quotaFullError(*slot)
	}
	if slot.Has(app.UserID) {
		return nil, common.NewError(common.CodeValidation, "user is already accepted into this slot", nil)
	}

	filled, err := s.projects.FillSlot(ctx, app.ProjectID, app.SlotID, app.UserID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	updated, err := s.repo.UpdateStatus(ctx, applicationID, application.StatusAccepted, &now)
	if err != nil {
		return nil, err
	}
	if filled.Full() {
		rejected, err := s.repo.RejectPending(ctx, app.ProjectID, app.SlotID, applicationID, now)
		if err != nil {
			return nil, err
		}
		if rejected > 0 {
			s.logger.Info().
				Str("project_id", app.ProjectID.String()).
				Str("slot_id", app.SlotID.String()).
				Int64("rejected", rejected).
				Msg("slot filled, pending applications rejected")
		}
	}
	return updated, nil
}

func (s *ApplicationService) Reject(ctx context.Context, applicationID, actorID common.UUID) (*application.Application, error) {
	app, _, err := s.decisionContext(ctx, applicationID, actorID)
	if err != nil {
		return nil, err
	}
	switch app.Status {
	case application.StatusRejected:
		return nil, common.NewError(common.CodeValidation, "application is already rejected", nil)
	case application.StatusAccepted:
		return nil, common.NewError(common.CodeValidation, "accepted applications cannot be rejected", nil)
	case application.StatusCancelled:
		return nil, common.NewError(common.CodeValidation, "cancelled applications cannot be rejected", nil)
	}
	now := time.Now().UTC()
	return s.repo.UpdateStatus(ctx, applicationID, application.StatusRejected, &now)
}

func (s *ApplicationService) ListMine(ctx context.Context, userID common.UUID) ([]application.Application, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *ApplicationService) ListByProject(ctx context.Context, projectID, actorID common.UUID) ([]application.Application, error) {
	proj, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if proj.OwnerID != actorID {
		return nil, common.NewError(common.CodeForbidden, "project belongs to another user", nil)
	}
	return s.repo.ListByProject(ctx, projectID)
}

func (s *ApplicationService) decisionContext(ctx context.Context, applicationID, actorID common.UUID) (*application.Application, *project.Project, error) {
	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, nil, err
	}
	proj, err := s.projects.GetByID(ctx, app.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if proj.OwnerID != actorID {
		return nil, nil, common.NewError(common.CodeForbidden, "project belongs to another user", nil)
	}
	return app, proj, nil
}

func quotaFullError(slot project.Slot) error {
	return common.NewError(common.CodeValidation,
		fmt.Sprintf("slot quota is full (%d/%d)", len(slot.FilledBy), slot.Quota), nil)
}
