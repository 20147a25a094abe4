package app

import (
	"context"
	"strings"

	"devsync/internal/common"
	"devsync/internal/domain/project"
)

type ProjectService struct {
	repo project.Repository
}

func NewProjectService(repo project.Repository) *ProjectService {
	return &ProjectService{repo: repo}
}

type SlotInput struct {
	RoleName       string   `json:"role_name"`
	RequiredSkills []string `json:"required_skills"`
	OptionalSkills []string `json:"optional_skills"`
	Quota          int      `json:"quota"`
}

type ProjectInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	ProjectType project.Type   `json:"project_type"`
	Status      project.Status `json:"status"`
	Slots       []SlotInput    `json:"slots"`
}

func (s *ProjectService) Create(ctx context.Context, ownerID common.UUID, input ProjectInput) (*project.Project, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.TrimSpace(input.Category)
	if fields := validateProjectInput(input); len(fields) > 0 {
		return nil, common.NewValidationError("invalid project payload", fields)
	}
	status := input.Status
	if status == "" {
		status = project.StatusDraft
	}
	projectType := input.ProjectType
	if projectType == "" {
		projectType = project.TypePersonal
	}
	slots := make([]project.Slot, 0, len(input.Slots))
	for _, slot := range input.Slots {
		slots = append(slots, project.Slot{
			RoleName:       strings.TrimSpace(slot.RoleName),
			RequiredSkills: slot.RequiredSkills,
			OptionalSkills: slot.OptionalSkills,
			Quota:          slot.Quota,
			Status:         project.SlotOpen,
		})
	}
	return s.repo.Create(ctx, project.Project{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		ProjectType: projectType,
		Status:      status,
		Slots:       slots,
	})
}

func (s *ProjectService) Get(ctx context.Context, id common.UUID) (*project.Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProjectService) List(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
	if filter.Status != "" && !isKnownProjectStatus(filter.Status) {
		return nil, common.NewValidationError("invalid status filter", map[string]string{"status": "status must be draft, pending, active, closed, or rejected"})
	}
	if filter.ProjectType != "" && !isKnownProjectType(filter.ProjectType) {
		return nil, common.NewValidationError("invalid project type filter", map[string]string{"project_type": "project type must be personal, team, open-source, or freelance"})
	}
	return s.repo.List(ctx, filter)
}

func (s *ProjectService) ListMine(ctx context.Context, ownerID common.UUID) ([]project.Project, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *ProjectService) Update(ctx context.Context, id, actorID common.UUID, input ProjectInput) (*project.Project, error) {
	existing, err := s.requireOwner(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	input.Title = strings.TrimSpace(input.Title)
	input.Category = strings.TrimSpace(input.Category)
	if input.Title != "" {
		existing.Title = input.Title
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Category != "" {
		existing.Category = input.Category
	}
	if input.ProjectType != "" {
		if !isKnownProjectType(input.ProjectType) {
			return nil, common.NewValidationError("invalid project type", map[string]string{"project_type": "project type must be personal, team, open-source, or freelance"})
		}
		existing.ProjectType = input.ProjectType
	}
	if input.Status != "" {
		if !isKnownProjectStatus(input.Status) {
			return nil, common.NewValidationError("invalid status", map[string]string{"status": "status must be draft, pending, active, closed, or rejected"})
		}
		existing.Status = input.Status
	}
	return s.repo.Update(ctx, *existing)
}

func (s *ProjectService) Delete(ctx context.Context, id, actorID common.UUID) error {
	if _, err := s.requireOwner(ctx, id, actorID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *ProjectService) AddSlot(ctx context.Context, projectID, actorID common.UUID, input SlotInput) (*project.Project, error) {
	if _, err := s.requireOwner(ctx, projectID, actorID); err != nil {
		return nil, err
	}
	input.RoleName = strings.TrimSpace(input.RoleName)
	if fields := validateSlotInput(input); len(fields) > 0 {
		return nil, common.NewValidationError("invalid slot payload", fields)
	}
	return s.repo.AddSlot(ctx, projectID, project.Slot{
		RoleName:       input.RoleName,
		RequiredSkills: input.RequiredSkills,
		OptionalSkills: input.OptionalSkills,
		Quota:          input.Quota,
		Status:         project.SlotOpen,
	})
}

func (s *ProjectService) UpdateSlot(ctx context.Context, projectID, slotID, actorID common.UUID, input SlotInput) (*project.Project, error) {
	existing, err := s.requireOwner(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	slot := existing.FindSlot(slotID)
	if slot == nil {
		return nil, common.NewError(common.CodeNotFound, "slot not found", nil)
	}
	input.RoleName = strings.TrimSpace(input.RoleName)
	if fields := validateSlotInput(input); len(fields) > 0 {
		return nil, common.NewValidationError("invalid slot payload", fields)
	}
	if input.Quota < len(slot.FilledBy) {
		return nil, common.NewValidationError("invalid slot payload", map[string]string{"quota": "quota cannot be below the number of accepted members"})
	}
	slot.RoleName = input.RoleName
	slot.RequiredSkills = input.RequiredSkills
	slot.OptionalSkills = input.OptionalSkills
	slot.Quota = input.Quota
	if len(slot.FilledBy) >= slot.Quota {
		slot.Status = project.SlotFilled
	} else {
		slot.Status = project.SlotOpen
	}
	return s.repo.UpdateSlot(ctx, projectID, *slot)
}

func (s *ProjectService) RemoveSlot(ctx context.Context, projectID, slotID, actorID common.UUID) error {
	existing, err := s.requireOwner(ctx, projectID, actorID)
	if err != nil {
		return err
	}
	slot := existing.FindSlot(slotID)
	if slot == nil {
		return common.NewError(common.CodeNotFound, "slot not found", nil)
	}
	if len(slot.FilledBy) > 0 {
		return common.NewError(common.CodeValidation, "slot has accepted members and cannot be removed", nil)
	}
	return s.repo.RemoveSlot(ctx, projectID, slotID)
}

func (s *ProjectService) requireOwner(ctx context.Context, projectID, actorID common.UUID) (*project.Project, error) {
	existing, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != actorID {
		return nil, common.NewError(common.CodeForbidden, "project belongs to another user", nil)
	}
	return existing, nil
}

func validateProjectInput(input ProjectInput) map[string]string {
	fields := map[string]string{}
	if input.Title == "" {
		fields["title"] = "title is required"
	}
	if input.Category == "" {
		fields["category"] = "category is required"
	}
	if input.ProjectType != "" && !isKnownProjectType(input.ProjectType) {
		fields["project_type"] = "project type must be personal, team, open-source, or freelance"
	}
	if input.Status != "" && input.Status != project.StatusDraft && input.Status != project.StatusPending {
		fields["status"] = "new projects start as draft or pending"
	}
	for _, slot := range input.Slots {
		for key, value := range validateSlotInput(slot) {
			fields["slots."+key] = value
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func validateSlotInput(input SlotInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(input.RoleName) == "" {
		fields["role_name"] = "role name is required"
	}
	if input.Quota < 1 {
		fields["quota"] = "quota must be at least 1"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func isKnownProjectStatus(status project.Status) bool {
	switch status {
	case project.StatusDraft, project.StatusPending, project.StatusActive, project.StatusClosed, project.StatusRejected:
		return true
	default:
		return false
	}
}

func isKnownProjectType(projectType project.Type) bool {
	switch projectType {
	case project.TypePersonal, project.TypeTeam, project.TypeOpenSource, project.TypeFreelance:
		return true
	default:
		return false
	}
}
