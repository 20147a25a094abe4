package app

import (
	"context"
	"strings"
	"time"

	"devsync/internal/common"
	"devsync/internal/domain/application"
	"devsync/internal/domain/comment"
	"devsync/internal/domain/post"
	"devsync/internal/domain/project"
	"devsync/internal/domain/report"
	"devsync/internal/domain/user"
)

type ReportService struct {
	repo         report.Repository
	users        user.Repository
	projects     project.Repository
	posts        post.Repository
	comments     comment.Repository
	applications application.Repository
}

func NewReportService(repo report.Repository, users user.Repository, projects project.Repository, posts post.Repository, comments comment.Repository, applications application.Repository) *ReportService {
	return &ReportService{repo: repo, users: users, projects: projects, posts: posts, comments: comments, applications: applications}
}

type ReportInput struct {
	ReportType  report.ContentType `json:"report_type"`
	ContentID   *common.UUID       `json:"content_id,omitempty"`
	Reason      report.Reason      `json:"reason"`
	Description string             `json:"description"`
}

type ResolveInput struct {
	State     report.State  `json:"state"`
	Action    report.Action `json:"action_taken"`
	AdminNote string        `json:"admin_note"`
}

type ReportPage struct {
	Reports    []report.Report   `json:"reports"`
	Total      int               `json:"total"`
	Statistics report.Statistics `json:"statistics"`
}

func (s *ReportService) Create(ctx context.Context, reporterID common.UUID, input ReportInput) (*report.Report, error) {
	if fields := validateReportInput(input); len(fields) > 0 {
		return nil, common.NewValidationError("invalid report payload", fields)
	}
	if err := s.checkContentExists(ctx, input.ReportType, input.ContentID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByReporterAndContent(ctx, reporterID, input.ReportType, input.ContentID); err == nil {
		return nil, common.NewError(common.CodeConflict, "you already have a pending report for this content", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	return s.repo.Create(ctx, report.Report{
		ReporterID:  reporterID,
		ReportType:  input.ReportType,
		ContentID:   input.ContentID,
		Reason:      input.Reason,
		Description: strings.TrimSpace(input.Description),
	})
}

func (s *ReportService) ListMine(ctx context.Context, reporterID common.UUID) ([]report.Report, error) {
	reports, _, err := s.repo.List(ctx, report.ListFilter{ReporterID: reporterID})
	return reports, err
}

func (s *ReportService) Get(ctx context.Context, id, actorID common.UUID, actorRole user.Role) (*report.Report, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != user.RoleAdmin && found.ReporterID != actorID {
		return nil, common.NewError(common.CodeForbidden, "report belongs to another user", nil)
	}
	return found, nil
}

func (s *ReportService) Cancel(ctx context.Context, id, actorID common.UUID) (*report.Report, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found.ReporterID != actorID {
		return nil, common.NewError(common.CodeForbidden, "report belongs to another user", nil)
	}
	if found.State != report.StatePending {
		return nil, common.NewError(common.CodeValidation, "only pending reports can be cancelled", nil)
	}
	found.State = report.StateCancelled
	return s.repo.Update(ctx, *found)
}

// AdminList returns a filtered page of reports together with the global
// per-state counters for the moderation dashboard.
func (s *ReportService) AdminList(ctx context.Context, filter report.ListFilter) (*ReportPage, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	return &ReportPage{Reports: reports, Total: total, Statistics: *stats}, nil
}

func (s *ReportService) Resolve(ctx context.Context, id, adminID common.UUID, input ResolveInput) (*report.Report, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if found.State != report.StatePending {
		return nil, common.NewError(common.CodeValidation, "report is already resolved", nil)
	}
	if input.State != report.StateResolved && input.State != report.StateRejected {
		return nil, common.NewValidationError("invalid resolution", map[string]string{"state": "state must be resolved or rejected"})
	}
	if input.Action != "" && !isKnownReportAction(input.Action) {
		return nil, common.NewValidationError("invalid resolution", map[string]string{"action_taken": "unknown action"})
	}
	now := time.Now().UTC()
	found.State = input.State
	if input.Action != "" {
		found.ActionTaken = input.Action
	}
	found.AdminNote = strings.TrimSpace(input.AdminNote)
	found.ResolvedAt = &now
	found.ResolvedBy = &adminID
	return s.repo.Update(ctx, *found)
}

func (s *ReportService) checkContentExists(ctx context.Context, reportType report.ContentType, contentID *common.UUID) error {
	if contentID == nil {
		if reportType == report.ContentOther || reportType == report.ContentChat {
			return nil
		}
		return common.NewValidationError("invalid report payload", map[string]string{"content_id": "content_id is required for this report type"})
	}
	var err error
	switch reportType {
	case report.ContentPost:
		_, err = s.posts.GetByID(ctx, *contentID)
	case report.ContentComment:
		_, err = s.comments.GetByID(ctx, *contentID)
	case report.ContentProject:
		_, err = s.projects.GetByID(ctx, *contentID)
	case report.ContentUser:
		var exists bool
		exists, err = s.users.Exists(ctx, *contentID)
		if err == nil && !exists {
			err = common.NewError(common.CodeNotFound, "user not found", nil)
		}
	case report.ContentApplication:
		_, err = s.applications.GetByID(ctx, *contentID)
	}
	return err
}

func validateReportInput(input ReportInput) map[string]string {
	fields := map[string]string{}
	if !isKnownContentType(input.ReportType) {
		fields["report_type"] = "report type must be post, comment, project, user, chat, application, or other"
	}
	if input.Reason != "" && !isKnownReportReason(input.Reason) {
		fields["reason"] = "reason must be spam, abuse, harassment, inappropriate content, or other"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func isKnownContentType(contentType report.ContentType) bool {
	switch contentType {
	case report.ContentPost, report.ContentComment, report.ContentProject, report.ContentUser,
		report.ContentChat, report.ContentApplication, report.ContentOther:
		return true
	default:
		return false
	}
}

func isKnownReportReason(reason report.Reason) bool {
	switch reason {
	case report.ReasonSpam, report.ReasonAbuse, report.ReasonHarassment, report.ReasonInappropriate, report.ReasonOther:
		return true
	default:
		return false
	}
}

func isKnownReportAction(action report.Action) bool {
	switch action {
	case report.ActionNone, report.ActionWarning, report.ActionSuspension, report.ActionBan, report.ActionContentRemoval:
		return true
	default:
		return false
	}
}
