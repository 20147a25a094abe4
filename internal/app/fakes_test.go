package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"devsync/internal/common"
	"devsync/internal/domain/application"
	"devsync/internal/domain/auth"
	"devsync/internal/domain/comment"
	"devsync/internal/domain/post"
	"devsync/internal/domain/project"
	"devsync/internal/domain/report"
	"devsync/internal/domain/user"
)

// The fakes must keep implementing the repository interfaces the services
// depend on; a drifted method signature should fail at compile time, not
// surface as a confusing assertion failure.
var (
	_ user.Repository        = (*fakeUserRepo)(nil)
	_ auth.Repository        = (*fakeRefreshRepo)(nil)
	_ project.Repository     = (*fakeProjectRepo)(nil)
	_ application.Repository = (*fakeApplicationRepo)(nil)
	_ post.Repository        = (*fakePostRepo)(nil)
	_ comment.Repository     = (*fakeCommentRepo)(nil)
	_ report.Repository      = (*fakeReportRepo)(nil)
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[common.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[common.UUID]*user.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, account user.User) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == account.Username || existing.Email == account.Email {
			return nil, common.NewError(common.CodeConflict, "username or email is already registered", nil)
		}
	}
	account.ID = common.NewUUID()
	account.Active = true
	if account.Role == "" {
		account.Role = user.RoleUser
	}
	stored := account
	r.users[account.ID] = &stored
	result := stored
	return &result, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	result := *stored
	return &result, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.users {
		if stored.Email == email {
			result := *stored
			return &result, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "user not found", nil)
}

func (r *fakeUserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.users {
		if stored.Username == username || stored.Email == email {
			result := *stored
			return &result, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "user not found", nil)
}

func (r *fakeUserRepo) Exists(ctx context.Context, id common.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

type fakeRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]auth.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: make(map[string]auth.RefreshToken)}
}

func (r *fakeRefreshRepo) Store(ctx context.Context, token auth.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.Token] = token
	return nil
}

func (r *fakeRefreshRepo) GetByToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tokens[token]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "refresh token not found", nil)
	}
	result := stored
	return &result, nil
}

func (r *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return common.NewError(common.CodeNotFound, "refresh token not found", nil)
	}
	delete(r.tokens, token)
	return nil
}

func (r *fakeRefreshRepo) DeleteByUser(ctx context.Context, userID common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, stored := range r.tokens {
		if stored.UserID == userID {
			delete(r.tokens, key)
		}
	}
	return nil
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[common.UUID]*project.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[common.UUID]*project.Project)}
}

func cloneProject(p *project.Project) *project.Project {
	result := *p
	result.Slots = make([]project.Slot, len(p.Slots))
	for i, slot := range p.Slots {
		result.Slots[i] = slot
		result.Slots[i].FilledBy = append([]common.UUID(nil), slot.FilledBy...)
	}
	return &result
}

func (r *fakeProjectRepo) Create(ctx context.Context, p project.Project) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = common.NewUUID()
	if p.Status == "" {
		p.Status = project.StatusDraft
	}
	for i := range p.Slots {
		p.Slots[i].ID = common.NewUUID()
		if p.Slots[i].Status == "" {
			p.Slots[i].Status = project.SlotOpen
		}
	}
	r.projects[p.ID] = cloneProject(&p)
	return cloneProject(&p), nil
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id common.UUID) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.projects[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "project not found", nil)
	}
	return cloneProject(stored), nil
}

func (r *fakeProjectRepo) List(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []project.Project
	for _, stored := range r.projects {
		if filter.Status != "" && stored.Status != filter.Status {
			continue
		}
		if filter.Category != "" && stored.Category != filter.Category {
			continue
		}
		if filter.ProjectType != "" && stored.ProjectType != filter.ProjectType {
			continue
		}
		items = append(items, *cloneProject(stored))
	}
	return items, nil
}

func (r *fakeProjectRepo) ListByOwner(ctx context.Context, ownerID common.UUID) ([]project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []project.Project
	for _, stored := range r.projects {
		if stored.OwnerID == ownerID {
			items = append(items, *cloneProject(stored))
		}
	}
	return items, nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, p project.Project) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.projects[p.ID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "project not found", nil)
	}
	p.Slots = stored.Slots
	r.projects[p.ID] = cloneProject(&p)
	return cloneProject(&p), nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return common.NewError(common.CodeNotFound, "project not found", nil)
	}
	delete(r.projects, id)
	return nil
}

func (r *fakeProjectRepo) AddSlot(ctx context.Context, projectID common.UUID, slot project.Slot) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.projects[projectID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "project not found", nil)
	}
	slot.ID = common.NewUUID()
	if slot.Status == "" {
		slot.Status = project.SlotOpen
	}
	stored.Slots = append(stored.Slots, slot)
	return cloneProject(stored), nil
}

func (r *fakeProjectRepo) UpdateSlot(ctx context.Context, projectID common.UUID, slot project.Slot) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.projects[projectID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "project not found", nil)
	}
	for i := range stored.Slots {
		if stored.Slots[i].ID == slot.ID {
			slot.FilledBy = stored.Slots[i].FilledBy
			stored.Slots[i] = slot
			return cloneProject(stored), nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "slot not found", nil)
}

func (r *fakeProjectRepo) RemoveSlot(ctx context.Context, projectID, slotID common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.projects[projectID]
	if !ok {
		return common.NewError(common.CodeNotFound, "project not found", nil)
	}
	for i := range stored.Slots {
		if stored.Slots[i].ID == slotID {
			stored.Slots = append(stored.Slots[:i], stored.Slots[i+1:]...)
			return nil
		}
	}
	return common.NewError(common.CodeNotFound, "slot not found", nil)
}

// FillSlot mirrors the conditional-update semantics of the SQL repository:
// the check and the append happen under one lock.
func (r *fakeProjectRepo) FillSlot(ctx context.Context, projectID, slotID, userID common.UUID) (*project.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.projects[projectID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "project not found", nil)
	}
	slot := stored.FindSlot(slotID)
	if slot == nil {
		return nil, common.NewError(common.CodeNotFound, "slot not found", nil)
	}
	if slot.Has(userID) {
		return nil, common.NewError(common.CodeValidation, "user is already accepted into this slot", nil)
	}
	if slot.Full() {
		return nil, common.NewError(common.CodeValidation,
			fmt.Sprintf("slot quota is full (%d/%d)", len(slot.FilledBy), slot.Quota), nil)
	}
	slot.FilledBy = append(slot.FilledBy, userID)
	if len(slot.FilledBy) >= slot.Quota {
		slot.Status = project.SlotFilled
	}
	result := *slot
	result.FilledBy = append([]common.UUID(nil), slot.FilledBy...)
	return &result, nil
}

type fakeApplicationRepo struct {
	mu   sync.Mutex
	apps map[common.UUID]*application.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[common.UUID]*application.Application)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.apps {
		if stored.ProjectID == app.ProjectID && stored.SlotID == app.SlotID && stored.UserID == app.UserID &&
			(stored.Status == application.StatusPending || stored.Status == application.StatusAccepted) {
			return nil, common.NewError(common.CodeValidation, "you already have an active application for this slot", nil)
		}
	}
	app.ID = common.NewUUID()
	app.Status = application.StatusPending
	app.AppliedAt = time.Now().UTC()
	stored := app
	r.apps[app.ID] = &stored
	result := stored
	return &result, nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	result := *stored
	return &result, nil
}

func (r *fakeApplicationRepo) FindActive(ctx context.Context, projectID, slotID, userID common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.apps {
		if stored.ProjectID == projectID && stored.SlotID == slotID && stored.UserID == userID &&
			(stored.Status == application.StatusPending || stored.Status == application.StatusAccepted) {
			result := *stored
			return &result, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *fakeApplicationRepo) ListByUser(ctx context.Context, userID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []application.Application
	for _, stored := range r.apps {
		if stored.UserID == userID {
			items = append(items, *stored)
		}
	}
	return items, nil
}

func (r *fakeApplicationRepo) ListByProject(ctx context.Context, projectID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []application.Application
	for _, stored := range r.apps {
		if stored.ProjectID == projectID {
			items = append(items, *stored)
		}
	}
	return items, nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, id common.UUID, status application.Status, respondedAt *time.Time) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	stored.Status = status
	stored.RespondedAt = respondedAt
	result := *stored
	return &result, nil
}

func (r *fakeApplicationRepo) RejectPending(ctx context.Context, projectID, slotID, exceptID common.UUID, respondedAt time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, stored := range r.apps {
		if stored.ProjectID == projectID && stored.SlotID == slotID && stored.ID != exceptID &&
			stored.Status == application.StatusPending {
			stored.Status = application.StatusRejected
			at := respondedAt
			stored.RespondedAt = &at
			count++
		}
	}
	return count, nil
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[common.UUID]*post.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[common.UUID]*post.Post)}
}

func (r *fakePostRepo) Create(ctx context.Context, p post.Post) (*post.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = common.NewUUID()
	p.CreatedAt = time.Now().UTC()
	stored := p
	r.posts[p.ID] = &stored
	result := stored
	return &result, nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id common.UUID) (*post.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "post not found", nil)
	}
	result := *stored
	return &result, nil
}

func (r *fakePostRepo) List(ctx context.Context, filter post.ListFilter) ([]post.Post, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []post.Post
	for _, stored := range r.posts {
		if filter.AuthorID != "" && stored.AuthorID != filter.AuthorID {
			continue
		}
		items = append(items, *stored)
	}
	return items, len(items), nil
}

func (r *fakePostRepo) ListByAuthor(ctx context.Context, authorID common.UUID) ([]post.Post, error) {
	items, _, err := r.List(ctx, post.ListFilter{AuthorID: authorID})
	return items, err
}

func (r *fakePostRepo) Update(ctx context.Context, p post.Post) (*post.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[p.ID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "post not found", nil)
	}
	stored.Content = p.Content
	stored.Tags = p.Tags
	result := *stored
	return &result, nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return common.NewError(common.CodeNotFound, "post not found", nil)
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) ToggleLike(ctx context.Context, id, userID common.UUID) (*post.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[id]
	if !ok {
		return nil, false, common.NewError(common.CodeNotFound, "post not found", nil)
	}
	for i, likerID := range stored.Likes {
		if likerID == userID {
			stored.Likes = append(stored.Likes[:i], stored.Likes[i+1:]...)
			result := *stored
			return &result, false, nil
		}
	}
	stored.Likes = append(stored.Likes, userID)
	result := *stored
	return &result, true, nil
}

func (r *fakePostRepo) AdjustCommentsCount(ctx context.Context, id common.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[id]
	if !ok {
		return common.NewError(common.CodeNotFound, "post not found", nil)
	}
	stored.CommentsCount += delta
	if stored.CommentsCount < 0 {
		stored.CommentsCount = 0
	}
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[common.UUID]*comment.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[common.UUID]*comment.Comment)}
}

func (r *fakeCommentRepo) Create(ctx context.Context, c comment.Comment) (*comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = common.NewUUID()
	c.CreatedAt = time.Now().UTC()
	stored := c
	r.comments[c.ID] = &stored
	result := stored
	return &result, nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, id common.UUID) (*comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.comments[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "comment not found", nil)
	}
	result := *stored
	return &result, nil
}

func (r *fakeCommentRepo) ListByPost(ctx context.Context, postID common.UUID) ([]comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []comment.Comment
	for _, stored := range r.comments {
		if stored.PostID == postID {
			items = append(items, *stored)
		}
	}
	return items, nil
}

func (r *fakeCommentRepo) Update(ctx context.Context, c comment.Comment) (*comment.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.comments[c.ID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "comment not found", nil)
	}
	stored.Content = c.Content
	result := *stored
	return &result, nil
}

func (r *fakeCommentRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return common.NewError(common.CodeNotFound, "comment not found", nil)
	}
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) ToggleLike(ctx context.Context, id, userID common.UUID) (*comment.Comment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.comments[id]
	if !ok {
		return nil, false, common.NewError(common.CodeNotFound, "comment not found", nil)
	}
	for i, likerID := range stored.Likes {
		if likerID == userID {
			stored.Likes = append(stored.Likes[:i], stored.Likes[i+1:]...)
			result := *stored
			return &result, false, nil
		}
	}
	stored.Likes = append(stored.Likes, userID)
	result := *stored
	return &result, true, nil
}

type fakeReportRepo struct {
	mu      sync.Mutex
	reports map[common.UUID]*report.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{reports: make(map[common.UUID]*report.Report)}
}

func (r *fakeReportRepo) Create(ctx context.Context, rep report.Report) (*report.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep.ID = common.NewUUID()
	rep.State = report.StatePending
	if rep.ActionTaken == "" {
		rep.ActionTaken = report.ActionNone
	}
	rep.CreatedAt = time.Now().UTC()
	stored := rep
	r.reports[rep.ID] = &stored
	result := stored
	return &result, nil
}

func (r *fakeReportRepo) GetByID(ctx context.Context, id common.UUID) (*report.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reports[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "report not found", nil)
	}
	result := *stored
	return &result, nil
}

func (r *fakeReportRepo) List(ctx context.Context, filter report.ListFilter) ([]report.Report, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []report.Report
	for _, stored := range r.reports {
		if filter.ReporterID != "" && stored.ReporterID != filter.ReporterID {
			continue
		}
		if filter.State != "" && stored.State != filter.State {
			continue
		}
		if filter.ReportType != "" && stored.ReportType != filter.ReportType {
			continue
		}
		items = append(items, *stored)
	}
	return items, len(items), nil
}

func (r *fakeReportRepo) FindByReporterAndContent(ctx context.Context, reporterID common.UUID, reportType report.ContentType, contentID *common.UUID) (*report.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.reports {
		if stored.ReporterID != reporterID || stored.ReportType != reportType || stored.State != report.StatePending {
			continue
		}
		if (stored.ContentID == nil) != (contentID == nil) {
			continue
		}
		if stored.ContentID != nil && *stored.ContentID != *contentID {
			continue
		}
		result := *stored
		return &result, nil
	}
	return nil, common.NewError(common.CodeNotFound, "report not found", nil)
}

func (r *fakeReportRepo) Update(ctx context.Context, rep report.Report) (*report.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.reports[rep.ID]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "report not found", nil)
	}
	stored.State = rep.State
	stored.ActionTaken = rep.ActionTaken
	stored.AdminNote = rep.AdminNote
	stored.ResolvedAt = rep.ResolvedAt
	stored.ResolvedBy = rep.ResolvedBy
	result := *stored
	return &result, nil
}

func (r *fakeReportRepo) Statistics(ctx context.Context) (*report.Statistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats report.Statistics
	for _, stored := range r.reports {
		switch stored.State {
		case report.StatePending:
			stats.Pending++
		case report.StateResolved:
			stats.Resolved++
		case report.StateRejected:
			stats.Rejected++
		case report.StateCancelled:
			stats.Cancelled++
		}
		stats.Total++
	}
	return &stats, nil
}
