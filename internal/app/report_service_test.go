package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devsync/internal/common"
	"devsync/internal/domain/post"
	"devsync/internal/domain/report"
	"devsync/internal/domain/user"
)

type reportFixture struct {
	service  *ReportService
	users    *fakeUserRepo
	posts    *fakePostRepo
	reporter common.UUID
	postID   common.UUID
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	users := newFakeUserRepo()
	posts := newFakePostRepo()
	service := NewReportService(newFakeReportRepo(), users, newFakeProjectRepo(), posts, newFakeCommentRepo(), newFakeApplicationRepo())

	reporter, err := users.Create(context.Background(), user.User{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	reported, err := posts.Create(context.Background(), post.Post{AuthorID: reporter.ID, Content: "spammy"})
	require.NoError(t, err)

	return &reportFixture{service: service, users: users, posts: posts, reporter: reporter.ID, postID: reported.ID}
}

func TestCreateReportChecksContent(t *testing.T) {
	f := newReportFixture(t)

	created, err := f.service.Create(context.Background(), f.reporter, ReportInput{
		ReportType: report.ContentPost,
		ContentID:  &f.postID,
		Reason:     report.ReasonSpam,
	})
	require.NoError(t, err)
	assert.Equal(t, report.StatePending, created.State)
	assert.Equal(t, report.ActionNone, created.ActionTaken)

	missing := common.NewUUID()
	_, err = f.service.Create(context.Background(), f.reporter, ReportInput{
		ReportType: report.ContentPost,
		ContentID:  &missing,
	})
	assert.True(t, common.Is(err, common.CodeNotFound))

	_, err = f.service.Create(context.Background(), f.reporter, ReportInput{ReportType: report.ContentPost})
	assert.True(t, common.Is(err, common.CodeValidation))

	_, err = f.service.Create(context.Background(), f.reporter, ReportInput{ReportType: "bogus"})
	assert.True(t, common.Is(err, common.CodeValidation))
}

func TestDuplicatePendingReportConflicts(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.service.Create(context.Background(), f.reporter, ReportInput{ReportType: report.ContentPost, ContentID: &f.postID})
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), f.reporter, ReportInput{ReportType: report.ContentPost, ContentID: &f.postID})
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeConflict))
}

func TestReportAccessAndCancel(t *testing.T) {
	f := newReportFixture(t)
	created, err := f.service.Create(context.Background(), f.reporter, ReportInput{ReportType: report.ContentPost, ContentID: &f.postID})
	require.NoError(t, err)

	stranger := common.NewUUID()
	_, err = f.service.Get(context.Background(), created.ID, stranger, user.RoleUser)
	assert.True(t, common.Is(err, common.CodeForbidden))

	_, err = f.service.Get(context.Background(), created.ID, stranger, user.RoleAdmin)
	require.NoError(t, err)

	_, err = f.service.Cancel(context.Background(), created.ID, stranger)
	assert.True(t, common.Is(err, common.CodeForbidden))

	cancelled, err := f.service.Cancel(context.Background(), created.ID, f.reporter)
	require.NoError(t, err)
	assert.Equal(t, report.StateCancelled, cancelled.State)

	_, err = f.service.Cancel(context.Background(), created.ID, f.reporter)
	assert.True(t, common.Is(err, common.CodeValidation))
}

func TestResolveReport(t *testing.T) {
	f := newReportFixture(t)
	created, err := f.service.Create(context.Background(), f.reporter, ReportInput{ReportType: report.ContentPost, ContentID: &f.postID})
	require.NoError(t, err)

	admin := common.NewUUID()
	_, err = f.service.Resolve(context.Background(), created.ID, admin, ResolveInput{State: report.StatePending})
	assert.True(t, common.Is(err, common.CodeValidation))

	resolved, err := f.service.Resolve(context.Background(), created.ID, admin, ResolveInput{
		State:     report.StateResolved,
		Action:    report.ActionWarning,
		AdminNote: "warned the author",
	})
	require.NoError(t, err)
	assert.Equal(t, report.StateResolved, resolved.State)
	assert.Equal(t, report.ActionWarning, resolved.ActionTaken)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, admin, *resolved.ResolvedBy)

	_, err = f.service.Resolve(context.Background(), created.ID, admin, ResolveInput{State: report.StateRejected})
	assert.True(t, common.Is(err, common.CodeValidation))
}

func TestAdminListIncludesStatistics(t *testing.T) {
	f := newReportFixture(t)
	created, err := f.service.Create(context.Background(), f.reporter, ReportInput{ReportType: report.ContentPost, ContentID: &f.postID})
	require.NoError(t, err)
	_, err = f.service.Resolve(context.Background(), created.ID, common.NewUUID(), ResolveInput{State: report.StateResolved})
	require.NoError(t, err)

	page, err := f.service.AdminList(context.Background(), report.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 1, page.Statistics.Resolved)
	assert.Equal(t, 1, page.Statistics.Total)
}
