package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devsync/internal/common"
	"devsync/internal/domain/post"
)

func newContentFixture(t *testing.T) (*PostService, *CommentService, common.UUID, *post.Post) {
	t.Helper()
	posts := newFakePostRepo()
	comments := newFakeCommentRepo()
	postService := NewPostService(posts, comments)
	commentService := NewCommentService(comments, posts)

	author := common.NewUUID()
	created, err := postService.Create(context.Background(), author, PostInput{Content: "shipping a new release", Tags: []string{"go"}})
	require.NoError(t, err)
	return postService, commentService, author, created
}

func TestCommentAdjustsPostCounter(t *testing.T) {
	postService, commentService, author, p := newContentFixture(t)

	created, err := commentService.Create(context.Background(), author, CommentInput{PostID: p.ID, Content: "congrats"})
	require.NoError(t, err)

	detail, err := postService.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Post.CommentsCount)
	assert.Len(t, detail.Comments, 1)

	require.NoError(t, commentService.Delete(context.Background(), created.ID, author))
	detail, err = postService.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, detail.Post.CommentsCount)
}

func TestReplyMustTargetSamePost(t *testing.T) {
	postService, commentService, author, p := newContentFixture(t)

	other, err := postService.Create(context.Background(), author, PostInput{Content: "another thread"})
	require.NoError(t, err)
	parent, err := commentService.Create(context.Background(), author, CommentInput{PostID: other.ID, Content: "root"})
	require.NoError(t, err)

	_, err = commentService.Create(context.Background(), author, CommentInput{PostID: p.ID, Content: "reply", ParentCommentID: &parent.ID})
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeValidation))
}

func TestCommentOwnershipAndValidation(t *testing.T) {
	_, commentService, author, p := newContentFixture(t)

	created, err := commentService.Create(context.Background(), author, CommentInput{PostID: p.ID, Content: "mine"})
	require.NoError(t, err)

	stranger := common.NewUUID()
	_, err = commentService.Update(context.Background(), created.ID, stranger, "hijacked")
	assert.True(t, common.Is(err, common.CodeForbidden))

	err = commentService.Delete(context.Background(), created.ID, stranger)
	assert.True(t, common.Is(err, common.CodeForbidden))

	_, err = commentService.Update(context.Background(), created.ID, author, strings.Repeat("x", 1001))
	assert.True(t, common.Is(err, common.CodeValidation))
}

func TestPostLikeToggle(t *testing.T) {
	postService, _, _, p := newContentFixture(t)

	liker := common.NewUUID()
	updated, liked, err := postService.ToggleLike(context.Background(), p.ID, liker)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Len(t, updated.Likes, 1)

	updated, liked, err = postService.ToggleLike(context.Background(), p.ID, liker)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Empty(t, updated.Likes)
}

func TestPostContentValidation(t *testing.T) {
	postService, _, author, p := newContentFixture(t)

	_, err := postService.Create(context.Background(), author, PostInput{Content: ""})
	assert.True(t, common.Is(err, common.CodeValidation))

	_, err = postService.Create(context.Background(), author, PostInput{Content: strings.Repeat("x", 2001)})
	assert.True(t, common.Is(err, common.CodeValidation))

	stranger := common.NewUUID()
	_, err = postService.Update(context.Background(), p.ID, stranger, PostInput{Content: "hijacked"})
	assert.True(t, common.Is(err, common.CodeForbidden))
}
