package app

import (
	"context"
	"strings"

	"devsync/internal/common"
	"devsync/internal/domain/comment"
	"devsync/internal/domain/post"
)

const maxCommentContentLength = 1000

type CommentService struct {
	repo  comment.Repository
	posts post.Repository
}

func NewCommentService(repo comment.Repository, posts post.Repository) *CommentService {
	return &CommentService{repo: repo, posts: posts}
}

type CommentInput struct {
	PostID          common.UUID  `json:"post_id"`
	Content         string       `json:"content"`
	ParentCommentID *common.UUID `json:"parent_comment_id,omitempty"`
}

func (s *CommentService) Create(ctx context.Context, authorID common.UUID, input CommentInput) (*comment.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if fields := validateCommentContent(content); len(fields) > 0 {
		return nil, common.NewValidationError("invalid comment payload", fields)
	}
	if _, err := s.posts.GetByID(ctx, input.PostID); err != nil {
		return nil, err
	}
	if input.ParentCommentID != nil {
		parent, err := s.repo.GetByID(ctx, *input.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != input.PostID {
			return nil, common.NewError(common.CodeValidation, "parent comment belongs to another post", nil)
		}
	}
	created, err := s.repo.Create(ctx, comment.Comment{
		PostID:          input.PostID,
		AuthorID:        authorID,
		Content:         content,
		ParentCommentID: input.ParentCommentID,
	})
	if err != nil {
		return nil, err
	}
	if err := s.posts.AdjustCommentsCount(ctx, input.PostID, 1); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *CommentService) ListByPost(ctx context.Context, postID common.UUID) ([]comment.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.repo.ListByPost(ctx, postID)
}

func (s *CommentService) Update(ctx context.Context, id, actorID common.UUID, content string) (*comment.Comment, error) {
	existing, err := s.requireAuthor(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if fields := validateCommentContent(content); len(fields) > 0 {
		return nil, common.NewValidationError("invalid comment payload", fields)
	}
	existing.Content = content
	return s.repo.Update(ctx, *existing)
}

func (s *CommentService) Delete(ctx context.Context, id, actorID common.UUID) error {
	existing, err := s.requireAuthor(ctx, id, actorID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.posts.AdjustCommentsCount(ctx, existing.PostID, -1)
}

func (s *CommentService) ToggleLike(ctx context.Context, id, userID common.UUID) (*comment.Comment, bool, error) {
	return s.repo.ToggleLike(ctx, id, userID)
}

func (s *CommentService) requireAuthor(ctx context.Context, id, actorID common.UUID) (*comment.Comment, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != actorID {
		return nil, common.NewError(common.CodeForbidden, "comment belongs to another user", nil)
	}
	return existing, nil
}

func validateCommentContent(content string) map[string]string {
	if content == "" {
		return map[string]string{"content": "content is required"}
	}
	if len(content) > maxCommentContentLength {
		return map[string]string{"content": "content must be at most 1000 characters"}
	}
	return nil
}
