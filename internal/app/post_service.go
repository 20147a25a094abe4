package app

import (
	"context"
	"strings"

	"devsync/internal/common"
	"devsync/internal/domain/comment"
	"devsync/internal/domain/post"
)

const maxPostContentLength = 2000

type PostService struct {
	repo     post.Repository
	comments comment.Repository
}

func NewPostService(repo post.Repository, comments comment.Repository) *PostService {
	return &PostService{repo: repo, comments: comments}
}

type PostInput struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// PostWithComments is the detail view: the post plus its comment thread.
type PostWithComments struct {
	Post     post.Post         `json:"post"`
	Comments []comment.Comment `json:"comments"`
}

type PostPage struct {
	Posts  []post.Post `json:"posts"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

func (s *PostService) Create(ctx context.Context, authorID common.UUID, input PostInput) (*post.Post, error) {
	if fields := validatePostInput(input); len(fields) > 0 {
		return nil, common.NewValidationError("invalid post payload", fields)
	}
	return s.repo.Create(ctx, post.Post{
		AuthorID: authorID,
		Content:  strings.TrimSpace(input.Content),
		Tags:     input.Tags,
	})
}

func (s *PostService) Get(ctx context.Context, id common.UUID) (*PostWithComments, error) {
	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PostWithComments{Post: *found, Comments: comments}, nil
}

func (s *PostService) List(ctx context.Context, filter post.ListFilter) (*PostPage, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID common.UUID) ([]post.Post, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

func (s *PostService) Update(ctx context.Context, id, actorID common.UUID, input PostInput) (*post.Post, error) {
	existing, err := s.requireAuthor(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if fields := validatePostInput(input); len(fields) > 0 {
		return nil, common.NewValidationError("invalid post payload", fields)
	}
	existing.Content = strings.TrimSpace(input.Content)
	existing.Tags = input.Tags
	return s.repo.Update(ctx, *existing)
}

func (s *PostService) Delete(ctx context.Context, id, actorID common.UUID) error {
	if _, err := s.requireAuthor(ctx, id, actorID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *PostService) ToggleLike(ctx context.Context, id, userID common.UUID) (*post.Post, bool, error) {
	return s.repo.ToggleLike(ctx, id, userID)
}

func (s *PostService) requireAuthor(ctx context.Context, id, actorID common.UUID) (*post.Post, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != actorID {
		return nil, common.NewError(common.CodeForbidden, "post belongs to another user", nil)
	}
	return existing, nil
}

func validatePostInput(input PostInput) map[string]string {
	content := strings.TrimSpace(input.Content)
	fields := map[string]string{}
	if content == "" {
		fields["content"] = "content is required"
	} else if len(content) > maxPostContentLength {
		fields["content"] = "content must be at most 2000 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
