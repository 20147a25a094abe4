package post

import (
	"context"

	"devsync/internal/common"
)

type ListFilter struct {
	AuthorID common.UUID
	Tag      string
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, p Post) (*Post, error)
	GetByID(ctx context.Context, id common.UUID) (*Post, error)
	List(ctx context.Context, filter ListFilter) ([]Post, int, error)
	ListByAuthor(ctx context.Context, authorID common.UUID) ([]Post, error)
	Update(ctx context.Context, p Post) (*Post, error)
	Delete(ctx context.Context, id common.UUID) error

	// ToggleLike adds the user to the likes set, or removes them when
	// already present. Returns the post after the toggle and whether the
	// post is now liked by the user.
	ToggleLike(ctx context.Context, id, userID common.UUID) (*Post, bool, error)

	// AdjustCommentsCount shifts the denormalized comment counter, clamped
	// at zero.
	AdjustCommentsCount(ctx context.Context, id common.UUID, delta int) error
}
