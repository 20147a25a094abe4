package comment

import (
	"context"

	"devsync/internal/common"
)

type Repository interface {
	Create(ctx context.Context, c Comment) (*Comment, error)
	GetByID(ctx context.Context, id common.UUID) (*Comment, error)
	ListByPost(ctx context.Context, postID common.UUID) ([]Comment, error)
	Update(ctx context.Context, c Comment) (*Comment, error)
	Delete(ctx context.Context, id common.UUID) error
	ToggleLike(ctx context.Context, id, userID common.UUID) (*Comment, bool, error)
}
