package user

import (
	"context"

	"devsync/internal/common"
)

type Repository interface {
	Create(ctx context.Context, account User) (*User, error)
	GetByID(ctx context.Context, id common.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	Exists(ctx context.Context, id common.UUID) (bool, error)
}
