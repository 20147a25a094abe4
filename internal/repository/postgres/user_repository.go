package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"devsync/internal/common"
	"devsync/internal/domain/user"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *sql.DB
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, name, surname, bio, avatar_url, location,
	github, linkedin, portfolio, titles, skills, role, active, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, account user.User) (*user.User, error) {
	account.ID = common.NewUUID()
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.Role == "" {
		account.Role = user.RoleUser
	}
	account.Active = true
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		account.ID, account.Username, account.Email, account.PasswordHash,
		account.Profile.Name, account.Profile.Surname, account.Profile.Bio, account.Profile.AvatarURL, account.Profile.Location,
		account.SocialLinks.GitHub, account.SocialLinks.LinkedIn, account.SocialLinks.Portfolio,
		pq.Array(account.Titles), pq.Array(account.Skills), account.Role, account.Active,
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.NewError(common.CodeConflict, "username or email is already registered", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create user", err)
	}
	return &account, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1 OR email = $2`, username, email)
	return scanUser(row)
}

func (r *UserRepository) Exists(ctx context.Context, id common.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to check user", err)
	}
	return exists, nil
}

func scanUser(row *sql.Row) (*user.User, error) {
	var account user.User
	var titles, skills pq.StringArray
	err := row.Scan(&account.ID, &account.Username, &account.Email, &account.PasswordHash,
		&account.Profile.Name, &account.Profile.Surname, &account.Profile.Bio, &account.Profile.AvatarURL, &account.Profile.Location,
		&account.SocialLinks.GitHub, &account.SocialLinks.LinkedIn, &account.SocialLinks.Portfolio,
		&titles, &skills, &account.Role, &account.Active, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "user not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load user", err)
	}
	account.Titles = titles
	account.Skills = skills
	return &account, nil
}
