package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"devsync/internal/common"
	"devsync/internal/domain/post"
)

type PostRepository struct {
	db *sql.DB
}

var _ post.Repository = (*PostRepository)(nil)

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `id, author_id, content, tags, likes, comments_count, created_at, updated_at`

func (r *PostRepository) Create(ctx context.Context, p post.Post) (*post.Post, error) {
	p.ID = common.NewUUID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Likes = nil
	p.CommentsCount = 0
	_, err := r.db.ExecContext(ctx, `INSERT INTO posts (id, author_id, content, tags, likes, comments_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '{}', 0, $5, $6)`,
		p.ID, p.AuthorID, p.Content, pq.Array(p.Tags), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create post", err)
	}
	return &p, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id common.UUID) (*post.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	return scanPost(row)
}

func (r *PostRepository) List(ctx context.Context, filter post.ListFilter) ([]post.Post, int, error) {
	var conditions []string
	var args []any
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		conditions = append(conditions, "author_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		conditions = append(conditions, "$"+strconv.Itoa(len(args))+" = ANY(tags)")
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to count posts", err)
	}

	query := `SELECT ` + postColumns + ` FROM posts` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}
	items, err := r.listPosts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID common.UUID) ([]post.Post, error) {
	return r.listPosts(ctx, `SELECT `+postColumns+` FROM posts WHERE author_id = $1 ORDER BY created_at DESC`, authorID)
}

func (r *PostRepository) listPosts(ctx context.Context, query string, args ...any) ([]post.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list posts", err)
	}
	defer rows.Close()
	var items []post.Post
	for rows.Next() {
		var p post.Post
		var tags, likes pq.StringArray
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &tags, &likes, &p.CommentsCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan post", err)
		}
		p.Tags = tags
		p.Likes = toUUIDs(likes)
		items = append(items, p)
	}
	return items, nil
}

func (r *PostRepository) Update(ctx context.Context, p post.Post) (*post.Post, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE posts SET content = $1, tags = $2, updated_at = $3
		WHERE id = $4
		RETURNING `+postColumns,
		p.Content, pq.Array(p.Tags), time.Now().UTC(), p.ID)
	return scanPost(row)
}

func (r *PostRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete post", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "post not found", sql.ErrNoRows)
	}
	return nil
}

// ToggleLike flips membership in the likes array in a single statement, so
// double taps from the same user cannot double count.
func (r *PostRepository) ToggleLike(ctx context.Context, id, userID common.UUID) (*post.Post, bool, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE posts
		SET likes = CASE WHEN $2::uuid = ANY(likes)
			THEN array_remove(likes, $2::uuid)
			ELSE likes || $2::uuid END,
		    updated_at = $3
		WHERE id = $1
		RETURNING `+postColumns, id, userID, time.Now().UTC())
	updated, err := scanPost(row)
	if err != nil {
		return nil, false, err
	}
	return updated, updated.LikedBy(userID), nil
}

func (r *PostRepository) AdjustCommentsCount(ctx context.Context, id common.UUID, delta int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE posts SET comments_count = GREATEST(comments_count + $1, 0), updated_at = $2 WHERE id = $3`,
		delta, time.Now().UTC(), id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to update comment count", err)
	}
	return nil
}

func scanPost(row *sql.Row) (*post.Post, error) {
	var p post.Post
	var tags, likes pq.StringArray
	err := row.Scan(&p.ID, &p.AuthorID, &p.Content, &tags, &likes, &p.CommentsCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "post not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load post", err)
	}
	p.Tags = tags
	p.Likes = toUUIDs(likes)
	return &p, nil
}
