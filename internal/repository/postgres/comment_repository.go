package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"devsync/internal/common"
	"devsync/internal/domain/comment"
)

type CommentRepository struct {
	db *sql.DB
}

var _ comment.Repository = (*CommentRepository)(nil)

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentColumns = `id, post_id, author_id, content, parent_comment_id, likes, created_at, updated_at`

func (r *CommentRepository) Create(ctx context.Context, c comment.Comment) (*comment.Comment, error) {
	c.ID = common.NewUUID()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Likes = nil
	_, err := r.db.ExecContext(ctx, `INSERT INTO comments (id, post_id, author_id, content, parent_comment_id, likes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '{}', $6, $7)`,
		c.ID, c.PostID, c.AuthorID, c.Content, c.ParentCommentID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create comment", err)
	}
	return &c, nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id common.UUID) (*comment.Comment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	return scanComment(row)
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID common.UUID) ([]comment.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id = $1 ORDER BY created_at`, postID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list comments", err)
	}
	defer rows.Close()
	var items []comment.Comment
	for rows.Next() {
		var c comment.Comment
		var likes pq.StringArray
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.ParentCommentID, &likes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan comment", err)
		}
		c.Likes = toUUIDs(likes)
		items = append(items, c)
	}
	return items, nil
}

func (r *CommentRepository) Update(ctx context.Context, c comment.Comment) (*comment.Comment, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE comments SET content = $1, updated_at = $2
		WHERE id = $3
		RETURNING `+commentColumns,
		c.Content, time.Now().UTC(), c.ID)
	return scanComment(row)
}

func (r *CommentRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete comment", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "comment not found", sql.ErrNoRows)
	}
	return nil
}

func (r *CommentRepository) ToggleLike(ctx context.Context, id, userID common.UUID) (*comment.Comment, bool, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE comments
		SET likes = CASE WHEN $2::uuid = ANY(likes)
			THEN array_remove(likes, $2::uuid)
			ELSE likes || $2::uuid END,
		    updated_at = $3
		WHERE id = $1
		RETURNING `+commentColumns, id, userID, time.Now().UTC())
	updated, err := scanComment(row)
	if err != nil {
		return nil, false, err
	}
	liked := false
	for _, likerID := range updated.Likes {
		if likerID == userID {
			liked = true
			break
		}
	}
	return updated, liked, nil
}

func scanComment(row *sql.Row) (*comment.Comment, error) {
	var c comment.Comment
	var likes pq.StringArray
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.ParentCommentID, &likes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "comment not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load comment", err)
	}
	c.Likes = toUUIDs(likes)
	return &c, nil
}
