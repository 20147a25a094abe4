package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"devsync/internal/common"
	"devsync/internal/domain/application"
)

type ApplicationRepository struct {
	db *sql.DB
}

var _ application.Repository = (*ApplicationRepository)(nil)

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, project_id, slot_id, user_id, role_name, message, status, applied_at, responded_at, created_at, updated_at`

// Create relies on the partial unique index over active applications, so a
// concurrent duplicate submit surfaces as a unique violation instead of a
// second pending row.
func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	app.ID = common.NewUUID()
	now := time.Now().UTC()
	app.AppliedAt = now
	app.CreatedAt = now
	app.UpdatedAt = now
	app.Status = application.StatusPending
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		app.ID, app.ProjectID, app.SlotID, app.UserID, app.RoleName, app.Message, app.Status,
		app.AppliedAt, app.RespondedAt, app.CreatedAt, app.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.NewError(common.CodeValidation, "you already have an active application for this slot", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	return scanApplication(row)
}

func (r *ApplicationRepository) FindActive(ctx context.Context, projectID, slotID, userID common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications
		WHERE project_id = $1 AND slot_id = $2 AND user_id = $3 AND status IN ('pending', 'accepted')`,
		projectID, slotID, userID)
	return scanApplication(row)
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID common.UUID) ([]application.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications WHERE user_id = $1 ORDER BY applied_at DESC`, userID)
}

func (r *ApplicationRepository) ListByProject(ctx context.Context, projectID common.UUID) ([]application.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications WHERE project_id = $1 ORDER BY applied_at DESC`, projectID)
}

func (r *ApplicationRepository) list(ctx context.Context, query string, args ...any) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	defer rows.Close()
	var items []application.Application
	for rows.Next() {
		var app application.Application
		if err := rows.Scan(&app.ID, &app.ProjectID, &app.SlotID, &app.UserID, &app.RoleName, &app.Message, &app.Status,
			&app.AppliedAt, &app.RespondedAt, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		items = append(items, app)
	}
	return items, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id common.UUID, status application.Status, respondedAt *time.Time) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE applications SET status = $1, responded_at = $2, updated_at = $3
		WHERE id = $4
		RETURNING `+applicationColumns,
		status, respondedAt, time.Now().UTC(), id)
	return scanApplication(row)
}

// RejectPending closes out every remaining pending application for a slot
// once its quota is reached. The accepted application is excluded by id.
func (r *ApplicationRepository) RejectPending(ctx context.Context, projectID, slotID, exceptID common.UUID, respondedAt time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET status = 'rejected', responded_at = $1, updated_at = $1
		WHERE project_id = $2 AND slot_id = $3 AND status = 'pending' AND id <> $4`,
		respondedAt, projectID, slotID, exceptID)
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to reject pending applications", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to reject pending applications", err)
	}
	return rows, nil
}

func scanApplication(row *sql.Row) (*application.Application, error) {
	var app application.Application
	err := row.Scan(&app.ID, &app.ProjectID, &app.SlotID, &app.UserID, &app.RoleName, &app.Message, &app.Status,
		&app.AppliedAt, &app.RespondedAt, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return &app, nil
}
