package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"devsync/internal/common"
	"devsync/internal/domain/project"
)

type ProjectRepository struct {
	db *sql.DB
}

var _ project.Repository = (*ProjectRepository)(nil)

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, owner_id, title, description, category, project_type, status, created_at, updated_at`
const slotColumns = `id, role_name, required_skills, optional_skills, quota, status, filled_by`

func (r *ProjectRepository) Create(ctx context.Context, p project.Project) (*project.Project, error) {
	p.ID = common.NewUUID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = project.StatusDraft
	}
	if p.ProjectType == "" {
		p.ProjectType = project.TypePersonal
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create project", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.OwnerID, p.Title, p.Description, p.Category, p.ProjectType, p.Status, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create project", err)
	}

	for i := range p.Slots {
		p.Slots[i].ID = common.NewUUID()
		if p.Slots[i].Status == "" {
			p.Slots[i].Status = project.SlotOpen
		}
		p.Slots[i].FilledBy = nil
		if err := insertSlot(ctx, tx, p.ID, p.Slots[i], i); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create project", err)
	}
	return &p, nil
}

func insertSlot(ctx context.Context, tx *sql.Tx, projectID common.UUID, slot project.Slot, position int) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO project_slots (id, project_id, role_name, required_skills, optional_skills, quota, status, filled_by, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '{}', $8)`,
		slot.ID, projectID, slot.RoleName, pq.Array(slot.RequiredSkills), pq.Array(slot.OptionalSkills), slot.Quota, slot.Status, position)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to create slot", err)
	}
	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id common.UUID) (*project.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	var p project.Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Category, &p.ProjectType, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "project not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load project", err)
	}
	slots, err := r.loadSlots(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Slots = slots
	return &p, nil
}

func (r *ProjectRepository) loadSlots(ctx context.Context, projectID common.UUID) ([]project.Slot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+slotColumns+` FROM project_slots WHERE project_id = $1 ORDER BY position`, projectID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load slots", err)
	}
	defer rows.Close()
	var slots []project.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *slot)
	}
	return slots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (*project.Slot, error) {
	var slot project.Slot
	var required, optional, filledBy pq.StringArray
	err := row.Scan(&slot.ID, &slot.RoleName, &required, &optional, &slot.Quota, &slot.Status, &filledBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "slot not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to scan slot", err)
	}
	slot.RequiredSkills = required
	slot.OptionalSkills = optional
	slot.FilledBy = toUUIDs(filledBy)
	return &slot, nil
}

func toUUIDs(values pq.StringArray) []common.UUID {
	ids := make([]common.UUID, 0, len(values))
	for _, value := range values {
		ids = append(ids, common.UUID(value))
	}
	return ids
}

func (r *ProjectRepository) List(ctx context.Context, filter project.ListFilter) ([]project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var conditions []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, "category = $"+strconv.Itoa(len(args)))
	}
	if filter.ProjectType != "" {
		args = append(args, filter.ProjectType)
		conditions = append(conditions, "project_type = $"+strconv.Itoa(len(args)))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	return r.listProjects(ctx, query, args...)
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID common.UUID) ([]project.Project, error) {
	return r.listProjects(ctx, `SELECT `+projectColumns+` FROM projects WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
}

func (r *ProjectRepository) listProjects(ctx context.Context, query string, args ...any) ([]project.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list projects", err)
	}
	defer rows.Close()
	var items []project.Project
	for rows.Next() {
		var p project.Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Category, &p.ProjectType, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan project", err)
		}
		items = append(items, p)
	}
	for i := range items {
		slots, err := r.loadSlots(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Slots = slots
	}
	return items, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p project.Project) (*project.Project, error) {
	p.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE projects SET title = $1, description = $2, category = $3, project_type = $4, status = $5, updated_at = $6
		WHERE id = $7`,
		p.Title, p.Description, p.Category, p.ProjectType, p.Status, p.UpdatedAt, p.ID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update project", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "project not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *ProjectRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete project", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "project not found", sql.ErrNoRows)
	}
	return nil
}

func (r *ProjectRepository) AddSlot(ctx context.Context, projectID common.UUID, slot project.Slot) (*project.Project, error) {
	slot.ID = common.NewUUID()
	if slot.Status == "" {
		slot.Status = project.SlotOpen
	}
	var position int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM project_slots WHERE project_id = $1`, projectID).Scan(&position)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to add slot", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO project_slots (id, project_id, role_name, required_skills, optional_skills, quota, status, filled_by, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, '{}', $8)`,
		slot.ID, projectID, slot.RoleName, pq.Array(slot.RequiredSkills), pq.Array(slot.OptionalSkills), slot.Quota, slot.Status, position)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to add slot", err)
	}
	return r.GetByID(ctx, projectID)
}

func (r *ProjectRepository) UpdateSlot(ctx context.Context, projectID common.UUID, slot project.Slot) (*project.Project, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE project_slots SET role_name = $1, required_skills = $2, optional_skills = $3, quota = $4, status = $5
		WHERE project_id = $6 AND id = $7`,
		slot.RoleName, pq.Array(slot.RequiredSkills), pq.Array(slot.OptionalSkills), slot.Quota, slot.Status, projectID, slot.ID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update slot", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "slot not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, projectID)
}

func (r *ProjectRepository) RemoveSlot(ctx context.Context, projectID, slotID common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM project_slots WHERE project_id = $1 AND id = $2`, projectID, slotID)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete slot", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "slot not found", sql.ErrNoRows)
	}
	return nil
}

// FillSlot is the only write path into filled_by. The UPDATE carries the
// quota and membership conditions, so two concurrent accepts for the last
// seat serialize on the row and exactly one append wins.
func (r *ProjectRepository) FillSlot(ctx context.Context, projectID, slotID, userID common.UUID) (*project.Slot, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE project_slots
		SET filled_by = filled_by || $3::uuid,
		    status = CASE WHEN cardinality(filled_by) + 1 >= quota THEN 'filled' ELSE status END
		WHERE project_id = $1 AND id = $2
		  AND cardinality(filled_by) < quota
		  AND NOT ($3::uuid = ANY(filled_by))
		RETURNING `+slotColumns, projectID, slotID, userID)
	slot, err := scanSlot(row)
	if err == nil {
		return slot, nil
	}
	if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}

	// The conditional update matched nothing; re-read to say why.
	current := r.db.QueryRowContext(ctx, `SELECT `+slotColumns+` FROM project_slots WHERE project_id = $1 AND id = $2`, projectID, slotID)
	slot, scanErr := scanSlot(current)
	if scanErr != nil {
		return nil, scanErr
	}
	if slot.Has(userID) {
		return nil, common.NewError(common.CodeValidation, "user is already accepted into this slot", nil)
	}
	return nil, common.NewError(common.CodeValidation,
		fmt.Sprintf("slot quota is full (%d/%d)", len(slot.FilledBy), slot.Quota), nil)
}
