package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"devsync/internal/common"
	"devsync/internal/domain/report"
)

type ReportRepository struct {
	db *sql.DB
}

var _ report.Repository = (*ReportRepository)(nil)

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, reporter_id, report_type, content_id, reason, description, state, action_taken, admin_note, resolved_at, resolved_by, created_at, updated_at`

func (r *ReportRepository) Create(ctx context.Context, rep report.Report) (*report.Report, error) {
	rep.ID = common.NewUUID()
	now := time.Now().UTC()
	rep.CreatedAt = now
	rep.UpdatedAt = now
	rep.State = report.StatePending
	if rep.ActionTaken == "" {
		rep.ActionTaken = report.ActionNone
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rep.ID, rep.ReporterID, rep.ReportType, rep.ContentID, rep.Reason, rep.Description,
		rep.State, rep.ActionTaken, rep.AdminNote, rep.ResolvedAt, rep.ResolvedBy, rep.CreatedAt, rep.UpdatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create report", err)
	}
	return &rep, nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id common.UUID) (*report.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	return scanReport(row)
}

func (r *ReportRepository) FindByReporterAndContent(ctx context.Context, reporterID common.UUID, reportType report.ContentType, contentID *common.UUID) (*report.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports
		WHERE reporter_id = $1 AND report_type = $2 AND content_id IS NOT DISTINCT FROM $3 AND state = 'pending'`,
		reporterID, reportType, contentID)
	return scanReport(row)
}

func (r *ReportRepository) List(ctx context.Context, filter report.ListFilter) ([]report.Report, int, error) {
	var conditions []string
	var args []any
	if filter.ReporterID != "" {
		args = append(args, filter.ReporterID)
		conditions = append(conditions, "reporter_id = $"+strconv.Itoa(len(args)))
	}
	if filter.ReportType != "" {
		args = append(args, filter.ReportType)
		conditions = append(conditions, "report_type = $"+strconv.Itoa(len(args)))
	}
	if filter.State != "" {
		args = append(args, filter.State)
		conditions = append(conditions, "state = $"+strconv.Itoa(len(args)))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		conditions = append(conditions, "action_taken = $"+strconv.Itoa(len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, "created_at <= $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reports`+where, args...).Scan(&total); err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to count reports", err)
	}

	order := " ORDER BY created_at DESC"
	if filter.SortOldest {
		order = " ORDER BY created_at"
	}
	query := `SELECT ` + reportColumns + ` FROM reports` + where + order
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, common.NewError(common.CodeInternal, "failed to list reports", err)
	}
	defer rows.Close()
	var items []report.Report
	for rows.Next() {
		var rep report.Report
		if err := rows.Scan(&rep.ID, &rep.ReporterID, &rep.ReportType, &rep.ContentID, &rep.Reason, &rep.Description,
			&rep.State, &rep.ActionTaken, &rep.AdminNote, &rep.ResolvedAt, &rep.ResolvedBy, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, 0, common.NewError(common.CodeInternal, "failed to scan report", err)
		}
		items = append(items, rep)
	}
	return items, total, nil
}

func (r *ReportRepository) Update(ctx context.Context, rep report.Report) (*report.Report, error) {
	row := r.db.QueryRowContext(ctx, `UPDATE reports
		SET state = $1, action_taken = $2, admin_note = $3, resolved_at = $4, resolved_by = $5, updated_at = $6
		WHERE id = $7
		RETURNING `+reportColumns,
		rep.State, rep.ActionTaken, rep.AdminNote, rep.ResolvedAt, rep.ResolvedBy, time.Now().UTC(), rep.ID)
	return scanReport(row)
}

func (r *ReportRepository) Statistics(ctx context.Context) (*report.Statistics, error) {
	row := r.db.QueryRowContext(ctx, `SELECT
		count(*) FILTER (WHERE state = 'pending'),
		count(*) FILTER (WHERE state = 'resolved'),
		count(*) FILTER (WHERE state = 'rejected'),
		count(*) FILTER (WHERE state = 'cancelled'),
		count(*)
		FROM reports`)
	var stats report.Statistics
	if err := row.Scan(&stats.Pending, &stats.Resolved, &stats.Rejected, &stats.Cancelled, &stats.Total); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to load report statistics", err)
	}
	return &stats, nil
}

func scanReport(row *sql.Row) (*report.Report, error) {
	var rep report.Report
	err := row.Scan(&rep.ID, &rep.ReporterID, &rep.ReportType, &rep.ContentID, &rep.Reason, &rep.Description,
		&rep.State, &rep.ActionTaken, &rep.AdminNote, &rep.ResolvedAt, &rep.ResolvedBy, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "report not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load report", err)
	}
	return &rep, nil
}
