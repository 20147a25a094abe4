package report

import (
	"context"
	"time"

	"devsync/internal/common"
)

type ListFilter struct {
	ReporterID common.UUID
	ReportType ContentType
	State      State
	Action     Action
	From       time.Time
	To         time.Time
	SortOldest bool
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, r Report) (*Report, error)
	GetByID(ctx context.Context, id common.UUID) (*Report, error)
	List(ctx context.Context, filter ListFilter) ([]Report, int, error)
	FindByReporterAndContent(ctx context.Context, reporterID common.UUID, reportType ContentType, contentID *common.UUID) (*Report, error)
	Update(ctx context.Context, r Report) (*Report, error)
	Statistics(ctx context.Context) (*Statistics, error)
}
