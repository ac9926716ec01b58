package port

import (
	"context"
	"listing-service/internal/core/domain"
)

type RefreshReporterPort interface {
	ReportRefresh(ctx context.Context, report *domain.RefreshReport) error
}
