package usecase

import (
	"context"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/engine"
	"listing-service/internal/core/port"
)

type GetListingStatsUseCase struct {
	workingSet port.WorkingSetPort
}

func NewGetListingStatsUseCase(workingSet port.WorkingSetPort) *GetListingStatsUseCase {
	return &GetListingStatsUseCase{workingSet: workingSet}
}

// Execute считает только счётчики. Пагинация на них не влияет, поэтому
// page/perPage из фильтров не проверяются.
func (uc *GetListingStatsUseCase) Execute(ctx context.Context, filters domain.FilterState) (*domain.ListingStatsView, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "GetListingStats"})
	ucLogger.Info("Use case started", nil)

	filters.Page, filters.PageSize = 1, domain.DefaultPageSize
	if err := filters.Validate(); err != nil {
		ucLogger.Warn("Filter state rejected", port.Fields{"reason": err.Error()})
		return nil, err
	}

	snap := uc.workingSet.Current(ctx)
	valid, skipped := engine.Partition(snap.Records)

	view := &domain.ListingStatsView{
		Stats:    engine.ComputeStats(valid, filters),
		Skipped:  skipped,
		Rejected: snap.Rejected,
		LoadErr:  snap.LoadErr,
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total":     view.Stats.Total,
		"available": view.Stats.Available,
		"filtered":  view.Stats.Filtered,
	})
	return view, nil
}
