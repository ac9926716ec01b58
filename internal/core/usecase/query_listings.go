package usecase

import (
	"context"
	"fmt"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/engine"
	"listing-service/internal/core/port"
)

type QueryListingsUseCase struct {
	workingSet port.WorkingSetPort
}

func NewQueryListingsUseCase(workingSet port.WorkingSetPort) *QueryListingsUseCase {
	return &QueryListingsUseCase{workingSet: workingSet}
}

// Execute - фильтрация, поиск, сортировка и страница по текущему рабочему набору.
// Если набор загрузить не удалось, отдаётся пустая страница с LoadErr, а не ошибка.
func (uc *QueryListingsUseCase) Execute(ctx context.Context, filters domain.FilterState) (*domain.ListingPage, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "QueryListings",
		"page":     filters.Page,
		"per_page": filters.PageSize,
		"sort_by":  filters.SortBy,
	})
	ucLogger.Info("Use case started", port.Fields{"search": filters.SearchText})

	snap := uc.workingSet.Current(ctx)

	result, err := engine.Query(snap.Records, filters)
	if err != nil {
		if domain.IsValidationError(err) {
			ucLogger.Warn("Filter state rejected", port.Fields{"reason": err.Error()})
			return nil, err
		}
		ucLogger.Error("Query failed", err, nil)
		return nil, fmt.Errorf("query listings: %w", err)
	}

	if snap.LoadErr != nil {
		ucLogger.Warn("Listings unavailable, returning empty page", port.Fields{"error": snap.LoadErr.Error()})
	}
	if result.Skipped > 0 {
		ucLogger.Debug("Malformed records excluded", port.Fields{"skipped": result.Skipped})
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"filtered":    result.Stats.Filtered,
		"total_pages": result.TotalPages,
	})

	return &domain.ListingPage{
		QueryResult:  result,
		CurrentPage:  filters.Page,
		ItemsPerPage: filters.PageSize,
		Rejected:     snap.Rejected,
		LoadErr:      snap.LoadErr,
	}, nil
}
