package usecase

import (
	"context"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/engine"
	"listing-service/internal/core/port"
)

type GetFilterOptionsUseCase struct {
	workingSet port.WorkingSetPort
}

func NewGetFilterOptionsUseCase(workingSet port.WorkingSetPort) *GetFilterOptionsUseCase {
	return &GetFilterOptionsUseCase{workingSet: workingSet}
}

func (uc *GetFilterOptionsUseCase) Execute(ctx context.Context) (*domain.FilterOptions, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "GetFilterOptions"})
	ucLogger.Info("Use case started", nil)

	snap := uc.workingSet.Current(ctx)
	if snap.LoadErr != nil {
		ucLogger.Warn("Listings unavailable, using default bounds", port.Fields{"error": snap.LoadErr.Error()})
	}

	opts := engine.BuildFilterOptions(snap.Records)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"count":    opts.Count,
		"rent_min": opts.RentMin,
		"rent_max": opts.RentMax,
	})
	return &opts, nil
}
