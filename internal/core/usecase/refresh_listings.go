package usecase

import (
	"context"
	"time"

	"listing-service/internal/constants"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
)

type RefreshListingsUseCase struct {
	workingSet port.WorkingSetPort
	cache      port.ListingCachePort
	reporter   port.RefreshReporterPort
}

// NewRefreshListingsUseCase - cache и reporter могут быть nil, если кэш или брокер отключены.
func NewRefreshListingsUseCase(workingSet port.WorkingSetPort, cache port.ListingCachePort, reporter port.RefreshReporterPort) *RefreshListingsUseCase {
	return &RefreshListingsUseCase{
		workingSet: workingSet,
		cache:      cache,
		reporter:   reporter,
	}
}

// Execute сбрасывает кэш и перечитывает рабочий набор из источника.
// Неудачная загрузка не является ошибкой use case: она отражается в отчёте (Failed).
func (uc *RefreshListingsUseCase) Execute(ctx context.Context, reason string) (*domain.RefreshReport, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "RefreshListings",
		"reason":   reason,
	})
	ucLogger.Info("Use case started", nil)

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, constants.WorkingSetCacheKey); err != nil {
			// Старый кэш проживёт до истечения TTL, перезагрузку всё равно делаем
			ucLogger.Warn("Failed to invalidate listings cache", port.Fields{"error": err.Error()})
		}
	}

	snap := uc.workingSet.Reload(ctx)

	report := &domain.RefreshReport{
		Reason:     reason,
		Generation: snap.Generation,
		Loaded:     len(snap.Records),
		Rejected:   snap.Rejected,
		Failed:     snap.LoadErr != nil,
		FinishedAt: time.Now().UTC(),
	}
	if snap.LoadErr != nil {
		report.Error = snap.LoadErr.Error()
		ucLogger.Error("Refresh failed, working set is empty", snap.LoadErr, nil)
	}

	if uc.reporter != nil {
		if err := uc.reporter.ReportRefresh(ctx, report); err != nil {
			ucLogger.Error("Failed to publish refresh report", err, nil)
		}
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"generation": report.Generation,
		"loaded":     report.Loaded,
		"rejected":   report.Rejected,
		"failed":     report.Failed,
	})
	return report, nil
}
