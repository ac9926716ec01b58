package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"
)

type QueryListingsUseCase interface {
	Execute(ctx context.Context, filters domain.FilterState) (*domain.ListingPage, error)
}
