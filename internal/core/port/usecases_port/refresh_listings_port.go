package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"
)

type RefreshListingsUseCase interface {
	Execute(ctx context.Context, reason string) (*domain.RefreshReport, error)
}
