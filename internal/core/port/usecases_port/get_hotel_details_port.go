package usecases_port

import (
	"context"
	"listing-service/internal/core/domain"
)

type GetHotelDetailsUseCase interface {
	Execute(ctx context.Context, hotelID string) (*domain.HotelDetails, error)
}
