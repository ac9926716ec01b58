package port

import (
	"context"
	"listing-service/internal/core/domain"
)

// ListingRepositoryPort - источник карточек гостиниц (BaaS или PostgreSQL).
// Отдаёт рабочий набор целиком, пагинация делается на нашей стороне.
type ListingRepositoryPort interface {
	FetchAll(ctx context.Context) (*domain.FetchResult, error)
}
