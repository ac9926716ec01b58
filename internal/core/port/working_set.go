package port

import (
	"context"
	"listing-service/internal/core/domain"
)

// Snapshot - зафиксированное состояние рабочего набора.
type Snapshot struct {
	Records    []domain.HotelRecord
	Rejected   int
	Generation uint64
	// LoadErr != nil - последняя попытка загрузки не удалась, Records пуст.
	LoadErr error
}

// WorkingSetPort - держит последний загруженный набор карточек.
type WorkingSetPort interface {
	// Current возвращает текущий снимок; если набор ещё не загружался
	// или последняя загрузка упала, делается одна новая попытка.
	Current(ctx context.Context) Snapshot
	// Reload принудительно перезагружает набор (одна попытка).
	Reload(ctx context.Context) Snapshot
}
