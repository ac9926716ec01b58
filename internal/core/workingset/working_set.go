// Package workingset держит последний загруженный из репозитория набор карточек.
package workingset

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"golang.org/x/sync/singleflight"
)

// loadTimeout ограничивает одну загрузку, отвязанную от отмены вызывающего.
const loadTimeout = time.Minute

// WorkingSet - рабочий набор с семантикой "последняя запись побеждает".
// Каждая загрузка получает номер поколения; результат загрузки, начатой раньше
// уже сохранённой, отбрасывается.
type WorkingSet struct {
	repo port.ListingRepositoryPort

	mu       sync.RWMutex
	snapshot port.Snapshot
	loaded   bool

	generation atomic.Uint64
	group      singleflight.Group
}

func NewWorkingSet(repo port.ListingRepositoryPort) (*WorkingSet, error) {
	if repo == nil {
		return nil, fmt.Errorf("working set: repository cannot be nil")
	}
	return &WorkingSet{repo: repo}, nil
}

// Current отдаёт сохранённый снимок. Если набор ещё не загружен или последняя
// попытка упала, выполняется одна новая попытка; параллельные вызовы её разделяют.
// Отмена ctx прерывает только ожидание этого вызова, общая загрузка продолжается.
func (w *WorkingSet) Current(ctx context.Context) port.Snapshot {
	w.mu.RLock()
	snap, loaded := w.snapshot, w.loaded
	w.mu.RUnlock()

	if loaded && snap.LoadErr == nil {
		return snap
	}

	ch := w.group.DoChan("load", func() (interface{}, error) {
		return w.load(ctx), nil
	})
	select {
	case res := <-ch:
		return res.Val.(port.Snapshot)
	case <-ctx.Done():
		// снимок не сохраняется: это ошибка только этого вызова
		return port.Snapshot{
			Records: []domain.HotelRecord{},
			LoadErr: fmt.Errorf("%w: %v", domain.ErrListingsUnavailable, ctx.Err()),
		}
	}
}

// Reload - принудительная загрузка, одна попытка без ретраев.
func (w *WorkingSet) Reload(ctx context.Context) port.Snapshot {
	return w.load(ctx)
}

func (w *WorkingSet) load(ctx context.Context) port.Snapshot {
	gen := w.generation.Add(1)

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "WorkingSet",
		"generation": gen,
	})
	logger.Debug("Loading listings from repository", nil)

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
	defer cancel()

	next := port.Snapshot{Generation: gen, Records: []domain.HotelRecord{}}
	result, err := w.repo.FetchAll(loadCtx)
	if err != nil {
		logger.Error("Failed to load listings, working set stays empty", err, nil)
		next.LoadErr = fmt.Errorf("%w: %v", domain.ErrListingsUnavailable, err)
	} else {
		next.Records = result.Records
		next.Rejected = result.Rejected
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.loaded && w.snapshot.Generation > gen {
		logger.Info("Discarding stale load result", port.Fields{"current_generation": w.snapshot.Generation})
		return w.snapshot
	}
	w.snapshot = next
	w.loaded = true

	logger.Info("Working set replaced", port.Fields{
		"records":  len(next.Records),
		"rejected": next.Rejected,
		"failed":   next.LoadErr != nil,
	})
	return next
}
