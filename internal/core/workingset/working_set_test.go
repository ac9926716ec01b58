package workingset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	calls atomic.Int32
	fetch func(call int32) (*domain.FetchResult, error)
}

func (f *fakeRepo) FetchAll(ctx context.Context) (*domain.FetchResult, error) {
	return f.fetch(f.calls.Add(1))
}

func records(ids ...string) []domain.HotelRecord {
	out := make([]domain.HotelRecord, len(ids))
	for i, id := range ids {
		out[i] = domain.HotelRecord{ID: id, Name: id}
	}
	return out
}

func TestWorkingSet_LoadsOnceAndCaches(t *testing.T) {
	repo := &fakeRepo{fetch: func(int32) (*domain.FetchResult, error) {
		return &domain.FetchResult{Records: records("a", "b"), Rejected: 1}, nil
	}}
	ws, err := NewWorkingSet(repo)
	require.NoError(t, err)

	first := ws.Current(context.Background())
	second := ws.Current(context.Background())

	assert.NoError(t, first.LoadErr)
	assert.Len(t, first.Records, 2)
	assert.Equal(t, 1, first.Rejected)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, repo.calls.Load())
}

func TestWorkingSet_FailureLeavesEmptySetAndRetriesOnNextCall(t *testing.T) {
	repo := &fakeRepo{fetch: func(call int32) (*domain.FetchResult, error) {
		if call == 1 {
			return nil, errors.New("connection refused")
		}
		return &domain.FetchResult{Records: records("a")}, nil
	}}
	ws, err := NewWorkingSet(repo)
	require.NoError(t, err)

	failed := ws.Current(context.Background())
	require.ErrorIs(t, failed.LoadErr, domain.ErrListingsUnavailable)
	assert.NotNil(t, failed.Records)
	assert.Empty(t, failed.Records)

	recovered := ws.Current(context.Background())
	assert.NoError(t, recovered.LoadErr)
	assert.Len(t, recovered.Records, 1)
	assert.EqualValues(t, 2, repo.calls.Load())
}

func TestWorkingSet_ReloadFailureReplacesGoodSnapshot(t *testing.T) {
	repo := &fakeRepo{fetch: func(call int32) (*domain.FetchResult, error) {
		if call == 2 {
			return nil, errors.New("503")
		}
		return &domain.FetchResult{Records: records("a")}, nil
	}}
	ws, err := NewWorkingSet(repo)
	require.NoError(t, err)

	require.NoError(t, ws.Current(context.Background()).LoadErr)

	snap := ws.Reload(context.Background())
	assert.Error(t, snap.LoadErr)
	assert.Empty(t, snap.Records)
}

func TestWorkingSet_StaleLoadIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	repo := &fakeRepo{fetch: func(call int32) (*domain.FetchResult, error) {
		if call == 1 {
			close(started)
			<-release
			return &domain.FetchResult{Records: records("old")}, nil
		}
		return &domain.FetchResult{Records: records("new")}, nil
	}}
	ws, err := NewWorkingSet(repo)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var slow []domain.HotelRecord
	wg.Add(1)
	go func() {
		defer wg.Done()
		slow = ws.Reload(context.Background()).Records
	}()

	<-started
	fresh := ws.Reload(context.Background())
	close(release)
	wg.Wait()

	assert.Equal(t, "new", fresh.Records[0].ID)
	assert.Equal(t, "new", slow[0].ID, "older load must not overwrite the newer snapshot")
	assert.Equal(t, "new", ws.Current(context.Background()).Records[0].ID)
}

func TestNewWorkingSet_RequiresRepository(t *testing.T) {
	_, err := NewWorkingSet(nil)
	assert.Error(t, err)
}

type gatedRepo struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	ctxErr  atomic.Value
}

func (g *gatedRepo) FetchAll(ctx context.Context) (*domain.FetchResult, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	<-g.release
	if err := ctx.Err(); err != nil {
		g.ctxErr.Store(err)
		return nil, err
	}
	return &domain.FetchResult{Records: records("a", "b")}, nil
}

func TestWorkingSet_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	repo := &gatedRepo{started: make(chan struct{}), release: make(chan struct{})}
	ws, err := NewWorkingSet(repo)
	require.NoError(t, err)

	ctxA, cancelA := context.WithCancel(context.Background())
	firstDone := make(chan port.Snapshot, 1)
	go func() { firstDone <- ws.Current(ctxA) }()
	<-repo.started

	var wg sync.WaitGroup
	var second []domain.HotelRecord
	var secondErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		snap := ws.Current(context.Background())
		second, secondErr = snap.Records, snap.LoadErr
	}()

	cancelA()
	cancelled := <-firstDone
	assert.ErrorIs(t, cancelled.LoadErr, domain.ErrListingsUnavailable)
	assert.Contains(t, cancelled.LoadErr.Error(), context.Canceled.Error())
	assert.Empty(t, cancelled.Records)

	close(repo.release)
	wg.Wait()

	assert.Nil(t, repo.ctxErr.Load(), "shared load must not inherit the first caller's cancellation")
	require.NoError(t, secondErr)
	assert.Len(t, second, 2)

	stored := ws.Current(context.Background())
	assert.NoError(t, stored.LoadErr)
	assert.Len(t, stored.Records, 2)
	assert.EqualValues(t, 1, repo.calls.Load())
}

func TestWorkingSet_ReloadOutlivesCancelledCaller(t *testing.T) {
	repo := &gatedRepo{started: make(chan struct{}), release: make(chan struct{})}
	ws, err := NewWorkingSet(repo)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan port.Snapshot, 1)
	go func() { done <- ws.Reload(ctx) }()

	<-repo.started
	cancel()
	close(repo.release)

	snap := <-done
	assert.NoError(t, snap.LoadErr)
	assert.Len(t, snap.Records, 2)
	assert.NoError(t, ws.Current(context.Background()).LoadErr)
}
