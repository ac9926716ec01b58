package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"listing-service/internal/constants"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkingSet struct {
	snap    port.Snapshot
	reloads int
	reload  func() port.Snapshot
}

func (f *fakeWorkingSet) Current(ctx context.Context) port.Snapshot { return f.snap }

func (f *fakeWorkingSet) Reload(ctx context.Context) port.Snapshot {
	f.reloads++
	if f.reload != nil {
		f.snap = f.reload()
	}
	return f.snap
}

type fakeCache struct {
	deleted []string
	err     error
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, port.ErrCacheMiss }
func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	return c.err
}
func (c *fakeCache) Close() error { return nil }

type fakeReporter struct {
	reports []*domain.RefreshReport
	err     error
}

func (r *fakeReporter) ReportRefresh(ctx context.Context, report *domain.RefreshReport) error {
	r.reports = append(r.reports, report)
	return r.err
}

func fixture() []domain.HotelRecord {
	return []domain.HotelRecord{
		{
			ID: "h1", Name: "Sharda Palace", Address: "Station Road, Maihar", RentMin: 800, RentMax: 1500,
			RoomType: domain.RoomTypeAC, FoodFacility: domain.AmenityYes, Parking: domain.AmenityYes,
			Location: "24.2667, 80.7567",
		},
		{
			ID: "h2", Name: "Maihar Lodge", Address: "Temple Road", RentMin: 300, RentMax: 600,
			RoomType: domain.RoomTypeNonAC, FoodFacility: domain.AmenityNo, Parking: domain.AmenityUnknown,
		},
		{
			ID: "h3", Name: "Hotel Trikoot", RentMin: 1200, RentMax: 2500,
			RoomType: domain.RoomTypeAC, FoodFacility: domain.AmenityYes, Parking: domain.AmenityNo,
			IsFlagged: true, Location: "not a location",
		},
		// некорректная запись: min > max
		{
			ID: "bad", Name: "Broken", RentMin: 900, RentMax: 100,
			RoomType: domain.RoomTypeAC, FoodFacility: domain.AmenityYes, Parking: domain.AmenityYes,
		},
	}
}

func loadedSet() *fakeWorkingSet {
	return &fakeWorkingSet{snap: port.Snapshot{Records: fixture(), Rejected: 2, Generation: 1}}
}

func failedSet() *fakeWorkingSet {
	return &fakeWorkingSet{snap: port.Snapshot{
		Records:    []domain.HotelRecord{},
		Generation: 1,
		LoadErr:    fmt.Errorf("%w: timeout", domain.ErrListingsUnavailable),
	}}
}

func TestQueryListings_Execute(t *testing.T) {
	uc := NewQueryListingsUseCase(loadedSet())

	page, err := uc.Execute(context.Background(), domain.DefaultFilterState())
	require.NoError(t, err)

	require.Len(t, page.Page, 2)
	assert.Equal(t, "Maihar Lodge", page.Page[0].Name)
	assert.Equal(t, "Sharda Palace", page.Page[1].Name)
	assert.Equal(t, domain.ListingStats{Total: 3, Available: 2, Filtered: 2}, page.Stats)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.Skipped)
	assert.Equal(t, 2, page.Rejected)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, domain.DefaultPageSize, page.ItemsPerPage)
	assert.NoError(t, page.LoadErr)
}

func TestQueryListings_ValidationErrorIsReturnedAsIs(t *testing.T) {
	uc := NewQueryListingsUseCase(loadedSet())

	filters := domain.DefaultFilterState()
	filters.PageSize = 0

	page, err := uc.Execute(context.Background(), filters)
	assert.Nil(t, page)
	assert.True(t, domain.IsValidationError(err))
	assert.ErrorIs(t, err, domain.ErrInvalidPageSize)
}

func TestQueryListings_LoadFailureIsNotFatal(t *testing.T) {
	uc := NewQueryListingsUseCase(failedSet())

	page, err := uc.Execute(context.Background(), domain.DefaultFilterState())
	require.NoError(t, err)

	assert.Empty(t, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, domain.ListingStats{}, page.Stats)
	assert.ErrorIs(t, page.LoadErr, domain.ErrListingsUnavailable)
}

func TestGetListingStats_IgnoresPagination(t *testing.T) {
	uc := NewGetListingStatsUseCase(loadedSet())

	filters := domain.DefaultFilterState()
	filters.Page, filters.PageSize = 0, 0
	filters.ShowFlagged = true

	view, err := uc.Execute(context.Background(), filters)
	require.NoError(t, err)

	assert.Equal(t, domain.ListingStats{Total: 3, Available: 2, Filtered: 3}, view.Stats)
	assert.Equal(t, 1, view.Skipped)
	assert.Equal(t, 2, view.Rejected)
}

func TestGetListingStats_RejectsBadPriceRange(t *testing.T) {
	uc := NewGetListingStatsUseCase(loadedSet())

	filters := domain.DefaultFilterState()
	filters.PriceMin, filters.PriceMax = 1000, 10

	_, err := uc.Execute(context.Background(), filters)
	assert.ErrorIs(t, err, domain.ErrInvalidPriceRange)
}

func TestGetHotelDetails_WithCoordinates(t *testing.T) {
	uc := NewGetHotelDetailsUseCase(loadedSet())

	details, err := uc.Execute(context.Background(), "h1")
	require.NoError(t, err)

	assert.Equal(t, "Sharda Palace", details.Hotel.Name)
	assert.True(t, details.Bookable)
	assert.Len(t, details.Geohash, geohashPrecision)

	u, err := url.Parse(details.MapURL)
	require.NoError(t, err)
	assert.Equal(t, "www.google.com", u.Host)
	assert.Equal(t, "24.2667,80.7567", u.Query().Get("query"))
}

func TestGetHotelDetails_FallsBackToAddress(t *testing.T) {
	uc := NewGetHotelDetailsUseCase(loadedSet())

	details, err := uc.Execute(context.Background(), "h2")
	require.NoError(t, err)

	assert.Empty(t, details.Geohash)
	u, err := url.Parse(details.MapURL)
	require.NoError(t, err)
	assert.Equal(t, "Maihar Lodge, Temple Road", u.Query().Get("query"))
}

func TestGetHotelDetails_FlaggedIsNotBookable(t *testing.T) {
	uc := NewGetHotelDetailsUseCase(loadedSet())

	details, err := uc.Execute(context.Background(), "h3")
	require.NoError(t, err)

	assert.False(t, details.Bookable)
	assert.Empty(t, details.MapURL)
	assert.Empty(t, details.Geohash)
}

func TestGetHotelDetails_NotFound(t *testing.T) {
	uc := NewGetHotelDetailsUseCase(loadedSet())

	for _, id := range []string{"missing", "bad"} {
		_, err := uc.Execute(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrHotelNotFound, id)
	}
}

func TestGetHotelDetails_LoadFailure(t *testing.T) {
	uc := NewGetHotelDetailsUseCase(failedSet())

	_, err := uc.Execute(context.Background(), "h1")
	assert.ErrorIs(t, err, domain.ErrListingsUnavailable)
	assert.False(t, errors.Is(err, domain.ErrHotelNotFound))
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw      string
		lat, lng float64
		ok       bool
	}{
		{"24.2667,80.7567", 24.2667, 80.7567, true},
		{" 24.2667 , 80.7567 ", 24.2667, 80.7567, true},
		{"24.2667", 0, 0, false},
		{"abc,80", 0, 0, false},
		{"95,80", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		lat, lng, ok := parseLocation(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.lat, lat, tt.raw)
		assert.Equal(t, tt.lng, lng, tt.raw)
	}
}

func TestGetFilterOptions_Execute(t *testing.T) {
	opts, err := NewGetFilterOptionsUseCase(loadedSet()).Execute(context.Background())
	require.NoError(t, err)

	assert.True(t, opts.HasRecords)
	assert.Equal(t, 2, opts.Count)
	assert.Equal(t, 300, opts.RentMin)
	assert.Equal(t, 1500, opts.RentMax)

	opts, err = NewGetFilterOptionsUseCase(failedSet()).Execute(context.Background())
	require.NoError(t, err)
	assert.False(t, opts.HasRecords)
	assert.Equal(t, domain.DefaultPriceMax, opts.RentMax)
}

func TestRefreshListings_Success(t *testing.T) {
	ws := loadedSet()
	ws.reload = func() port.Snapshot {
		return port.Snapshot{Records: fixture()[:2], Rejected: 0, Generation: 2}
	}
	cache := &fakeCache{}
	reporter := &fakeReporter{}

	report, err := NewRefreshListingsUseCase(ws, cache, reporter).Execute(context.Background(), "manual")
	require.NoError(t, err)

	assert.Equal(t, 1, ws.reloads)
	assert.Equal(t, []string{constants.WorkingSetCacheKey}, cache.deleted)
	require.Len(t, reporter.reports, 1)
	assert.Same(t, report, reporter.reports[0])

	assert.Equal(t, "manual", report.Reason)
	assert.EqualValues(t, 2, report.Generation)
	assert.Equal(t, 2, report.Loaded)
	assert.False(t, report.Failed)
	assert.Empty(t, report.Error)
	assert.False(t, report.FinishedAt.IsZero())
}

func TestRefreshListings_FailureIsReported(t *testing.T) {
	ws := failedSet()
	ws.reload = func() port.Snapshot { return failedSet().snap }
	reporter := &fakeReporter{err: errors.New("channel closed")}

	report, err := NewRefreshListingsUseCase(ws, &fakeCache{err: errors.New("redis down")}, reporter).
		Execute(context.Background(), "event")
	require.NoError(t, err)

	assert.True(t, report.Failed)
	assert.Contains(t, report.Error, domain.ErrListingsUnavailable.Error())
	assert.Equal(t, 0, report.Loaded)
	assert.Len(t, reporter.reports, 1)
}

func TestRefreshListings_OptionalDependencies(t *testing.T) {
	ws := loadedSet()

	report, err := NewRefreshListingsUseCase(ws, nil, nil).Execute(context.Background(), "startup")
	require.NoError(t, err)
	assert.Equal(t, 1, ws.reloads)
	assert.Equal(t, 4, report.Loaded)
}
