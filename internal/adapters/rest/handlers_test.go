package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/usecase"
	"listing-service/internal/core/workingset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRepo struct {
	records []domain.HotelRecord
	err     error
}

func (r *staticRepo) FetchAll(ctx context.Context) (*domain.FetchResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &domain.FetchResult{Records: r.records, Rejected: 1}, nil
}

type silentLogger struct{}

func (silentLogger) Info(string, port.Fields)                 {}
func (silentLogger) Warn(string, port.Fields)                 {}
func (silentLogger) Error(string, error, port.Fields)         {}
func (silentLogger) Debug(string, port.Fields)                {}
func (l silentLogger) WithFields(port.Fields) port.LoggerPort { return l }

func hotels() []domain.HotelRecord {
	return []domain.HotelRecord{
		{ID: "h1", Name: "Sharda Palace", Address: "Station Road", RentMin: 800, RentMax: 1500,
			RoomType: domain.RoomTypeAC, FoodFacility: domain.AmenityYes, Parking: domain.AmenityYes, Location: "24.2667,80.7567"},
		{ID: "h2", Name: "Maihar Lodge", Address: "Temple Road", RentMin: 300, RentMax: 600,
			RoomType: domain.RoomTypeNonAC, FoodFacility: domain.AmenityNo, Parking: domain.AmenityUnknown},
		{ID: "h3", Name: "Hotel Trikoot", RentMin: 1200, RentMax: 2500,
			RoomType: domain.RoomTypeAC, FoodFacility: domain.AmenityYes, Parking: domain.AmenityNo, IsFlagged: true},
	}
}

func newTestRouter(t *testing.T, repo port.ListingRepositoryPort) http.Handler {
	t.Helper()
	ws, err := workingset.NewWorkingSet(repo)
	require.NoError(t, err)

	handler := NewHotelsHandler(
		usecase.NewQueryListingsUseCase(ws),
		usecase.NewGetListingStatsUseCase(ws),
		usecase.NewGetHotelDetailsUseCase(ws),
		usecase.NewGetFilterOptionsUseCase(ws),
		usecase.NewRefreshListingsUseCase(ws, nil, nil),
		2,
	)
	return NewRouter(handler, []string{"http://localhost:5173"}, silentLogger{})
}

func do(t *testing.T, h http.Handler, method, target string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

func TestQueryListings_DefaultsAndPaging(t *testing.T) {
	router := newTestRouter(t, &staticRepo{records: hotels()})

	var resp HotelsPageResponse
	rec := do(t, router, http.MethodGet, "/api/v1/hotels?sortBy=price_asc", &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, resp.Hotels, 2)
	assert.Equal(t, "h2", resp.Hotels[0].ID)
	assert.Equal(t, "h1", resp.Hotels[1].ID)
	assert.Equal(t, 2, resp.PerPage)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, StatsResponse{Total: 3, Available: 2, Filtered: 2}, resp.Stats)
	assert.Equal(t, 1, resp.RejectedDocuments)
	assert.Empty(t, resp.LoadError)
	assert.NotEmpty(t, rec.Header().Get(contextkeys.TraceIDHeader))
}

func TestQueryListings_FiltersFromQuery(t *testing.T) {
	router := newTestRouter(t, &staticRepo{records: hotels()})

	var resp HotelsPageResponse
	rec := do(t, router, http.MethodGet, "/api/v1/hotels?showFlagged=true&hotelType=ac&search=TRIKOOT&perPage=10", &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, resp.Hotels, 1)
	assert.Equal(t, "h3", resp.Hotels[0].ID)
	assert.True(t, resp.Hotels[0].IsFlagged)
	assert.Equal(t, 10, resp.PerPage)
}

func TestQueryListings_BadRequest(t *testing.T) {
	router := newTestRouter(t, &staticRepo{records: hotels()})

	for _, target := range []string{
		"/api/v1/hotels?page=abc",
		"/api/v1/hotels?page=0",
		"/api/v1/hotels?perPage=0",
		"/api/v1/hotels?perPage=1000",
		"/api/v1/hotels?priceMin=900&priceMax=100",
		"/api/v1/hotels?sortBy=rating",
		"/api/v1/hotels?food=maybe",
		"/api/v1/hotels?showFlagged=sometimes",
	} {
		var resp ErrorResponse
		rec := do(t, router, http.MethodGet, target, &resp)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.NotEmpty(t, resp.Error, target)
	}
}

func TestQueryListings_LoadFailureIsReportedInBody(t *testing.T) {
	router := newTestRouter(t, &staticRepo{err: errors.New("connection refused")})

	var resp HotelsPageResponse
	rec := do(t, router, http.MethodGet, "/api/v1/hotels", &resp)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, resp.Hotels)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Contains(t, resp.LoadError, domain.ErrListingsUnavailable.Error())
}

func TestGetListingStats(t *testing.T) {
	router := newTestRouter(t, &staticRepo{records: hotels()})

	var resp ListingStatsResponse
	rec := do(t, router, http.MethodGet, "/api/v1/hotels/stats?showFlagged=true&page=7", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatsResponse{Total: 3, Available: 2, Filtered: 3}, resp.Stats)
}

func TestGetListingStats_IgnoresPagingParameters(t *testing.T) {
	router := newTestRouter(t, &staticRepo{records: hotels()})

	for _, target := range []string{
		"/api/v1/hotels/stats?perPage=1000",
		"/api/v1/hotels/stats?page=0&perPage=0",
		"/api/v1/hotels/stats?page=abc",
	} {
		var resp ListingStatsResponse
		rec := do(t, router, http.MethodGet, target, &resp)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, StatsResponse{Total: 3, Available: 2, Filtered: 2}, resp.Stats, target)
	}

	rec := do(t, router, http.MethodGet, "/api/v1/hotels?perPage=1000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "listing page still bounds perPage")
}

func TestGetHotelDetails(t *testing.T) {
	router := newTestRouter(t, &staticRepo{records: hotels()})

	var resp HotelDetailsResponse
	rec := do(t, router, http.MethodGet, "/api/v1/hotels/h1", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sharda Palace", resp.Hotel.Name)
	assert.True(t, resp.Bookable)
	assert.True(t, strings.HasPrefix(resp.MapURL, "https://www.google.com/maps/search/"))
	assert.NotEmpty(t, resp.Geohash)

	rec = do(t, router, http.MethodGet, "/api/v1/hotels/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHotelDetails_Unavailable(t *testing.T) {
	router := newTestRouter(t, &staticRepo{err: errors.New("timeout")})

	rec := do(t, router, http.MethodGet, "/api/v1/hotels/h1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetFilterOptions(t *testing.T) {
	router := newTestRouter(t, &staticRepo{records: hotels()})

	var resp FilterOptionsResponse
	rec := do(t, router, http.MethodGet, "/api/v1/filters/options", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.HasRecords)
	assert.Equal(t, 300, resp.RentMin)
}

func TestRefreshListings(t *testing.T) {
	router := newTestRouter(t, &staticRepo{records: hotels()})

	var resp RefreshReportResponse
	rec := do(t, router, http.MethodPost, "/api/v1/hotels/refresh", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, refreshReasonManual, resp.Reason)
	assert.Equal(t, 3, resp.Loaded)
	assert.False(t, resp.Failed)

	router = newTestRouter(t, &staticRepo{err: errors.New("timeout")})
	rec = do(t, router, http.MethodPost, "/api/v1/hotels/refresh", &resp)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.True(t, resp.Failed)
}

func TestHealthAndTraceHeader(t *testing.T) {
	router := newTestRouter(t, &staticRepo{})

	const traceID = "5f0c6f0e-8f8e-4e0b-9a53-3b1f3e0a9b11"
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(contextkeys.TraceIDHeader, traceID)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, traceID, rec.Header().Get(contextkeys.TraceIDHeader))
}
