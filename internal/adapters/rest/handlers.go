package rest

import (
	"errors"
	"fmt"
	"net/http"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

const (
	maxPerPage          = 100
	refreshReasonManual = "manual"
)

type HotelsHandler struct {
	queryListingsUC    usecases_port.QueryListingsUseCase
	getListingStatsUC  usecases_port.GetListingStatsUseCase
	getHotelDetailsUC  usecases_port.GetHotelDetailsUseCase
	getFilterOptionsUC usecases_port.GetFilterOptionsUseCase
	refreshListingsUC  usecases_port.RefreshListingsUseCase
	defaultPageSize    int
}

func NewHotelsHandler(
	queryListingsUC usecases_port.QueryListingsUseCase,
	getListingStatsUC usecases_port.GetListingStatsUseCase,
	getHotelDetailsUC usecases_port.GetHotelDetailsUseCase,
	getFilterOptionsUC usecases_port.GetFilterOptionsUseCase,
	refreshListingsUC usecases_port.RefreshListingsUseCase,
	defaultPageSize int,
) *HotelsHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = domain.DefaultPageSize
	}
	return &HotelsHandler{
		queryListingsUC:    queryListingsUC,
		getListingStatsUC:  getListingStatsUC,
		getHotelDetailsUC:  getHotelDetailsUC,
		getFilterOptionsUC: getFilterOptionsUC,
		refreshListingsUC:  refreshListingsUC,
		defaultPageSize:    defaultPageSize,
	}
}

// parseFilters собирает FilterState из query-параметров поверх значений по умолчанию.
// page/perPage сюда не входят, их читает parsePaging.
// Допустимость значений проверяет уже FilterState.Validate в use case.
func (h *HotelsHandler) parseFilters(r *http.Request) (domain.FilterState, error) {
	query := r.URL.Query()
	filters := domain.DefaultFilterState()
	filters.PageSize = h.defaultPageSize

	var err error
	filters.SearchText = query.Get("search")
	if filters.PriceMin, err = parseInt(query, "priceMin", filters.PriceMin); err != nil {
		return filters, err
	}
	if filters.PriceMax, err = parseInt(query, "priceMax", filters.PriceMax); err != nil {
		return filters, err
	}
	if filters.ShowFlagged, err = parseBool(query, "showFlagged", filters.ShowFlagged); err != nil {
		return filters, err
	}

	filters.HotelType = domain.HotelTypeFilter(parseEnum(query, "hotelType", string(filters.HotelType)))
	filters.FoodAvailable = domain.AmenityFilter(parseEnum(query, "food", string(filters.FoodAvailable)))
	filters.ParkingAvailable = domain.AmenityFilter(parseEnum(query, "parking", string(filters.ParkingAvailable)))
	filters.SortBy = domain.SortBy(parseEnum(query, "sortBy", string(filters.SortBy)))

	return filters, nil
}

// parsePaging читает page/perPage. Нужен только там, где ответ постраничный.
func parsePaging(r *http.Request, filters *domain.FilterState) error {
	query := r.URL.Query()

	var err error
	if filters.Page, err = parseInt(query, "page", filters.Page); err != nil {
		return err
	}
	if filters.PageSize, err = parseInt(query, "perPage", filters.PageSize); err != nil {
		return err
	}
	if filters.PageSize > maxPerPage {
		return fmt.Errorf("invalid perPage: must not exceed %d", maxPerPage)
	}
	return nil
}

// QueryListings обрабатывает GET /api/v1/hotels
func (h *HotelsHandler) QueryListings(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "QueryListings"})

	filters, err := h.parseFilters(r)
	if err == nil {
		err = parsePaging(r, &filters)
	}
	if err != nil {
		handlerLogger.Warn("Invalid query parameters", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.queryListingsUC.Execute(r.Context(), filters)
	if err != nil {
		h.writeUseCaseError(w, handlerLogger, err)
		return
	}

	response := HotelsPageResponse{
		Hotels:            make([]HotelResponse, len(page.Page)),
		TotalPages:        page.TotalPages,
		Page:              page.CurrentPage,
		PerPage:           page.ItemsPerPage,
		Stats:             toStatsResponse(page.Stats),
		InvalidRecords:    page.Skipped,
		RejectedDocuments: page.Rejected,
		LoadError:         errorText(page.LoadErr),
	}
	for i, hotel := range page.Page {
		response.Hotels[i] = toHotelResponse(hotel)
	}

	handlerLogger.Debug("Listings page served", port.Fields{"items_on_page": len(response.Hotels), "filtered": response.Stats.Filtered})
	RespondWithJSON(w, http.StatusOK, response)
}

// GetListingStats обрабатывает GET /api/v1/hotels/stats
func (h *HotelsHandler) GetListingStats(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetListingStats"})

	filters, err := h.parseFilters(r)
	if err != nil {
		handlerLogger.Warn("Invalid query parameters", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.getListingStatsUC.Execute(r.Context(), filters)
	if err != nil {
		h.writeUseCaseError(w, handlerLogger, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, ListingStatsResponse{
		Stats:             toStatsResponse(view.Stats),
		InvalidRecords:    view.Skipped,
		RejectedDocuments: view.Rejected,
		LoadError:         errorText(view.LoadErr),
	})
}

// GetHotelDetails обрабатывает GET /api/v1/hotels/{hotelID}
func (h *HotelsHandler) GetHotelDetails(w http.ResponseWriter, r *http.Request) {
	hotelID := chi.URLParam(r, "hotelID")
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":  "GetHotelDetails",
		"hotel_id": hotelID,
	})

	details, err := h.getHotelDetailsUC.Execute(r.Context(), hotelID)
	if err != nil {
		h.writeUseCaseError(w, handlerLogger, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, HotelDetailsResponse{
		Hotel:    toHotelResponse(details.Hotel),
		MapURL:   details.MapURL,
		Geohash:  details.Geohash,
		Bookable: details.Bookable,
	})
}

// GetFilterOptions обрабатывает GET /api/v1/filters/options
func (h *HotelsHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetFilterOptions"})

	opts, err := h.getFilterOptionsUC.Execute(r.Context())
	if err != nil {
		h.writeUseCaseError(w, handlerLogger, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, FilterOptionsResponse{
		RentMin:    opts.RentMin,
		RentMax:    opts.RentMax,
		RoomTypes:  countsByKey(opts.RoomTypes),
		Food:       countsByKey(opts.Food),
		Parking:    countsByKey(opts.Parking),
		Count:      opts.Count,
		HasRecords: opts.HasRecords,
	})
}

// RefreshListings обрабатывает POST /api/v1/hotels/refresh
func (h *HotelsHandler) RefreshListings(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RefreshListings"})

	report, err := h.refreshListingsUC.Execute(r.Context(), refreshReasonManual)
	if err != nil {
		h.writeUseCaseError(w, handlerLogger, err)
		return
	}

	status := http.StatusOK
	if report.Failed {
		status = http.StatusServiceUnavailable
	}
	RespondWithJSON(w, status, RefreshReportResponse{
		Reason:     report.Reason,
		Generation: report.Generation,
		Loaded:     report.Loaded,
		Rejected:   report.Rejected,
		Failed:     report.Failed,
		Error:      report.Error,
		FinishedAt: report.FinishedAt,
	})
}

func Health(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeUseCaseError переводит доменные ошибки в HTTP-статусы
func (h *HotelsHandler) writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	switch {
	case domain.IsValidationError(err):
		logger.Warn("Invalid filters", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrHotelNotFound):
		logger.Info("Hotel not found", nil)
		WriteJSONError(w, http.StatusNotFound, "Hotel not found")
	case errors.Is(err, domain.ErrListingsUnavailable):
		logger.Error("Listings unavailable", err, nil)
		WriteJSONError(w, http.StatusServiceUnavailable, domain.ErrListingsUnavailable.Error())
	default:
		logger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
