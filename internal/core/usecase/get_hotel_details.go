package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/engine"
	"listing-service/internal/core/port"

	"github.com/mmcloughlin/geohash"
)

const (
	mapsSearchURL = "https://www.google.com/maps/search/"
	// 7 символов - квадрат примерно 150x150 м, достаточно, чтобы сгруппировать соседние гостиницы
	geohashPrecision = 7
)

type GetHotelDetailsUseCase struct {
	workingSet port.WorkingSetPort
}

func NewGetHotelDetailsUseCase(workingSet port.WorkingSetPort) *GetHotelDetailsUseCase {
	return &GetHotelDetailsUseCase{workingSet: workingSet}
}

// Execute ищет карточку по ID среди корректных записей, в том числе скрытых.
// Скрытые карточки отдаются, но с Bookable = false.
func (uc *GetHotelDetailsUseCase) Execute(ctx context.Context, hotelID string) (*domain.HotelDetails, error) {
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "GetHotelDetails",
		"hotel_id": hotelID,
	})
	ucLogger.Info("Use case started", nil)

	snap := uc.workingSet.Current(ctx)
	valid, _ := engine.Partition(snap.Records)

	for _, r := range valid {
		if r.ID != hotelID {
			continue
		}

		details := &domain.HotelDetails{
			Hotel:    r,
			Bookable: !r.IsFlagged,
		}
		if lat, lng, ok := parseLocation(r.Location); ok {
			details.Geohash = geohash.EncodeWithPrecision(lat, lng, geohashPrecision)
			details.MapURL = mapsLink(fmt.Sprintf("%s,%s", formatCoord(lat), formatCoord(lng)))
		} else if r.Address != "" {
			details.MapURL = mapsLink(r.Name + ", " + r.Address)
		}

		ucLogger.Info("Use case finished successfully", port.Fields{"bookable": details.Bookable})
		return details, nil
	}

	if snap.LoadErr != nil {
		ucLogger.Warn("Listings unavailable", port.Fields{"error": snap.LoadErr.Error()})
		return nil, snap.LoadErr
	}

	ucLogger.Info("Hotel not found", nil)
	return nil, fmt.Errorf("hotel %s: %w", hotelID, domain.ErrHotelNotFound)
}

// parseLocation разбирает строку "lat,long". Координаты вне допустимых диапазонов считаются отсутствующими.
func parseLocation(raw string) (lat, lng float64, ok bool) {
	latRaw, lngRaw, found := strings.Cut(raw, ",")
	if !found {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
	if err != nil {
		return 0, 0, false
	}

	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, false
	}
	return lat, lng, true
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func mapsLink(query string) string {
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", query)
	return mapsSearchURL + "?" + q.Encode()
}
