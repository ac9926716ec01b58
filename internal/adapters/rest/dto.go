package rest

import (
	"time"

	"listing-service/internal/core/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type HotelResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	Contact      string `json:"contact,omitempty"`
	RentMin      int    `json:"rent_min"`
	RentMax      int    `json:"rent_max"`
	RoomType     string `json:"room_type"`
	FoodFacility string `json:"food_facility"`
	Parking      string `json:"parking"`
	IsFlagged    bool   `json:"is_flagged"`
	Details      string `json:"details,omitempty"`
	Location     string `json:"location,omitempty"`
}

type StatsResponse struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Filtered  int `json:"filtered"`
}

type HotelsPageResponse struct {
	Hotels            []HotelResponse `json:"hotels"`
	TotalPages        int             `json:"total_pages"`
	Page              int             `json:"page"`
	PerPage           int             `json:"per_page"`
	Stats             StatsResponse   `json:"stats"`
	InvalidRecords    int             `json:"invalid_records"`
	RejectedDocuments int             `json:"rejected_documents"`
	LoadError         string          `json:"load_error,omitempty"`
}

type ListingStatsResponse struct {
	Stats             StatsResponse `json:"stats"`
	InvalidRecords    int           `json:"invalid_records"`
	RejectedDocuments int           `json:"rejected_documents"`
	LoadError         string        `json:"load_error,omitempty"`
}

type HotelDetailsResponse struct {
	Hotel    HotelResponse `json:"hotel"`
	MapURL   string        `json:"map_url,omitempty"`
	Geohash  string        `json:"geohash,omitempty"`
	Bookable bool          `json:"bookable"`
}

type FilterOptionsResponse struct {
	RentMin    int            `json:"rent_min"`
	RentMax    int            `json:"rent_max"`
	RoomTypes  map[string]int `json:"room_types"`
	Food       map[string]int `json:"food"`
	Parking    map[string]int `json:"parking"`
	Count      int            `json:"count"`
	HasRecords bool           `json:"has_records"`
}

type RefreshReportResponse struct {
	Reason     string    `json:"reason"`
	Generation uint64    `json:"generation"`
	Loaded     int       `json:"loaded"`
	Rejected   int       `json:"rejected"`
	Failed     bool      `json:"failed"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

func toHotelResponse(h domain.HotelRecord) HotelResponse {
	return HotelResponse{
		ID:           h.ID,
		Name:         h.Name,
		Address:      h.Address,
		Contact:      h.Contact,
		RentMin:      h.RentMin,
		RentMax:      h.RentMax,
		RoomType:     string(h.RoomType),
		FoodFacility: string(h.FoodFacility),
		Parking:      string(h.Parking),
		IsFlagged:    h.IsFlagged,
		Details:      h.Details,
		Location:     h.Location,
	}
}

func toStatsResponse(s domain.ListingStats) StatsResponse {
	return StatsResponse{Total: s.Total, Available: s.Available, Filtered: s.Filtered}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func countsByKey[K ~string](m map[K]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
