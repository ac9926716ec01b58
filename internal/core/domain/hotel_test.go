package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmenity(t *testing.T) {
	tests := map[string]Amenity{
		"Yes":            AmenityYes,
		" yes ":          AmenityYes,
		"AVAILABLE":      AmenityYes,
		"Haan":           AmenityYes,
		"no":             AmenityNo,
		"Not  Available": AmenityNo,
		"NAHI":           AmenityNo,
		"":               AmenityUnknown,
		"on request":     AmenityUnknown,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseAmenity(raw), "raw=%q", raw)
	}
}

func TestParseRoomType(t *testing.T) {
	tests := []struct {
		raw  string
		want RoomType
		ok   bool
	}{
		{"AC", RoomTypeAC, true},
		{"a/c", RoomTypeAC, true},
		{"Non AC", RoomTypeNonAC, true},
		{"NON_AC", RoomTypeNonAC, true},
		{"Both", RoomTypeBoth, true},
		{"AC & Non AC", RoomTypeBoth, true},
		{"deluxe", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRoomType(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestHotelRecordValidate(t *testing.T) {
	valid := HotelRecord{
		ID: "h1", Name: "Sharda Palace", RentMin: 0, RentMax: 0,
		RoomType: RoomTypeAC, FoodFacility: AmenityYes, Parking: AmenityUnknown,
	}
	require.NoError(t, valid.Validate())

	broken := []func(r *HotelRecord){
		func(r *HotelRecord) { r.ID = "" },
		func(r *HotelRecord) { r.Name = " " },
		func(r *HotelRecord) { r.RentMin = -1 },
		func(r *HotelRecord) { r.RentMin, r.RentMax = 10, 5 },
		func(r *HotelRecord) { r.RoomType = "" },
		func(r *HotelRecord) { r.Parking = "" },
	}
	for i, mutate := range broken {
		r := valid
		mutate(&r)
		assert.ErrorIs(t, r.Validate(), ErrMalformedRecord, "case %d", i)
	}
}

func TestFilterStateValidate(t *testing.T) {
	require.NoError(t, DefaultFilterState().Validate())

	f := DefaultFilterState()
	f.PriceMin, f.PriceMax = 900, 100
	err := f.Validate()
	require.ErrorIs(t, err, ErrInvalidPriceRange)
	assert.Equal(t, "invalid priceMin: price min must not exceed price max", err.Error())

	f = DefaultFilterState()
	f.PriceMin, f.PriceMax = -50, -10
	assert.NoError(t, f.Validate())
}
