package domain

// HotelTypeFilter - фильтр по типу номеров.
type HotelTypeFilter string

const (
	HotelTypeAll   HotelTypeFilter = "ALL"
	HotelTypeAC    HotelTypeFilter = "AC"
	HotelTypeNonAC HotelTypeFilter = "NON_AC"
)

// AmenityFilter - фильтр по наличию удобства.
type AmenityFilter string

const (
	AmenityFilterAll AmenityFilter = "ALL"
	AmenityFilterYes AmenityFilter = "YES"
	AmenityFilterNo  AmenityFilter = "NO"
)

// SortBy - порядок выдачи.
type SortBy string

const (
	SortNameAsc   SortBy = "NAME_ASC"
	SortPriceAsc  SortBy = "PRICE_ASC"
	SortPriceDesc SortBy = "PRICE_DESC"
)

const (
	DefaultPriceMin = 0
	DefaultPriceMax = 2000
	DefaultPageSize = 25
)

// FilterState - выбранные пользователем параметры поиска.
// Передаётся по значению в каждый запрос, движок его не меняет.
type FilterState struct {
	SearchText       string
	PriceMin         int
	PriceMax         int
	HotelType        HotelTypeFilter
	FoodAvailable    AmenityFilter
	ParkingAvailable AmenityFilter
	ShowFlagged      bool
	SortBy           SortBy
	Page             int
	PageSize         int
}

// DefaultFilterState возвращает фильтры "по умолчанию": весь диапазон цен, без скрытых карточек, первая страница.
func DefaultFilterState() FilterState {
	return FilterState{
		PriceMin:         DefaultPriceMin,
		PriceMax:         DefaultPriceMax,
		HotelType:        HotelTypeAll,
		FoodAvailable:    AmenityFilterAll,
		ParkingAvailable: AmenityFilterAll,
		SortBy:           SortNameAsc,
		Page:             1,
		PageSize:         DefaultPageSize,
	}
}

// Validate проверяет фильтры на границе вызова. Значения не исправляются молча.
func (f FilterState) Validate() error {
	if f.PageSize <= 0 {
		return &ValidationError{Field: "pageSize", Err: ErrInvalidPageSize}
	}
	if f.Page < 1 {
		return &ValidationError{Field: "page", Err: ErrInvalidPage}
	}
	if f.PriceMin > f.PriceMax {
		return &ValidationError{Field: "priceMin", Err: ErrInvalidPriceRange}
	}
	switch f.HotelType {
	case HotelTypeAll, HotelTypeAC, HotelTypeNonAC:
	default:
		return &ValidationError{Field: "hotelType", Err: ErrInvalidHotelType}
	}
	if !f.FoodAvailable.valid() {
		return &ValidationError{Field: "foodAvailable", Err: ErrInvalidAmenityFilter}
	}
	if !f.ParkingAvailable.valid() {
		return &ValidationError{Field: "parkingAvailable", Err: ErrInvalidAmenityFilter}
	}
	if !f.SortBy.Valid() {
		return &ValidationError{Field: "sortBy", Err: ErrInvalidSort}
	}
	return nil
}

func (a AmenityFilter) valid() bool {
	switch a {
	case AmenityFilterAll, AmenityFilterYes, AmenityFilterNo:
		return true
	}
	return false
}

func (s SortBy) Valid() bool {
	switch s {
	case SortNameAsc, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}
