// Package engine - чистые функции поиска, фильтрации, сортировки и пагинации карточек гостиниц.
// Никакого I/O и общего состояния: все функции только читают входы и возвращают новые срезы,
// поэтому их можно вызывать конкурентно.
package engine

import (
	"strings"

	"listing-service/internal/core/domain"
)

// predicate - проверка одной группы фильтров.
type predicate func(r *domain.HotelRecord) bool

// ApplyFilters возвращает записи, прошедшие все предикаты, в исходном порядке.
func ApplyFilters(records []domain.HotelRecord, filters domain.FilterState) []domain.HotelRecord {
	preds := buildPredicates(filters)

	result := make([]domain.HotelRecord, 0, len(records))
	for i := range records {
		if matchesAll(&records[i], preds) {
			result = append(result, records[i])
		}
	}
	return result
}

func matchesAll(r *domain.HotelRecord, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

func buildPredicates(filters domain.FilterState) []predicate {
	return []predicate{
		flagPredicate(filters.ShowFlagged),
		searchPredicate(filters.SearchText),
		pricePredicate(filters.PriceMin, filters.PriceMax),
		hotelTypePredicate(filters.HotelType),
		amenityPredicate(filters.FoodAvailable, func(r *domain.HotelRecord) domain.Amenity { return r.FoodFacility }),
		amenityPredicate(filters.ParkingAvailable, func(r *domain.HotelRecord) domain.Amenity { return r.Parking }),
	}
}

func flagPredicate(showFlagged bool) predicate {
	return func(r *domain.HotelRecord) bool {
		return showFlagged || !r.IsFlagged
	}
}

// searchPredicate - подстрока без учёта регистра, не по токенам.
func searchPredicate(searchText string) predicate {
	if searchText == "" {
		return func(*domain.HotelRecord) bool { return true }
	}
	needle := domain.NormalizeName(searchText)
	return func(r *domain.HotelRecord) bool {
		return strings.Contains(domain.NormalizeName(r.Name), needle)
	}
}

// pricePredicate - диапазон записи пересекается с диапазоном фильтра.
func pricePredicate(priceMin, priceMax int) predicate {
	return func(r *domain.HotelRecord) bool {
		return r.RentMin <= priceMax && r.RentMax >= priceMin
	}
}

func hotelTypePredicate(hotelType domain.HotelTypeFilter) predicate {
	return func(r *domain.HotelRecord) bool {
		if hotelType == domain.HotelTypeAll || r.RoomType == domain.RoomTypeBoth {
			return true
		}
		return string(r.RoomType) == string(hotelType)
	}
}

// amenityPredicate: UNKNOWN никогда не совпадает с YES/NO.
func amenityPredicate(filter domain.AmenityFilter, field func(r *domain.HotelRecord) domain.Amenity) predicate {
	return func(r *domain.HotelRecord) bool {
		if filter == domain.AmenityFilterAll {
			return true
		}
		return string(field(r)) == string(filter)
	}
}
