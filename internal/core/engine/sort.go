package engine

import (
	"cmp"
	"slices"

	"listing-service/internal/core/domain"
)

type sortItem struct {
	key    string
	record domain.HotelRecord
}

// SortRecords возвращает новый, стабильно отсортированный срез.
// При равенстве ключей сохраняется исходный порядок.
func SortRecords(records []domain.HotelRecord, sortBy domain.SortBy) []domain.HotelRecord {
	items := make([]sortItem, len(records))
	for i, r := range records {
		items[i] = sortItem{record: r}
		if sortBy == domain.SortNameAsc {
			items[i].key = domain.NormalizeName(r.Name)
		}
	}

	switch sortBy {
	case domain.SortNameAsc:
		slices.SortStableFunc(items, func(a, b sortItem) int {
			return cmp.Compare(a.key, b.key)
		})
	case domain.SortPriceAsc:
		slices.SortStableFunc(items, func(a, b sortItem) int {
			return comparePrice(a.record, b.record)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(items, func(a, b sortItem) int {
			return comparePrice(b.record, a.record)
		})
	}

	result := make([]domain.HotelRecord, len(items))
	for i, it := range items {
		result[i] = it.record
	}
	return result
}

func comparePrice(a, b domain.HotelRecord) int {
	if c := cmp.Compare(a.RentMin, b.RentMin); c != 0 {
		return c
	}
	return cmp.Compare(a.RentMax, b.RentMax)
}
