package engine

import "listing-service/internal/core/domain"

// BuildFilterOptions собирает границы цены и счётчики по доступным (не скрытым) записям.
// Некорректные записи не учитываются.
func BuildFilterOptions(records []domain.HotelRecord) domain.FilterOptions {
	opts := domain.FilterOptions{
		RoomTypes: make(map[domain.RoomType]int),
		Food:      make(map[domain.Amenity]int),
		Parking:   make(map[domain.Amenity]int),
	}

	valid, _ := Partition(records)
	for _, r := range valid {
		if r.IsFlagged {
			continue
		}
		if !opts.HasRecords {
			opts.RentMin, opts.RentMax = r.RentMin, r.RentMax
			opts.HasRecords = true
		}
		opts.RentMin = min(opts.RentMin, r.RentMin)
		opts.RentMax = max(opts.RentMax, r.RentMax)

		opts.RoomTypes[r.RoomType]++
		opts.Food[r.FoodFacility]++
		opts.Parking[r.Parking]++
		opts.Count++
	}

	// Без данных отдаём диапазон по умолчанию, чтобы слайдер цены было из чего строить
	if !opts.HasRecords {
		opts.RentMin, opts.RentMax = domain.DefaultPriceMin, domain.DefaultPriceMax
	}
	return opts
}
