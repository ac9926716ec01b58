package engine

import "listing-service/internal/core/domain"

// ValidateRecord - проверка формы одной записи.
func ValidateRecord(r domain.HotelRecord) error {
	return r.Validate()
}

// Partition отделяет корректные записи от некорректных; вторые только считаются.
func Partition(records []domain.HotelRecord) (valid []domain.HotelRecord, skipped int) {
	valid = make([]domain.HotelRecord, 0, len(records))
	for _, r := range records {
		if err := ValidateRecord(r); err != nil {
			skipped++
			continue
		}
		valid = append(valid, r)
	}
	return valid, skipped
}

// Query - полный проход: фильтры -> сортировка -> страница -> счётчики.
// Счётчики совпадают с ComputeStats(valid, filters): некорректные записи
// попадают только в Skipped и в total не входят.
func Query(records []domain.HotelRecord, filters domain.FilterState) (domain.QueryResult, error) {
	if err := filters.Validate(); err != nil {
		return domain.QueryResult{}, err
	}

	valid, skipped := Partition(records)

	filtered := ApplyFilters(valid, filters)
	sorted := SortRecords(filtered, filters.SortBy)

	page, err := Paginate(sorted, filters.Page, filters.PageSize)
	if err != nil {
		return domain.QueryResult{}, err
	}

	return domain.QueryResult{
		Page: page.Records,
		Stats: domain.ListingStats{
			Total:     len(valid),
			Available: countAvailable(valid),
			Filtered:  len(filtered),
		},
		TotalPages: page.TotalPages,
		Skipped:    skipped,
	}, nil
}
