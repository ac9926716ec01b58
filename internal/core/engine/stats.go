package engine

import "listing-service/internal/core/domain"

// ComputeStats считает total/available по всему набору и filtered после всех фильтров.
func ComputeStats(records []domain.HotelRecord, filters domain.FilterState) domain.ListingStats {
	return domain.ListingStats{
		Total:     len(records),
		Available: countAvailable(records),
		Filtered:  len(ApplyFilters(records, filters)),
	}
}

func countAvailable(records []domain.HotelRecord) int {
	n := 0
	for i := range records {
		if !records[i].IsFlagged {
			n++
		}
	}
	return n
}
