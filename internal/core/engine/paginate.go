package engine

import "listing-service/internal/core/domain"

// Paginate режет срез на страницы. Всегда есть хотя бы одна страница,
// страница за пределами диапазона - пустая, а не ошибка.
func Paginate(records []domain.HotelRecord, page, pageSize int) (domain.PageResult, error) {
	if pageSize <= 0 {
		return domain.PageResult{}, &domain.ValidationError{Field: "pageSize", Err: domain.ErrInvalidPageSize}
	}
	if page < 1 {
		return domain.PageResult{}, &domain.ValidationError{Field: "page", Err: domain.ErrInvalidPage}
	}

	totalPages := (len(records) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	result := domain.PageResult{
		Records:    []domain.HotelRecord{},
		TotalPages: totalPages,
	}
	if page > totalPages {
		return result, nil
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(records))
	result.Records = append(result.Records, records[start:end]...)
	return result, nil
}
