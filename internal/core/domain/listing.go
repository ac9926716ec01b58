package domain

import "time"

// ListingStats - счётчики по рабочему набору. Не хранится, пересчитывается на каждый запрос.
type ListingStats struct {
	Total     int
	Available int
	Filtered  int
}

// PageResult - одна страница отсортированной выдачи.
type PageResult struct {
	Records    []HotelRecord
	TotalPages int
}

// QueryResult - результат полного прохода движка.
type QueryResult struct {
	Page       []HotelRecord
	Stats      ListingStats
	TotalPages int
	// Skipped - записи, исключённые как некорректные.
	Skipped int
}

// ListingPage - то, что use case отдаёт наружу: результат движка плюс состояние загрузки.
type ListingPage struct {
	QueryResult
	CurrentPage  int
	ItemsPerPage int
	Rejected     int
	// LoadErr != nil означает, что рабочий набор загрузить не удалось и он пуст.
	LoadErr error
}

// ListingStatsView - только счётчики, без страницы.
type ListingStatsView struct {
	Stats    ListingStats
	Skipped  int
	Rejected int
	LoadErr  error
}

// FilterOptions - границы и счётчики для построения формы фильтров.
type FilterOptions struct {
	RentMin    int
	RentMax    int
	RoomTypes  map[RoomType]int
	Food       map[Amenity]int
	Parking    map[Amenity]int
	Count      int
	HasRecords bool
}

// HotelDetails - детальная карточка.
type HotelDetails struct {
	Hotel    HotelRecord
	MapURL   string
	Geohash  string
	Bookable bool
}

// RefreshReport - итог перезагрузки рабочего набора.
type RefreshReport struct {
	Reason     string
	Generation uint64
	Loaded     int
	Rejected   int
	Failed     bool
	Error      string
	FinishedAt time.Time
}
