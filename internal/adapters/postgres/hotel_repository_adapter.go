package postgres

import (
	"context"
	"fmt"
	"strings"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/jackc/pgx/v5"
)

// Querier - часть *pgxpool.Pool, нужная адаптеру.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// HotelRepositoryAdapter читает карточки из таблицы hotels. Удобства и тип номеров
// хранятся там свободным текстом и нормализуются при чтении.
type HotelRepositoryAdapter struct {
	pool Querier
}

func NewHotelRepositoryAdapter(pool Querier) (*HotelRepositoryAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("HotelRepositoryAdapter: pool cannot be nil")
	}
	return &HotelRepositoryAdapter{pool: pool}, nil
}

const selectHotelsQuery = `SELECT id, name, COALESCE(address, ''), COALESCE(contact, ''),
       rent_min, rent_max, COALESCE(room_type, ''), COALESCE(food_facility, ''), COALESCE(parking, ''),
       is_flagged, COALESCE(details, ''), COALESCE(location, '')
  FROM hotels
 ORDER BY id`

// hotelRow - строка таблицы до нормализации.
type hotelRow struct {
	ID           string
	Name         string
	Address      string
	Contact      string
	RentMin      int
	RentMax      int
	RoomType     string
	FoodFacility string
	Parking      string
	IsFlagged    bool
	Details      string
	Location     string
}

func (r hotelRow) toDomain() domain.HotelRecord {
	roomType, _ := domain.ParseRoomType(r.RoomType)
	return domain.HotelRecord{
		ID:           r.ID,
		Name:         strings.TrimSpace(r.Name),
		Address:      strings.TrimSpace(r.Address),
		Contact:      strings.TrimSpace(r.Contact),
		RentMin:      r.RentMin,
		RentMax:      r.RentMax,
		RoomType:     roomType,
		FoodFacility: domain.ParseAmenity(r.FoodFacility),
		Parking:      domain.ParseAmenity(r.Parking),
		IsFlagged:    r.IsFlagged,
		Details:      r.Details,
		Location:     strings.TrimSpace(r.Location),
	}
}

// FetchAll возвращает весь рабочий набор. Схема таблицы уже гарантирует форму строк,
// поэтому Rejected здесь всегда 0; некорректные значения отсеет движок.
func (a *HotelRepositoryAdapter) FetchAll(ctx context.Context) (*domain.FetchResult, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "HotelRepositoryAdapter",
		"method":    "FetchAll",
	})

	rows, err := a.pool.Query(ctx, selectHotelsQuery)
	if err != nil {
		repoLogger.Error("Failed to query hotels", err, nil)
		return nil, fmt.Errorf("HotelRepositoryAdapter: failed to query hotels: %w", err)
	}
	defer rows.Close()

	records := []domain.HotelRecord{}
	for rows.Next() {
		var row hotelRow
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Address, &row.Contact,
			&row.RentMin, &row.RentMax, &row.RoomType, &row.FoodFacility, &row.Parking,
			&row.IsFlagged, &row.Details, &row.Location,
		); err != nil {
			return nil, fmt.Errorf("HotelRepositoryAdapter: failed to scan hotel: %w", err)
		}
		records = append(records, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("HotelRepositoryAdapter: error during hotel rows iteration: %w", err)
	}

	repoLogger.Info("Hotels loaded", port.Fields{"records": len(records)})
	return &domain.FetchResult{Records: records}, nil
}
