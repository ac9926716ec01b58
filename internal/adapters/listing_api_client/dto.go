package listing_api_client

import (
	"encoding/json"
	"strconv"
	"strings"

	"listing-service/internal/core/domain"
)

// HotelDocument - документ коллекции гостиниц в том виде, в котором его отдаёт API.
type HotelDocument struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Address      string          `json:"address"`
	Contact      json.RawMessage `json:"contact"`
	RentMin      int             `json:"rentMin"`
	RentMax      int             `json:"rentMax"`
	RoomType     string          `json:"roomType"`
	FoodFacility json.RawMessage `json:"foodFacility"`
	Parking      json.RawMessage `json:"parking"`
	IsFlagged    bool            `json:"isFlagged"`
	Details      string          `json:"details"`
	Location     string          `json:"location"`
}

// toDomain нормализует свободный текст в перечисления.
// Нераспознанный тип номеров остаётся пустым: движок посчитает такую запись некорректной.
func (d HotelDocument) toDomain() domain.HotelRecord {
	roomType, _ := domain.ParseRoomType(d.RoomType)

	return domain.HotelRecord{
		ID:           d.ID,
		Name:         strings.TrimSpace(d.Name),
		Address:      strings.TrimSpace(d.Address),
		Contact:      rawText(d.Contact),
		RentMin:      d.RentMin,
		RentMax:      d.RentMax,
		RoomType:     roomType,
		FoodFacility: domain.ParseAmenity(rawText(d.FoodFacility)),
		Parking:      domain.ParseAmenity(rawText(d.Parking)),
		IsFlagged:    d.IsFlagged,
		Details:      d.Details,
		Location:     strings.TrimSpace(d.Location),
	}
}

// rawText приводит строку/число/bool из JSON к тексту; null и отсутствие поля дают "".
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
