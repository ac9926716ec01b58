package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RoomType - тип номеров в гостинице.
type RoomType string

const (
	RoomTypeAC    RoomType = "AC"
	RoomTypeNonAC RoomType = "NON_AC"
	RoomTypeBoth  RoomType = "BOTH"
)

func (t RoomType) Valid() bool {
	switch t {
	case RoomTypeAC, RoomTypeNonAC, RoomTypeBoth:
		return true
	}
	return false
}

// Amenity - нормализованное значение удобства (питание, парковка).
type Amenity string

const (
	AmenityYes     Amenity = "YES"
	AmenityNo      Amenity = "NO"
	AmenityUnknown Amenity = "UNKNOWN"
)

func (a Amenity) Valid() bool {
	switch a {
	case AmenityYes, AmenityNo, AmenityUnknown:
		return true
	}
	return false
}

// HotelRecord - одна карточка гостиницы в том виде, в котором её отдаёт репозиторий.
type HotelRecord struct {
	ID           string
	Name         string
	Address      string
	Contact      string
	RentMin      int
	RentMax      int
	RoomType     RoomType
	FoodFacility Amenity
	Parking      Amenity
	IsFlagged    bool
	Details      string
	Location     string // "lat,long", используется только для ссылки на карту
}

// Validate проверяет форму записи. Ошибка всегда оборачивает ErrMalformedRecord.
func (r HotelRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: empty id", ErrMalformedRecord)
	case strings.TrimSpace(r.Name) == "":
		return fmt.Errorf("%w: hotel %s has empty name", ErrMalformedRecord, r.ID)
	case r.RentMin < 0 || r.RentMin > r.RentMax:
		return fmt.Errorf("%w: hotel %s has rent range [%d, %d]", ErrMalformedRecord, r.ID, r.RentMin, r.RentMax)
	case !r.RoomType.Valid():
		return fmt.Errorf("%w: hotel %s has room type %q", ErrMalformedRecord, r.ID, r.RoomType)
	case !r.FoodFacility.Valid() || !r.Parking.Valid():
		return fmt.Errorf("%w: hotel %s has unknown amenity value", ErrMalformedRecord, r.ID)
	}
	return nil
}

// FetchResult - рабочий набор, полученный из репозитория.
type FetchResult struct {
	Records []HotelRecord
	// Rejected - документы, отброшенные ещё на уровне репозитория (не прошли схему).
	Rejected int
}

var amenityYes = map[string]struct{}{
	"yes": {}, "y": {}, "available": {}, "true": {}, "1": {}, "haan": {}, "ha": {},
}

var amenityNo = map[string]struct{}{
	"no": {}, "n": {}, "not available": {}, "unavailable": {}, "none": {}, "false": {}, "0": {}, "nahi": {},
}

// ParseAmenity приводит свободный текст из источника к YES/NO/UNKNOWN.
func ParseAmenity(raw string) Amenity {
	key := normalizeFreeText(raw)
	if _, ok := amenityYes[key]; ok {
		return AmenityYes
	}
	if _, ok := amenityNo[key]; ok {
		return AmenityNo
	}
	return AmenityUnknown
}

var roomTypeSpellings = map[string]RoomType{
	"ac":            RoomTypeAC,
	"a/c":           RoomTypeAC,
	"a.c.":          RoomTypeAC,
	"non ac":        RoomTypeNonAC,
	"non-ac":        RoomTypeNonAC,
	"non_ac":        RoomTypeNonAC,
	"nonac":         RoomTypeNonAC,
	"non a/c":       RoomTypeNonAC,
	"both":          RoomTypeBoth,
	"ac/non-ac":     RoomTypeBoth,
	"ac/non ac":     RoomTypeBoth,
	"ac & non ac":   RoomTypeBoth,
	"ac and non ac": RoomTypeBoth,
	"ac, non ac":    RoomTypeBoth,
}

// ParseRoomType возвращает тип номеров и false, если значение не распознано.
func ParseRoomType(raw string) (RoomType, bool) {
	t, ok := roomTypeSpellings[normalizeFreeText(raw)]
	return t, ok
}

// Caser хранит состояние, поэтому создаём его на каждый вызов.
func normalizeFreeText(raw string) string {
	return strings.Join(strings.Fields(cases.Fold().String(raw)), " ")
}

// NormalizeName - форма имени для поиска и сортировки.
func NormalizeName(name string) string {
	return cases.Lower(language.Und).String(name)
}
