package rabbitmq

import (
	"time"

	"github.com/google/uuid"
)

// ListingsChangedEvent - событие "коллекция гостиниц изменилась" от админки/импорта.
type ListingsChangedEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Source     string    `json:"source,omitempty"`
	HotelIDs   []string  `json:"hotel_ids,omitempty"`
}

// RefreshReportDTO - отчёт о перезагрузке рабочего набора.
type RefreshReportDTO struct {
	ReportID   uuid.UUID `json:"report_id"`
	Service    string    `json:"service"`
	Reason     string    `json:"reason"`
	Generation uint64    `json:"generation"`
	Loaded     int       `json:"loaded"`
	Rejected   int       `json:"rejected"`
	Failed     bool      `json:"failed"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}
