package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// JSONPublisher - часть rabbitmq_producer.Publisher, нужная адаптеру.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, payload interface{}, headers amqp.Table) error
}

const publishTimeout = 10 * time.Second

type RefreshReporterAdapter struct {
	producer    JSONPublisher
	routingKey  string
	serviceName string
}

func NewRefreshReporterAdapter(producer JSONPublisher, routingKey, serviceName string) (*RefreshReporterAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &RefreshReporterAdapter{
		producer:    producer,
		routingKey:  routingKey,
		serviceName: serviceName,
	}, nil
}

func (a *RefreshReporterAdapter) ReportRefresh(ctx context.Context, report *domain.RefreshReport) error {
	adapterLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":   "RefreshReporterAdapter",
		"routing_key": a.routingKey,
		"generation":  report.Generation,
	})

	dto := RefreshReportDTO{
		ReportID:   uuid.New(),
		Service:    a.serviceName,
		Reason:     report.Reason,
		Generation: report.Generation,
		Loaded:     report.Loaded,
		Rejected:   report.Rejected,
		Failed:     report.Failed,
		Error:      report.Error,
		FinishedAt: report.FinishedAt,
	}

	headers := amqp.Table{"event_type": "ListingsRefreshReport", "event_version": "1.0.0"}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		headers[amqpTraceIDHeader] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := a.producer.PublishJSON(publishCtx, a.routingKey, dto, headers); err != nil {
		adapterLogger.Error("Failed to publish refresh report", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish refresh report: %w", err)
	}

	adapterLogger.Info("Refresh report published", port.Fields{"report_id": dto.ReportID.String()})
	return nil
}
