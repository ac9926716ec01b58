package rabbitmq_producer

import (
	"testing"

	"listing-service/pkg/rabbitmq/rabbitmq_common"

	"github.com/stretchr/testify/assert"
)

func TestPublisherConfigValidate(t *testing.T) {
	base := rabbitmq_common.Config{URL: "amqp://localhost:5672/"}

	assert.NoError(t, PublisherConfig{Config: base}.validate())
	assert.NoError(t, PublisherConfig{Config: base, ExchangeName: "listings_events", ExchangeType: "topic", DeclareExchangeIfMissing: true}.validate())
	assert.NoError(t, PublisherConfig{Config: base, ExchangeName: "listings_events"}.validate())

	assert.Error(t, PublisherConfig{Config: base, ExchangeName: "listings_events", DeclareExchangeIfMissing: true}.validate())
	assert.Error(t, PublisherConfig{Config: base, ExchangeType: "topic", DeclareExchangeIfMissing: true}.validate())
	assert.Error(t, PublisherConfig{}.validate())
}
