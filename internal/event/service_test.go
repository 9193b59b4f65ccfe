package event_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/crm/internal/event"
	"github.com/tuanvumaihuynh/crm/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	ran      bool
	cleaned  bool
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(_ context.Context) (mq.CleanupFunc, error) {
	c.ran = true
	return func() { c.cleaned = true }, nil
}

func TestService(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	consumer := &fakeConsumer{}

	cleanup, err := event.New(logger, consumer).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, consumer.ran)

	t.Run("Should register every topic", func(t *testing.T) {
		for _, topic := range event.Topics {
			assert.Contains(t, consumer.handlers, topic)
		}
	})

	t.Run("Should handle order created event", func(t *testing.T) {
		buf.Reset()
		ev := event.OrderCreatedEvent{
			OrderID:     uuid.Must(uuid.NewV7()),
			CustomerID:  uuid.Must(uuid.NewV7()),
			ProductIDs:  []uuid.UUID{uuid.Must(uuid.NewV7())},
			TotalAmount: decimal.RequireFromString("25.5"),
		}
		payload, err := json.Marshal(ev)
		require.NoError(t, err)

		err = consumer.handlers[event.TopicOrderCreated](context.Background(), event.TopicOrderCreated, payload)
		require.NoError(t, err)

		assert.Contains(t, buf.String(), ev.OrderID.String())
		assert.Contains(t, buf.String(), `"total_amount":"25.50"`)
	})

	t.Run("Should log each restocked product", func(t *testing.T) {
		buf.Reset()
		payload := []byte(`{"products":[{"name":"Cable","old_stock":3,"new_stock":13},{"name":"Mouse","old_stock":9,"new_stock":19}]}`)

		err := consumer.handlers[event.TopicProductsRestocked](context.Background(), event.TopicProductsRestocked, payload)
		require.NoError(t, err)

		assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("product restocked")))
	})

	t.Run("Should fail on malformed payload", func(t *testing.T) {
		err := consumer.handlers[event.TopicCustomerCreated](context.Background(), event.TopicCustomerCreated, []byte("{"))
		assert.ErrorContains(t, err, "unmarshal crm.customer.created event")
	})

	cleanup()
	assert.True(t, consumer.cleaned)
}
