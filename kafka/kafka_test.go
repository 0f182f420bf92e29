package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWorkOrderEvent(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var event WorkOrderEvent
		if err := json.Unmarshal(val, &event); err != nil {
			return err
		}
		if event.Code != "WO00003" || event.Status != "REPAIRING" || event.Notes != "waiting on screen" {
			return errors.New("unexpected payload")
		}
		if event.EventID == "" || event.Timestamp.IsZero() {
			return errors.New("event metadata not set")
		}
		return nil
	})

	p := NewPublisherWithProducer(producer, "")
	err := p.PublishWorkOrderEvent(context.Background(), WorkOrderEvent{
		EventType:   EventTypeWorkOrderStatusChanged,
		WorkOrderID: 3,
		Code:        "WO00003",
		Status:      "REPAIRING",
		Notes:       "waiting on screen",
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishWorkOrderEventFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewPublisherWithProducer(producer, "orders")
	err := p.PublishWorkOrderEvent(context.Background(), WorkOrderEvent{EventType: EventTypeWorkOrderCreated, Code: "WO00001"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestNewPublisherWithoutBrokersIsNoop(t *testing.T) {
	p, err := NewPublisher(nil, DefaultTopic)
	require.NoError(t, err)
	assert.IsType(t, NoopPublisher{}, p)
	assert.NoError(t, p.PublishWorkOrderEvent(context.Background(), WorkOrderEvent{}))
}

func TestDispatchRoutesByEventType(t *testing.T) {
	c := newConsumer("workers", []string{DefaultTopic})

	var got WorkOrderEvent
	c.RegisterHandler(EventTypeWorkOrderStatusChanged, func(_ context.Context, e WorkOrderEvent) error {
		got = e
		return nil
	})

	payload, err := json.Marshal(WorkOrderEvent{WorkOrderID: 5, Code: "WO00005", Status: "COMPLETED"})
	require.NoError(t, err)

	err = c.dispatch(context.Background(), &sarama.ConsumerMessage{
		Topic: DefaultTopic,
		Value: payload,
		Headers: []*sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeWorkOrderStatusChanged)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "WO00005", got.Code)
	assert.Equal(t, "COMPLETED", got.Status)
}

func TestDispatchSkipsUnhandledAndRejectsMissingType(t *testing.T) {
	c := newConsumer("workers", nil)

	err := c.dispatch(context.Background(), &sarama.ConsumerMessage{
		Value:   []byte(`{}`),
		Headers: []*sarama.RecordHeader{{Key: []byte("event_type"), Value: []byte(EventTypeWorkOrderDeleted)}},
	})
	assert.NoError(t, err)

	err = c.dispatch(context.Background(), &sarama.ConsumerMessage{Value: []byte(`{}`)})
	assert.Error(t, err)
}
