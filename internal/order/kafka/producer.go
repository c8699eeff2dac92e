package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/danbahadur2060/event/internal/config"
	"github.com/danbahadur2060/event/internal/logger"
	"github.com/danbahadur2060/event/internal/models"
)

// Producer streams order lifecycle events, one topic per transition.
type Producer struct {
	Created  *kafka.Writer
	Paid     *kafka.Writer
	Failed   *kafka.Writer
	Refunded *kafka.Writer
	Logger   *logger.Logger
}

func NewProducer(brokers []string, topics config.TopicConfig, log *logger.Logger) *Producer {
	writer := func(topic string) *kafka.Writer {
		return kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		})
	}
	return &Producer{
		Created:  writer(topics.OrderCreated),
		Paid:     writer(topics.OrderPaid),
		Failed:   writer(topics.OrderFailed),
		Refunded: writer(topics.OrderRefunded),
		Logger:   log,
	}
}

func (p *Producer) publish(w *kafka.Writer, o models.Order) error {
	msgBytes, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return w.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(o.ID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) PublishOrderCreated(o models.Order) error {
	return p.publish(p.Created, o)
}

func (p *Producer) PublishOrderPaid(o models.Order) error {
	return p.publish(p.Paid, o)
}

func (p *Producer) PublishOrderFailed(o models.Order) error {
	return p.publish(p.Failed, o)
}

func (p *Producer) PublishOrderRefunded(o models.Order) error {
	return p.publish(p.Refunded, o)
}

func (p *Producer) Close() error {
	for _, w := range []*kafka.Writer{p.Created, p.Paid, p.Failed, p.Refunded} {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

// EnsureTopicsExist creates the lifecycle topics on startup so the first
// publish does not race topic auto-creation.
func EnsureTopicsExist(brokers []string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	configs := make([]kafka.TopicConfig, len(topics))
	for i, topic := range topics {
		configs[i] = kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	return controllerConn.CreateTopics(configs...)
}

// MockProducer satisfies the publisher surface without a broker. Used when
// KAFKA_MOCK_MODE is set or Kafka is disabled outright.
type MockProducer struct {
	Logger *logger.Logger
}

func NewMockProducer(log *logger.Logger) *MockProducer {
	return &MockProducer{Logger: log}
}

func (m *MockProducer) log(kind string, o models.Order) error {
	m.Logger.Info("KAFKA", fmt.Sprintf("[mock] %s: order %s status %s", kind, o.ID, o.Status))
	return nil
}

func (m *MockProducer) PublishOrderCreated(o models.Order) error  { return m.log("order created", o) }
func (m *MockProducer) PublishOrderPaid(o models.Order) error     { return m.log("order paid", o) }
func (m *MockProducer) PublishOrderFailed(o models.Order) error   { return m.log("order failed", o) }
func (m *MockProducer) PublishOrderRefunded(o models.Order) error { return m.log("order refunded", o) }
