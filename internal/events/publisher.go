package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"quiz_app_backend/internal/config"

	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// WatermillPublisher 基于 watermill 的发布实现，底层可以是 gochannel 或 kafka
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *zap.Logger
}

func NewWatermillPublisher(pub message.Publisher, topic string, logger *zap.Logger) *WatermillPublisher {
	return &WatermillPublisher{publisher: pub, topic: topic, logger: logger}
}

func Marshal(event *Event) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("source", event.Source)
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339))
	return msg, nil
}

func Unmarshal(msg *message.Message) (*Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (p *WatermillPublisher) Publish(ctx context.Context, event *Event) error {
	msg, err := Marshal(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return fmt.Errorf("publish event: %w", err)
	}

	p.logger.Debug("event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
	return nil
}

func (p *WatermillPublisher) Close() error {
	return p.publisher.Close()
}

type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event *Event) error { return nil }
func (NopPublisher) Close() error                                    { return nil }

// MockPublisher 记录发布的事件，供测试断言
type MockPublisher struct {
	mu     sync.Mutex
	Events []*Event
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func (m *MockPublisher) Published(t EventType) []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Event
	for _, e := range m.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Bus 发布者以及（仅 gochannel 时）进程内订阅者
type Bus struct {
	Publisher  Publisher
	Subscriber message.Subscriber
	Topic      string
}

func NewBus(cfg *config.EventsConfig, logger *zap.Logger) (*Bus, error) {
	if !cfg.Enabled {
		return &Bus{Publisher: NopPublisher{}, Topic: cfg.Topic}, nil
	}

	wlog := NewZapAdapter(logger)

	switch cfg.Driver {
	case "kafka":
		pub, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers:   cfg.KafkaBrokers,
			Marshaler: kafka.DefaultMarshaler{},
		}, wlog)
		if err != nil {
			return nil, fmt.Errorf("create kafka publisher: %w", err)
		}
		return &Bus{Publisher: NewWatermillPublisher(pub, cfg.Topic, logger), Topic: cfg.Topic}, nil
	default:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, wlog)
		return &Bus{
			Publisher:  NewWatermillPublisher(ch, cfg.Topic, logger),
			Subscriber: ch,
			Topic:      cfg.Topic,
		}, nil
	}
}

// Consume 在进程内消费事件直至 ctx 结束，handler 出错时消息被 Nack
func (b *Bus) Consume(ctx context.Context, handler func(*Event) error) error {
	if b.Subscriber == nil {
		return nil
	}

	messages, err := b.Subscriber.Subscribe(ctx, b.Topic)
	if err != nil {
		return err
	}

	for msg := range messages {
		event, err := Unmarshal(msg)
		if err != nil {
			msg.Ack()
			continue
		}
		if err := handler(event); err != nil {
			msg.Nack()
			continue
		}
		msg.Ack()
	}
	return nil
}

func (b *Bus) Close() error {
	return b.Publisher.Close()
}
