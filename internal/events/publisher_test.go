package events

import (
	"context"
	"testing"
	"time"

	"quiz_app_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMarshalRoundTrip(t *testing.T) {
	e := New(AttemptSubmitted, map[string]interface{}{"quizTitle": "Đề 01", "score": float64(5)})

	msg, err := Marshal(e)
	require.NoError(t, err)
	assert.Equal(t, string(AttemptSubmitted), msg.Metadata.Get("event_type"))
	assert.Equal(t, Source, msg.Metadata.Get("source"))

	back, err := Unmarshal(msg)
	require.NoError(t, err)
	assert.Equal(t, e.ID, back.ID)
	assert.Equal(t, "Đề 01", back.Data["quizTitle"])
}

func TestBus_GoChannelDelivers(t *testing.T) {
	bus, err := NewBus(&config.EventsConfig{Enabled: true, Driver: "gochannel", Topic: "quiz.events"}, zap.NewNop())
	require.NoError(t, err)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *Event, 1)
	go bus.Consume(ctx, func(e *Event) error {
		received <- e
		return nil
	})

	// 订阅建立之前发布的消息会被 gochannel 丢弃
	require.Eventually(t, func() bool {
		_ = bus.Publisher.Publish(ctx, New(QuizDeleted, map[string]interface{}{"title": "Đề 01"}))
		select {
		case e := <-received:
			return e.Type == QuizDeleted
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBus_Disabled(t *testing.T) {
	bus, err := NewBus(&config.EventsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.NoError(t, bus.Publisher.Publish(context.Background(), New(UserRegistered, nil)))
	assert.NoError(t, bus.Consume(context.Background(), func(*Event) error { return nil }))
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	require.NoError(t, m.Publish(context.Background(), New(QuizCreated, nil)))
	require.NoError(t, m.Publish(context.Background(), New(QuizDeleted, nil)))

	assert.Len(t, m.Published(QuizDeleted), 1)
	assert.Len(t, m.Events, 2)
}
