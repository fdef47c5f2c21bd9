// Package events 发布测验领域事件（作答提交、题库变更、重新导入）
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	AttemptSubmitted EventType = "attempt.submitted"
	QuizCreated      EventType = "quiz.created"
	QuizDeleted      EventType = "quiz.deleted"
	CatalogReseeded  EventType = "catalog.reseeded"
	UserRegistered   EventType = "user.registered"
)

const (
	Source  = "quiz-app-backend"
	Version = "1.0"
)

type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      map[string]interface{} `json:"data"`
}

func New(t EventType, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    Source,
		Version:   Version,
		Data:      data,
	}
}
