package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"quiz_app_backend/internal/events"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"
	"quiz_app_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttemptService struct {
	Repo   *repository.AttemptRepository
	Events events.Publisher
	now    func() time.Time
}

func NewAttemptService(repo *repository.AttemptRepository, publisher events.Publisher) *AttemptService {
	return &AttemptService{Repo: repo, Events: publisher, now: time.Now}
}

// Submit 保存一次作答。email 以令牌为准（管理员可代提交）；
// 相同 clientId 重复提交时返回已存记录，created 为 false
func (s *AttemptService) Submit(ctx context.Context, claims *util.Claims, email string, a *model.Attempt) (*model.Attempt, bool, error) {
	email = NormalizeEmail(email)
	if email == "" || !claims.IsAdmin() {
		email = claims.Email
	}
	if email == "" {
		return nil, false, util.ErrInvalidAttempt
	}

	a.QuizTitle = strings.TrimSpace(a.QuizTitle)
	if a.QuizTitle == "" {
		return nil, false, util.ValidationErrors{util.NewValidationError("quizTitle", "is required", "required", a.QuizTitle)}
	}

	if a.ClientID == "" {
		a.ClientID = model.GenerateUUID()
	} else if _, err := uuid.Parse(a.ClientID); err != nil {
		return nil, false, util.ValidationErrors{util.NewValidationError("clientId", "must be a valid UUID", "uuid", a.ClientID)}
	}

	var serr *quiz.SnapshotError
	if err := quiz.CheckSnapshot(a.Questions); errors.As(err, &serr) {
		return nil, false, util.ValidationErrors{util.NewValidationError("questions", err.Error(), "snapshot", serr.Index)}
	}

	existing, err := s.Repo.FindByClientID(a.ClientID)
	if err == nil {
		return s.duplicate(existing, email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	a.ID = ""
	a.UserEmail = email
	if a.TimeSpent < 0 {
		a.TimeSpent = 0
	}
	if a.TimeText == "" {
		a.TimeText = quiz.FormatElapsed(a.TimeSpent)
	}
	now := s.now()
	if a.CreatedAt.IsZero() || a.CreatedAt.After(now) {
		a.CreatedAt = now
	}
	quiz.Regrade(a)

	if err := s.Repo.Create(a); err != nil {
		// 并发提交同一 clientId 时唯一索引冲突，按已存记录处理
		if existing, ferr := s.Repo.FindByClientID(a.ClientID); ferr == nil {
			return s.duplicate(existing, email)
		}
		return nil, false, err
	}

	monitoring.AttemptsSubmitted.WithLabelValues(a.QuizTitle).Inc()
	if err := s.Events.Publish(ctx, events.New(events.AttemptSubmitted, map[string]interface{}{
		"attemptId": a.ID,
		"clientId":  a.ClientID,
		"userEmail": a.UserEmail,
		"quizTitle": a.QuizTitle,
		"score":     a.Score,
		"total":     a.Total,
	})); err != nil {
		logger.Log.Warn("publish attempt.submitted failed", zap.String("client_id", a.ClientID), zap.Error(err))
	}

	return a, true, nil
}

func (s *AttemptService) duplicate(existing *model.Attempt, email string) (*model.Attempt, bool, error) {
	if existing.UserEmail != email {
		return nil, false, util.ErrPermissionDenied
	}
	monitoring.AttemptsDeduplicated.Inc()
	return existing, false, nil
}

// ListByEmail 普通用户只能查看自己的记录
func (s *AttemptService) ListByEmail(claims *util.Claims, email string) ([]model.Attempt, error) {
	email = NormalizeEmail(email)
	if email != claims.Email && !claims.IsAdmin() {
		return nil, util.ErrPermissionDenied
	}
	return s.Repo.FindByEmail(email)
}
