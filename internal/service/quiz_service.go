package service

import (
	"context"
	"errors"

	"quiz_app_backend/internal/cache"
	"quiz_app_backend/internal/events"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	Repo      *repository.QuizRepository
	Questions *QuestionService
	Cache     *CatalogCache
	Events    events.Publisher
}

func NewQuizService(repo *repository.QuizRepository, questions *QuestionService, c *CatalogCache, publisher events.Publisher) *QuizService {
	return &QuizService{Repo: repo, Questions: questions, Cache: c, Events: publisher}
}

type CreateQuizInput struct {
	Title      string `json:"title" binding:"required"`
	Subject    string `json:"subject" binding:"required"`
	Duration   int    `json:"duration" binding:"omitempty,min=1,max=600"`
	TotalMarks int    `json:"totalMarks" binding:"omitempty,min=1,max=500"`
}

func (s *QuizService) List(ctx context.Context) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := s.Cache.Load(ctx, cache.KeyQuizzes, &quizzes, func() (err error) {
		quizzes, err = s.Repo.FindAll()
		return err
	})
	return quizzes, err
}

func (s *QuizService) Get(id string) (*model.Quiz, error) {
	q, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	return q, err
}

func (s *QuizService) Create(ctx context.Context, in CreateQuizInput) (*model.Quiz, error) {
	q := &model.Quiz{
		Title:      quiz.NormalizeText(in.Title),
		Subject:    quiz.NormalizeText(in.Subject),
		Duration:   in.Duration,
		TotalMarks: in.TotalMarks,
	}
	if q.Title == "" {
		return nil, util.ValidationErrors{util.NewValidationError("title", "is required", "required", in.Title)}
	}
	if q.Duration <= 0 {
		q.Duration = 15
	}

	if err := s.Repo.Create(q); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	s.publish(ctx, events.QuizCreated, q, 0)
	return q, nil
}

// Delete 同时删除指定给该测验的题目，返回被删除的题目数
func (s *QuizService) Delete(ctx context.Context, id string) (int64, error) {
	q, err := s.Get(id)
	if err != nil {
		return 0, err
	}

	removed, err := s.Repo.DeleteWithQuestions(q)
	if err != nil {
		return 0, err
	}
	s.Cache.Invalidate(ctx)
	s.publish(ctx, events.QuizDeleted, q, removed)
	return removed, nil
}

// QuestionsFor 返回测验的选题结果（未打乱），客户端负责渲染选项顺序
func (s *QuizService) QuestionsFor(ctx context.Context, id string) (*model.Quiz, []model.Question, error) {
	q, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}

	catalog, err := s.Questions.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return q, quiz.SelectQuestions(*q, catalog), nil
}

func (s *QuizService) publish(ctx context.Context, t events.EventType, q *model.Quiz, removed int64) {
	data := map[string]interface{}{
		"quizId":  q.ID,
		"title":   q.Title,
		"subject": q.Subject,
	}
	if t == events.QuizDeleted {
		data["questionsRemoved"] = removed
	}
	if err := s.Events.Publish(ctx, events.New(t, data)); err != nil {
		logger.Log.Warn("publish quiz event failed", zap.String("type", string(t)), zap.Error(err))
	}
}
