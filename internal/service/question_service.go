package service

import (
	"context"
	"strings"

	"quiz_app_backend/internal/cache"
	"quiz_app_backend/internal/fixture"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"
)

type QuestionService struct {
	Repo  *repository.QuestionRepository
	Cache *CatalogCache
}

func NewQuestionService(repo *repository.QuestionRepository, c *CatalogCache) *QuestionService {
	return &QuestionService{Repo: repo, Cache: c}
}

type CreateQuestionInput struct {
	Subject       string   `json:"subject" binding:"required"`
	QuizTitle     string   `json:"quizTitle"`
	QuestionText  string   `json:"questionText" binding:"required"`
	Options       []string `json:"options" binding:"required,min=2,max=4,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" binding:"required"`
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

func (s *QuestionService) List(ctx context.Context) ([]model.Question, error) {
	var questions []model.Question
	err := s.Cache.Load(ctx, cache.KeyQuestions, &questions, func() (err error) {
		questions, err = s.Repo.FindAll()
		return err
	})
	return questions, err
}

// BySubject 科目名精确匹配
func (s *QuestionService) BySubject(ctx context.Context, subject string) ([]model.Question, error) {
	var questions []model.Question
	err := s.Cache.Load(ctx, cache.QuestionsBySubjectKey(subject), &questions, func() (err error) {
		questions, err = s.Repo.FindBySubject(subject)
		return err
	})
	return questions, err
}

func validateQuestion(in CreateQuestionInput) util.ValidationErrors {
	var errs util.ValidationErrors

	seen := map[string]bool{}
	for _, opt := range in.Options {
		key := quiz.NormalizeText(opt)
		if key == "" {
			errs = append(errs, util.NewValidationError("options", "must not be blank", "required", opt))
			continue
		}
		if seen[key] {
			errs = append(errs, util.NewValidationError("options", "must not contain duplicates", "unique", opt))
		}
		seen[key] = true
	}

	found := false
	for _, opt := range in.Options {
		if opt == in.CorrectAnswer {
			found = true
			break
		}
	}
	if !found {
		errs = append(errs, util.NewValidationError("correctAnswer", "must match one of the options", "oneof", in.CorrectAnswer))
	}

	return errs
}

func (s *QuestionService) Create(ctx context.Context, in CreateQuestionInput) (*model.Question, error) {
	if errs := validateQuestion(in); len(errs) > 0 {
		return nil, errs
	}

	q := &model.Question{
		Subject:       quiz.NormalizeText(in.Subject),
		QuizTitle:     quiz.NormalizeText(in.QuizTitle),
		QuestionText:  strings.TrimSpace(in.QuestionText),
		Options:       append([]string(nil), in.Options...),
		CorrectAnswer: in.CorrectAnswer,
		Difficulty:    fixture.ParseDifficulty(in.Difficulty),
	}
	if err := s.Repo.Create(q); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return q, nil
}

func (s *QuestionService) Delete(ctx context.Context, id string) error {
	n, err := s.Repo.Delete(id)
	if err != nil {
		return err
	}
	if n == 0 {
		return util.ErrQuestionNotFound
	}
	s.Cache.Invalidate(ctx)
	return nil
}
