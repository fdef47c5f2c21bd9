package service

import (
	"context"
	"errors"

	"quiz_app_backend/internal/cache"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"

	"gorm.io/gorm"
)

type SubjectService struct {
	Repo  *repository.SubjectRepository
	Cache *CatalogCache
}

func NewSubjectService(repo *repository.SubjectRepository, c *CatalogCache) *SubjectService {
	return &SubjectService{Repo: repo, Cache: c}
}

func (s *SubjectService) List(ctx context.Context) ([]model.Subject, error) {
	var subjects []model.Subject
	err := s.Cache.Load(ctx, cache.KeySubjects, &subjects, func() (err error) {
		subjects, err = s.Repo.FindAll()
		return err
	})
	return subjects, err
}

func (s *SubjectService) Get(id string) (*model.Subject, error) {
	subject, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSubjectNotFound
	}
	return subject, err
}

func (s *SubjectService) checkName(name, excludeID string) (string, error) {
	name = quiz.NormalizeText(name)
	if name == "" {
		return "", util.ValidationErrors{util.NewValidationError("name", "is required", "required", name)}
	}

	_, err := s.Repo.FindByNameFold(name, excludeID)
	if err == nil {
		return "", util.ErrSubjectExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	return name, nil
}

// Create 科目名称大小写不敏感唯一
func (s *SubjectService) Create(ctx context.Context, name string) (*model.Subject, error) {
	name, err := s.checkName(name, "")
	if err != nil {
		return nil, err
	}

	subject := &model.Subject{Name: name}
	if err := s.Repo.Create(subject); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return subject, nil
}

func (s *SubjectService) Rename(ctx context.Context, id, name string) (*model.Subject, error) {
	subject, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	name, err = s.checkName(name, id)
	if err != nil {
		return nil, err
	}

	subject.Name = name
	if err := s.Repo.Update(subject); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx)
	return subject, nil
}

// Delete 只删除科目本身，已有测验和题目保留原科目名
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	n, err := s.Repo.Delete(id)
	if err != nil {
		return err
	}
	if n == 0 {
		return util.ErrSubjectNotFound
	}
	s.Cache.Invalidate(ctx)
	return nil
}
