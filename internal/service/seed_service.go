package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/events"
	"quiz_app_backend/internal/fixture"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/util"
	"quiz_app_backend/pkg/logger"
	"quiz_app_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SeedService struct {
	DB     *gorm.DB
	Cfg    *config.SeedConfig
	Cache  *CatalogCache
	Events events.Publisher
	now    func() time.Time
}

func NewSeedService(db *gorm.DB, cfg *config.SeedConfig, c *CatalogCache, publisher events.Publisher) *SeedService {
	return &SeedService{DB: db, Cfg: cfg, Cache: c, Events: publisher, now: time.Now}
}

// SeedResult 每一项为导入后表中的记录数；未提供的种子文件对应的表保持不变
type SeedResult struct {
	Subjects       int64 `json:"subjects"`
	Quizzes        int64 `json:"quizzes"`
	Questions      int64 `json:"questions"`
	Users          int64 `json:"users"`
	Generated      int   `json:"generated"`
	UsersImported  int   `json:"usersImported"`
	HistoryDropped int64 `json:"historyDropped"`
}

type fixtures struct {
	subjects  []fixture.Subject
	quizzes   []fixture.Quiz
	questions []fixture.Question
	users     []fixture.User

	hasSubjects, hasQuizzes, hasQuestions, hasUsers bool
}

func (s *SeedService) read(name string, v any) (bool, error) {
	err := fixture.ReadFile(filepath.Join(s.Cfg.FixtureDir, name), v)
	if errors.Is(err, fixture.ErrNotExist) {
		logger.Log.Info("fixture not found, skipping", zap.String("file", name))
		return false, nil
	}
	return err == nil, err
}

func (s *SeedService) load() (*fixtures, error) {
	var f fixtures
	var err error
	if f.hasSubjects, err = s.read(fixture.SubjectsFile, &f.subjects); err != nil {
		return nil, err
	}
	if f.hasQuizzes, err = s.read(fixture.QuizzesFile, &f.quizzes); err != nil {
		return nil, err
	}
	if f.hasQuestions, err = s.read(fixture.QuestionsFile, &f.questions); err != nil {
		return nil, err
	}
	if f.hasUsers, err = s.read(fixture.UsersFile, &f.users); err != nil {
		return nil, err
	}
	return &f, nil
}

// stamp 以毫秒递增的创建时间保持种子文件中的顺序
func stamp(base time.Time, i int) time.Time {
	return base.Add(time.Duration(i) * time.Millisecond)
}

// Run 导入种子数据。题库三张表整体替换，用户表仅在为空时导入，全部在一个事务中完成
func (s *SeedService) Run(ctx context.Context) (*SeedResult, error) {
	f, err := s.load()
	if err != nil {
		monitoring.SeedRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	result := &SeedResult{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.apply(tx, f, result)
	})
	if err != nil {
		monitoring.SeedRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	s.Cache.Invalidate(ctx)
	monitoring.SeedRuns.WithLabelValues("ok").Inc()

	logger.Log.Info("catalog seeded",
		zap.Int64("subjects", result.Subjects),
		zap.Int64("quizzes", result.Quizzes),
		zap.Int64("questions", result.Questions),
		zap.Int("generated", result.Generated),
		zap.Int("users_imported", result.UsersImported),
	)

	if err := s.Events.Publish(ctx, events.New(events.CatalogReseeded, map[string]interface{}{
		"subjects":  result.Subjects,
		"quizzes":   result.Quizzes,
		"questions": result.Questions,
		"generated": result.Generated,
	})); err != nil {
		logger.Log.Warn("publish catalog.reseeded failed", zap.Error(err))
	}

	return result, nil
}

func (s *SeedService) apply(tx *gorm.DB, f *fixtures, result *SeedResult) error {
	subjectRepo := repository.NewSubjectRepository(tx)
	quizRepo := repository.NewQuizRepository(tx)
	questionRepo := repository.NewQuestionRepository(tx)
	userRepo := repository.NewUserRepository(tx)

	base := s.now()

	quizzes := make([]model.Quiz, 0, len(f.quizzes))
	for i, item := range f.quizzes {
		q := item.Model()
		if q.Title == "" {
			continue
		}
		q.CreatedAt = stamp(base, i)
		quizzes = append(quizzes, q)
	}

	questions := make([]model.Question, 0, len(f.questions))
	for _, item := range f.questions {
		q := item.Model()
		if q.QuestionText == "" || len(q.Options) == 0 {
			continue
		}
		questions = append(questions, q)
	}

	if f.hasQuizzes {
		if err := quizRepo.ReplaceAll(quizzes); err != nil {
			return err
		}
	}

	if f.hasQuestions {
		if err := questionRepo.ReplaceAll(nil); err != nil {
			return err
		}
	}

	if s.Cfg.GenerateMissing {
		all := quizzes
		if !f.hasQuizzes {
			var err error
			if all, err = quizRepo.FindAll(); err != nil {
				return err
			}
		}
		assigned := map[string]int{}
		if f.hasQuestions {
			for _, q := range questions {
				assigned[q.QuizTitle]++
			}
		}
		for _, q := range all {
			existing := assigned[q.Title]
			if !f.hasQuestions {
				n, err := questionRepo.CountByQuizTitle(q.Title)
				if err != nil {
					return err
				}
				existing = int(n)
			}
			fillers := fixture.FillerQuestions(q, existing)
			result.Generated += len(fillers)
			questions = append(questions, fillers...)
		}
	}

	if len(questions) > 0 {
		for i := range questions {
			questions[i].CreatedAt = stamp(base, i)
		}
		if err := questionRepo.CreateMany(questions); err != nil {
			return err
		}
	}

	if f.hasSubjects || f.hasQuizzes || f.hasQuestions {
		var names []string
		if f.hasSubjects {
			seen := map[string]bool{}
			for _, item := range f.subjects {
				name := quiz.NormalizeText(item.Name)
				if name == "" || seen[quiz.FoldKey(name)] {
					continue
				}
				seen[quiz.FoldKey(name)] = true
				names = append(names, name)
			}
		} else {
			names = fixture.DeriveSubjects(quizzes, questions)
		}

		subjects := make([]model.Subject, len(names))
		for i, name := range names {
			subjects[i] = model.Subject{Name: name}
			subjects[i].CreatedAt = stamp(base, i)
		}
		if err := subjectRepo.ReplaceAll(subjects); err != nil {
			return err
		}
	}

	if f.hasUsers {
		n, err := s.importUsers(userRepo, f.users)
		if err != nil {
			return err
		}
		result.UsersImported = n
	}

	var err error
	if result.Subjects, err = subjectRepo.Count(); err != nil {
		return err
	}
	if result.Quizzes, err = quizRepo.Count(); err != nil {
		return err
	}
	if result.Questions, err = questionRepo.Count(); err != nil {
		return err
	}
	result.Users, err = userRepo.Count()
	return err
}

// importUsers 仅在用户表为空时导入，明文密码在此处哈希
func (s *SeedService) importUsers(repo *repository.UserRepository, items []fixture.User) (int, error) {
	count, err := repo.Count()
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	seen := map[string]bool{}
	users := make([]model.User, 0, len(items))
	for _, item := range items {
		u := item.Model()
		if u.Email == "" || u.Password == "" || seen[u.Email] {
			continue
		}
		seen[u.Email] = true
		if u.Name == "" {
			u.Name = u.Email
		}
		hashed, err := HashPassword(u.Password)
		if err != nil {
			return 0, err
		}
		u.Password = hashed
		users = append(users, u)
	}

	if len(users) == 0 {
		return 0, nil
	}
	return len(users), repo.CreateMany(users)
}

// Reseed 管理接口触发的重新导入，需要配置的密钥匹配
func (s *SeedService) Reseed(ctx context.Context, secret string, dropHistory bool) (*SeedResult, error) {
	if s.Cfg.ReseedSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.Cfg.ReseedSecret)) != 1 {
		return nil, util.ErrReseedForbidden
	}

	var dropped int64
	if dropHistory {
		n, err := repository.NewAttemptRepository(s.DB.WithContext(ctx)).DeleteAll()
		if err != nil {
			return nil, err
		}
		dropped = n
		logger.Log.Warn("attempt history dropped", zap.Int64("rows", dropped))
	}

	result, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	result.HistoryDropped = dropped
	return result, nil
}
