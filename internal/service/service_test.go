package service

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"quiz_app_backend/internal/cache"
	"quiz_app_backend/internal/config"
	"quiz_app_backend/internal/events"
	"quiz_app_backend/internal/fixture"
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/repository"
	"quiz_app_backend/internal/testutil"
	"quiz_app_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServices struct {
	db        *gorm.DB
	cfg       *config.Config
	events    *events.MockPublisher
	auth      *AuthService
	subjects  *SubjectService
	quizzes   *QuizService
	questions *QuestionService
	attempts  *AttemptService
	seed      *SeedService
	export    *ExportService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := testutil.NewConfig(t)
	pub := events.NewMockPublisher()
	catalog := NewCatalogCache(cache.NewMemoryCache(), time.Minute)

	questions := NewQuestionService(repository.NewQuestionRepository(db), catalog)
	attemptRepo := repository.NewAttemptRepository(db)

	return &testServices{
		db:        db,
		cfg:       cfg,
		events:    pub,
		auth:      NewAuthService(repository.NewUserRepository(db), NewStorageService(cfg), pub, cfg),
		subjects:  NewSubjectService(repository.NewSubjectRepository(db), catalog),
		quizzes:   NewQuizService(repository.NewQuizRepository(db), questions, catalog, pub),
		questions: questions,
		attempts:  NewAttemptService(attemptRepo, pub),
		seed:      NewSeedService(db, &cfg.Seed, catalog, pub),
		export:    NewExportService(attemptRepo),
	}
}

func claimsFor(email string, role model.UserRole) *util.Claims {
	return &util.Claims{Email: email, Role: role}
}

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	res, err := s.auth.Register(ctx, "An", "  An@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "an@example.com", res.Email)
	assert.Equal(t, model.RoleUser, res.Role)

	claims, err := util.ParseJWT(res.Token, s.cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, "an@example.com", claims.Email)
	assert.Len(t, s.events.Published(events.UserRegistered), 1)

	_, err = s.auth.Register(ctx, "Other", "an@example.com", "secret2")
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	_, err = s.auth.Login("AN@example.com", "wrong")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = s.auth.Login("nobody@example.com", "secret1")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	logged, err := s.auth.Login("AN@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "An", logged.Name)

	user, err := s.auth.UserRepo.FindByEmail("an@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", user.Password)
}

func TestAuthService_UpdateAvatar(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.auth.Register(ctx, "An", "an@example.com", "secret1")
	require.NoError(t, err)
	claims := claimsFor("an@example.com", model.RoleUser)

	avatar, err := s.auth.UpdateAvatar(ctx, claims, "", "🦊")
	require.NoError(t, err)
	assert.Equal(t, "🦊", avatar)

	_, err = s.auth.UpdateAvatar(ctx, claims, "", strings.Repeat("x", util.MaxInlineAvatar+1))
	assert.ErrorIs(t, err, util.ErrInvalidAvatar)

	_, err = s.auth.UpdateAvatar(ctx, claims, "other@example.com", "🐱")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	url, err := s.auth.UpdateAvatar(ctx, claims, "", dataURL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/avatars/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored := filepath.Join(s.cfg.Storage.LocalPath, strings.TrimPrefix(url, "/uploads/"))
	_, err = os.Stat(stored)
	assert.NoError(t, err)

	_, err = s.auth.UpdateAvatar(ctx, claims, "", "data:image/png;base64,"+base64.StdEncoding.EncodeToString([]byte("plain text")))
	assert.ErrorIs(t, err, util.ErrInvalidAvatar)

	_, err = s.auth.UpdateAvatar(ctx, claimsFor("admin@gmail.com", model.Admin), "ghost@example.com", "🐱")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	s := newTestServices(t)

	created, err := s.auth.EnsureAdmin("Admin@Gmail.com", "123456", "")
	require.NoError(t, err)
	assert.True(t, created)

	res, err := s.auth.Login("admin@gmail.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, model.Admin, res.Role)

	_, err = s.auth.Register(context.Background(), "An", "an@example.com", "secret1")
	require.NoError(t, err)
	created, err = s.auth.EnsureAdmin("an@example.com", "", "")
	require.NoError(t, err)
	assert.False(t, created)

	user, err := s.auth.UserRepo.FindByEmail("an@example.com")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	_, err = s.auth.EnsureAdmin("new@example.com", "", "")
	assert.Error(t, err)
}

func TestSubjectService_CaseInsensitiveNames(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	net, err := s.subjects.Create(ctx, "  Mạng   máy tính ")
	require.NoError(t, err)
	assert.Equal(t, "Mạng máy tính", net.Name)

	_, err = s.subjects.Create(ctx, "MẠNG MÁY TÍNH")
	assert.ErrorIs(t, err, util.ErrSubjectExists)

	_, err = s.subjects.Create(ctx, "   ")
	var verrs util.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	db, err := s.subjects.Create(ctx, "Cơ sở dữ liệu")
	require.NoError(t, err)

	_, err = s.subjects.Rename(ctx, db.ID, "mạng máy tính")
	assert.ErrorIs(t, err, util.ErrSubjectExists)

	renamed, err := s.subjects.Rename(ctx, net.ID, "mạng máy tính")
	require.NoError(t, err)
	assert.Equal(t, "mạng máy tính", renamed.Name)

	list, err := s.subjects.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "mạng máy tính", list[0].Name)

	require.NoError(t, s.subjects.Delete(ctx, db.ID))
	assert.ErrorIs(t, s.subjects.Delete(ctx, db.ID), util.ErrSubjectNotFound)

	list, err = s.subjects.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.subjects.Get("missing")
	assert.ErrorIs(t, err, util.ErrSubjectNotFound)
}

func TestQuestionService_CreateValidation(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.questions.Create(ctx, CreateQuestionInput{
		Subject:       "Mạng",
		QuestionText:  "TCP là gì?",
		Options:       []string{"A", "B"},
		CorrectAnswer: "C",
	})
	var verrs util.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "correctAnswer", verrs[0].Field)

	_, err = s.questions.Create(ctx, CreateQuestionInput{
		Subject:       "Mạng",
		QuestionText:  "TCP là gì?",
		Options:       []string{"A", " A "},
		CorrectAnswer: "A",
	})
	require.ErrorAs(t, err, &verrs)

	q, err := s.questions.Create(ctx, CreateQuestionInput{
		Subject:       "Mạng",
		QuestionText:  "TCP là gì?",
		Options:       []string{"Giao thức", "Phần cứng"},
		CorrectAnswer: "Giao thức",
		Difficulty:    "hard",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DifficultyHard, q.Difficulty)

	bySubject, err := s.questions.BySubject(ctx, "Mạng")
	require.NoError(t, err)
	assert.Len(t, bySubject, 1)

	require.NoError(t, s.questions.Delete(ctx, q.ID))
	assert.ErrorIs(t, s.questions.Delete(ctx, q.ID), util.ErrQuestionNotFound)

	bySubject, err = s.questions.BySubject(ctx, "Mạng")
	require.NoError(t, err)
	assert.Empty(t, bySubject)
}

func TestQuizService_QuestionsForAndDelete(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	q, err := s.quizzes.Create(ctx, CreateQuizInput{Title: " Đề 01 ", Subject: "Mạng", TotalMarks: 2})
	require.NoError(t, err)
	assert.Equal(t, "Đề 01", q.Title)
	assert.Equal(t, 15, q.Duration)
	assert.Len(t, s.events.Published(events.QuizCreated), 1)

	for _, in := range []CreateQuestionInput{
		{Subject: "Mạng", QuizTitle: "Đề 01", QuestionText: "q1", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{Subject: "Mạng", QuestionText: "q2", Options: []string{"a", "b"}, CorrectAnswer: "b"},
		{Subject: "Mạng", QuizTitle: "Đề 02", QuestionText: "q3", Options: []string{"a", "b"}, CorrectAnswer: "a"},
	} {
		_, err := s.questions.Create(ctx, in)
		require.NoError(t, err)
	}

	quiz, selected, err := s.quizzes.QuestionsFor(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, quiz.ID)
	require.Len(t, selected, 2)
	assert.Equal(t, "q1", selected[0].QuestionText)
	assert.Equal(t, "q2", selected[1].QuestionText)

	removed, err := s.quizzes.Delete(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	deleted := s.events.Published(events.QuizDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, int64(1), deleted[0].Data["questionsRemoved"])

	remaining, err := s.questions.List(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)

	_, err = s.quizzes.Delete(ctx, q.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func snapshot() []model.AttemptQuestion {
	return []model.AttemptQuestion{
		{Text: "q1", Options: []model.AttemptOption{{Text: "a", IsCorrect: true}, {Text: "b"}}},
		{Text: "q2", Options: []model.AttemptOption{{Text: "a"}, {Text: "b", IsCorrect: true}}},
	}
}

func TestAttemptService_SubmitRegradesAndDedups(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	user := claimsFor("an@example.com", model.RoleUser)

	zero := 0
	in := &model.Attempt{
		QuizTitle: "Đề 01",
		Score:     10,
		Questions: snapshot(),
		Answers:   []model.AttemptAnswer{{SelectedIndex: &zero}, {}},
		TimeSpent: 65,
	}
	stored, created, err := s.attempts.Submit(ctx, user, "someone@else.com", in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "an@example.com", stored.UserEmail)
	assert.Equal(t, 1, stored.RawScore)
	assert.Equal(t, 2, stored.RawTotal)
	assert.Equal(t, 5, stored.Score)
	assert.Equal(t, 10, stored.Total)
	assert.Equal(t, "01:05", stored.TimeText)
	assert.NotEmpty(t, stored.ClientID)
	assert.Len(t, s.events.Published(events.AttemptSubmitted), 1)

	again := &model.Attempt{ClientID: stored.ClientID, QuizTitle: "Đề 01", Questions: snapshot()}
	dup, created, err := s.attempts.Submit(ctx, user, "", again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.ID, dup.ID)
	assert.Len(t, s.events.Published(events.AttemptSubmitted), 1)

	_, _, err = s.attempts.Submit(ctx, claimsFor("other@example.com", model.RoleUser), "", &model.Attempt{ClientID: stored.ClientID, QuizTitle: "Đề 01"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, _, err = s.attempts.Submit(ctx, user, "", &model.Attempt{ClientID: "not-a-uuid", QuizTitle: "Đề 01"})
	var verrs util.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, _, err = s.attempts.Submit(ctx, user, "", &model.Attempt{})
	assert.ErrorAs(t, err, &verrs)
}

func TestAttemptService_RejectsInconsistentSnapshot(t *testing.T) {
	s := newTestServices(t)
	user := claimsFor("an@example.com", model.RoleUser)

	noCorrect := snapshot()
	noCorrect[1].Options[1].IsCorrect = false
	twoCorrect := snapshot()
	twoCorrect[0].Options[1].IsCorrect = true

	for _, qs := range [][]model.AttemptQuestion{noCorrect, twoCorrect} {
		_, _, err := s.attempts.Submit(context.Background(), user, "", &model.Attempt{QuizTitle: "Đề 01", Questions: qs})
		var verrs util.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "questions", verrs[0].Field)
	}

	list, err := s.attempts.ListByEmail(user, "an@example.com")
	require.NoError(t, err)
	assert.Empty(t, list)
}

// 模拟另一个请求在查重之后、写入之前抢先写入同一 clientId
func TestAttemptService_ConcurrentDuplicateIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t).Session(&gorm.Session{SkipDefaultTransaction: true})
	svc := NewAttemptService(repository.NewAttemptRepository(db), events.NewMockPublisher())
	user := claimsFor("an@example.com", model.RoleUser)
	clientID := model.GenerateUUID()

	var winner *model.Attempt
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_submit", func(tx *gorm.DB) {
		if winner != nil {
			return
		}
		if _, ok := tx.Statement.Dest.(*model.Attempt); !ok {
			return
		}
		winner = &model.Attempt{ClientID: clientID, UserEmail: "an@example.com", QuizTitle: "Đề 01"}
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Create(winner).Error)
	}))

	got, created, err := svc.Submit(context.Background(), user, "", &model.Attempt{ClientID: clientID, QuizTitle: "Đề 01"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, got.ID)

	_, _, err = NewAttemptService(repository.NewAttemptRepository(db), events.NewMockPublisher()).
		Submit(context.Background(), claimsFor("other@example.com", model.RoleUser), "", &model.Attempt{ClientID: clientID, QuizTitle: "Đề 01"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestAttemptService_AdminSubmitAndList(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	admin := claimsFor("admin@gmail.com", model.Admin)
	user := claimsFor("an@example.com", model.RoleUser)

	legacy := &model.Attempt{QuizTitle: "Đề 02", RawScore: 9, RawTotal: 4}
	legacy.CreatedAt = time.Now().Add(time.Hour)
	stored, _, err := s.attempts.Submit(ctx, admin, "AN@example.com", legacy)
	require.NoError(t, err)
	assert.Equal(t, "an@example.com", stored.UserEmail)
	assert.Equal(t, 4, stored.RawScore)
	assert.Equal(t, 10, stored.Score)
	assert.False(t, stored.CreatedAt.After(time.Now()))

	list, err := s.attempts.ListByEmail(user, "an@example.com")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = s.attempts.ListByEmail(user, "admin@gmail.com")
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	list, err = s.attempts.ListByEmail(admin, "an@example.com")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

const (
	quizzesJSON = `[
		{"title": "Đề 01", "subject": "Mạng", "duration": 10, "totalMarks": 3},
		{"title": "Đề 02", "subject": "CSDL", "totalMarks": 2}
	]`
	questionsJSON = "\xEF\xBB\xBF" + `{"value": [
		{"subject": "Mạng", "quizTitle": "Đề 01", "questionText": "c1", "options": ["a", "b"], "correctAnswer": "a"},
		{"subject": "Mạng", "quizTitle": "Đề 01", "text": "c2", "options": ["a", "b"], "correctAnswer": "b", "difficulty": "Hard"},
		{"subject": "CSDL", "questionText": "c3", "options": ["a", "b"], "correctAnswer": "a"},
		{"subject": "CSDL", "questionText": "", "options": ["a"], "correctAnswer": "a"}
	]}`
	usersJSON = `[
		{"username": "an", "email": "AN@example.com", "password": "secret1"},
		{"name": "Quản trị", "email": "boss@example.com", "password": "secret2", "isAdmin": true},
		{"email": "an@example.com", "password": "dup"}
	]`
)

func TestSeedService_Run(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()
	dir := s.cfg.Seed.FixtureDir

	writeFixture(t, dir, fixture.QuizzesFile, quizzesJSON)
	writeFixture(t, dir, fixture.QuestionsFile, questionsJSON)
	writeFixture(t, dir, fixture.UsersFile, usersJSON)

	res, err := s.seed.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Quizzes)
	assert.Equal(t, int64(3), res.Questions)
	assert.Equal(t, int64(2), res.Subjects)
	assert.Equal(t, 2, res.UsersImported)
	assert.Len(t, s.events.Published(events.CatalogReseeded), 1)

	questions, err := s.questions.List(ctx)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, []string{"c1", "c2", "c3"}, []string{questions[0].QuestionText, questions[1].QuestionText, questions[2].QuestionText})
	assert.Equal(t, model.DifficultyHard, questions[1].Difficulty)

	subjects, err := s.subjects.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mạng", subjects[0].Name)

	boss, err := s.auth.Login("boss@example.com", "secret2")
	require.NoError(t, err)
	assert.Equal(t, model.Admin, boss.Role)

	// 第二次导入替换题库，不重复导入用户
	writeFixture(t, dir, fixture.SubjectsFile, `["Mạng", {"name": "mạng"}, "Toán"]`)
	res, err = s.seed.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Questions)
	assert.Equal(t, int64(2), res.Subjects)
	assert.Equal(t, 0, res.UsersImported)
	assert.Equal(t, int64(2), res.Users)
}

func TestSeedService_GenerateMissing(t *testing.T) {
	s := newTestServices(t)
	s.cfg.Seed.GenerateMissing = true
	ctx := context.Background()

	writeFixture(t, s.cfg.Seed.FixtureDir, fixture.QuizzesFile, quizzesJSON)
	writeFixture(t, s.cfg.Seed.FixtureDir, fixture.QuestionsFile, questionsJSON)

	res, err := s.seed.Run(ctx)
	require.NoError(t, err)
	// Đề 01 缺 1 道，Đề 02 缺 2 道
	assert.Equal(t, 3, res.Generated)
	assert.Equal(t, int64(6), res.Questions)

	res, err = s.seed.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.Questions)
}

func TestSeedService_MissingFilesKeepTables(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.quizzes.Create(ctx, CreateQuizInput{Title: "Thủ công", Subject: "Khác"})
	require.NoError(t, err)

	res, err := s.seed.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Quizzes)

	writeFixture(t, s.cfg.Seed.FixtureDir, fixture.QuestionsFile, `not json`)
	_, err = s.seed.Run(ctx)
	assert.Error(t, err)
}

func TestSeedService_Reseed(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	_, err := s.seed.Reseed(ctx, "wrong", false)
	assert.ErrorIs(t, err, util.ErrReseedForbidden)

	_, _, err = s.attempts.Submit(ctx, claimsFor("an@example.com", model.RoleUser), "", &model.Attempt{QuizTitle: "Đề 01"})
	require.NoError(t, err)

	writeFixture(t, s.cfg.Seed.FixtureDir, fixture.QuizzesFile, quizzesJSON)
	res, err := s.seed.Reseed(ctx, "reseed", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.HistoryDropped)
	assert.Equal(t, int64(2), res.Quizzes)

	s.cfg.Seed.ReseedSecret = ""
	_, err = s.seed.Reseed(ctx, "", false)
	assert.ErrorIs(t, err, util.ErrReseedForbidden)
}

func TestExportService_ExportAttempts(t *testing.T) {
	s := newTestServices(t)
	ctx := context.Background()

	for _, email := range []string{"an@example.com", "binh@example.com"} {
		_, _, err := s.attempts.Submit(ctx, claimsFor(email, model.RoleUser), "", &model.Attempt{QuizTitle: "Đề 01", Questions: snapshot()})
		require.NoError(t, err)
	}

	all, err := s.export.ExportAttempts("")
	require.NoError(t, err)
	assert.NotEmpty(t, all)
	// xlsx 为 zip 格式
	assert.Equal(t, "PK", string(all[:2]))

	one, err := s.export.ExportAttempts("AN@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, one)
}
