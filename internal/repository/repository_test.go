package repository

import (
	"testing"
	"time"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAttemptRepository_SnapshotRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewAttemptRepository(db)

	sel := 2
	in := &model.Attempt{
		ClientID:  model.GenerateUUID(),
		UserEmail: "an@example.com",
		QuizTitle: "Đề 01",
		Score:     5, Total: 10, RawScore: 1, RawTotal: 2,
		TimeSpent: 75, TimeText: "01:15",
		Questions: []model.AttemptQuestion{
			{Text: "Stack?", Options: []model.AttemptOption{{Text: "FIFO"}, {Text: "Random"}, {Text: "LIFO", IsCorrect: true}}},
			{Text: "Queue?", Options: []model.AttemptOption{{Text: "FIFO", IsCorrect: true}, {Text: "LIFO"}}},
		},
		Answers: []model.AttemptAnswer{{SelectedIndex: &sel, CorrectIndex: 2}, {SelectedIndex: nil, CorrectIndex: 0}},
	}
	in.CreatedAt = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(in))
	require.NotEmpty(t, in.ID)

	out, err := repo.FindByEmail("an@example.com")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []model.AttemptQuestion(in.Questions), []model.AttemptQuestion(out[0].Questions))
	assert.Equal(t, []model.AttemptAnswer(in.Answers), []model.AttemptAnswer(out[0].Answers))
	assert.True(t, in.CreatedAt.Equal(out[0].CreatedAt))

	byClient, err := repo.FindByClientID(in.ClientID)
	require.NoError(t, err)
	assert.Equal(t, in.ID, byClient.ID)

	none, err := repo.FindByEmail("other@example.com")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQuizRepository_DeleteCascadesQuestions(t *testing.T) {
	db := testutil.NewDB(t)
	quizzes := NewQuizRepository(db)
	questions := NewQuestionRepository(db)

	quiz := &model.Quiz{Title: "Đề 01", Subject: "Mạng", Duration: 10, TotalMarks: 2}
	require.NoError(t, quizzes.Create(quiz))
	require.NoError(t, questions.CreateMany([]model.Question{
		{Subject: "Mạng", QuizTitle: "Đề 01", QuestionText: "a", Options: []string{"x"}, CorrectAnswer: "x"},
		{Subject: "Mạng", QuizTitle: "Đề 01", QuestionText: "b", Options: []string{"x"}, CorrectAnswer: "x"},
		{Subject: "Mạng", QuizTitle: "Đề 02", QuestionText: "c", Options: []string{"x"}, CorrectAnswer: "x"},
		{Subject: "Mạng", QuestionText: "d", Options: []string{"x"}, CorrectAnswer: "x"},
	}))

	removed, err := quizzes.DeleteWithQuestions(quiz)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	_, err = quizzes.FindByID(quiz.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	left, err := questions.FindAll()
	require.NoError(t, err)
	require.Len(t, left, 2)
	for _, q := range left {
		assert.NotEqual(t, "Đề 01", q.QuizTitle)
	}
}

func TestQuestionRepository_OrderAndFilter(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewQuestionRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	batch := []model.Question{
		{Subject: "CSDL", QuestionText: "first", Options: []string{"a", "b"}, CorrectAnswer: "a"},
		{Subject: "Mạng", QuestionText: "second", Options: []string{"a", "b"}, CorrectAnswer: "b"},
		{Subject: "CSDL", QuestionText: "third", Options: []string{"a", "b"}, CorrectAnswer: "a"},
	}
	for i := range batch {
		batch[i].CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
	}
	require.NoError(t, repo.CreateMany(batch))

	all, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].QuestionText)
	assert.Equal(t, "third", all[2].QuestionText)
	assert.Equal(t, []string{"a", "b"}, []string(all[1].Options))

	csdl, err := repo.FindBySubject("CSDL")
	require.NoError(t, err)
	assert.Len(t, csdl, 2)

	// 科目过滤是精确匹配
	lower, err := repo.FindBySubject("csdl")
	require.NoError(t, err)
	assert.Empty(t, lower)

	n, err := repo.Delete(all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	count, _ := repo.Count()
	assert.Equal(t, int64(2), count)
}

func TestSubjectRepository_FindByNameFold(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSubjectRepository(db)

	s := &model.Subject{Name: "Networking"}
	require.NoError(t, repo.Create(s))

	found, err := repo.FindByNameFold("NETWORKING", "")
	require.NoError(t, err)
	assert.Equal(t, s.ID, found.ID)

	_, err = repo.FindByNameFold("networking", s.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.ReplaceAll([]model.Subject{{Name: "A"}, {Name: "B"}}))
	all, err := repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUserRepository_UpdateAvatar(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.Create(&model.User{Name: "An", Email: "an@example.com", Password: "hash", Role: model.RoleUser}))

	n, err := repo.UpdateAvatar("an@example.com", "🐱")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err := repo.FindByEmail("an@example.com")
	require.NoError(t, err)
	assert.Equal(t, "🐱", u.Avatar)

	n, err = repo.UpdateAvatar("ghost@example.com", "🐶")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
