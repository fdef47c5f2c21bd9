package quiz

import (
	"fmt"
	"math/rand/v2"
	"time"

	"quiz_app_backend/internal/model"
)

// Session 一次进行中的测验，由调用方显式持有，不是并发安全的
type Session struct {
	ClientID  string
	Quiz      model.Quiz
	Questions []RenderedQuestion
	StartedAt time.Time

	selections map[int]int
}

// NewSession 选题、渲染并记录开始时间；ClientID 在提交或离线入队之前就已确定
func NewSession(q model.Quiz, catalog []model.Question, rng *rand.Rand, now time.Time) *Session {
	return &Session{
		ClientID:   model.GenerateUUID(),
		Quiz:       q,
		Questions:  Render(SelectQuestions(q, catalog), q.Title, rng),
		StartedAt:  now,
		selections: make(map[int]int),
	}
}

func (s *Session) Select(position, option int) error {
	if position < 0 || position >= len(s.Questions) {
		return fmt.Errorf("question %d out of range", position+1)
	}
	if option < 0 || option >= len(s.Questions[position].Options) {
		return fmt.Errorf("option %d out of range for question %d", option+1, position+1)
	}
	s.selections[position] = option
	return nil
}

func (s *Session) Clear(position int) {
	delete(s.selections, position)
}

func (s *Session) Selections() map[int]int {
	out := make(map[int]int, len(s.selections))
	for k, v := range s.selections {
		out[k] = v
	}
	return out
}

func (s *Session) Answered() int {
	return len(s.selections)
}

func (s *Session) Remaining(now time.Time) int {
	return Remaining(s.Quiz.Duration, s.StartedAt, now)
}

func (s *Session) Snapshot() []model.AttemptQuestion {
	out := make([]model.AttemptQuestion, len(s.Questions))
	for i, q := range s.Questions {
		out[i] = q.Snapshot()
	}
	return out
}

// Submit 计分并构造作答记录，不做任何网络或存储操作
func (s *Session) Submit(userEmail string, now time.Time) *model.Attempt {
	questions := s.Snapshot()
	res := Grade(questions, s.selections)
	elapsed := ElapsedSeconds(s.StartedAt, now)

	a := &model.Attempt{
		ClientID:     s.ClientID,
		UserEmail:    userEmail,
		QuizTitle:    s.Quiz.Title,
		Score:        res.Score,
		Total:        res.Total,
		RawScore:     res.RawScore,
		RawTotal:     res.RawTotal,
		TimeSpent:    elapsed,
		TimeText:     FormatElapsed(elapsed),
		DurationText: DurationText(s.Quiz.Duration),
		Questions:    questions,
		Answers:      res.Answers,
	}
	a.CreatedAt = now
	return a
}
