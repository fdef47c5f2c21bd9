package fixture

import (
	"encoding/json"
	"strings"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"
)

const (
	SubjectsFile  = "subjects.json"
	QuizzesFile   = "quizzes.json"
	QuestionsFile = "questions.json"
	UsersFile     = "users.json"
)

// Subject 既可以是字符串也可以是 {"name": "..."}
type Subject struct {
	Name string `json:"name"`
}

func (s *Subject) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		s.Name = name
		return nil
	}
	type plain Subject
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = Subject(p)
	return nil
}

type Quiz struct {
	Title      string `json:"title"`
	Subject    string `json:"subject"`
	Duration   int    `json:"duration"`
	TotalMarks int    `json:"totalMarks"`
}

func (q Quiz) Model() model.Quiz {
	duration := q.Duration
	if duration <= 0 {
		duration = 15
	}
	return model.Quiz{
		Title:      strings.TrimSpace(q.Title),
		Subject:    strings.TrimSpace(q.Subject),
		Duration:   duration,
		TotalMarks: q.TotalMarks,
	}
}

type Question struct {
	Subject       string   `json:"subject"`
	QuizTitle     string   `json:"quizTitle,omitempty"`
	QuestionText  string   `json:"questionText"`
	Text          string   `json:"text,omitempty"`
	Title         string   `json:"title,omitempty"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Difficulty    string   `json:"difficulty,omitempty"`
}

// Body 题干字段依次回退 questionText / text / title
func (q Question) Body() string {
	for _, s := range []string{q.QuestionText, q.Text, q.Title} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func (q Question) Model() model.Question {
	return model.Question{
		Subject:       strings.TrimSpace(q.Subject),
		QuizTitle:     strings.TrimSpace(q.QuizTitle),
		QuestionText:  q.Body(),
		Options:       append([]string(nil), q.Options...),
		CorrectAnswer: q.CorrectAnswer,
		Difficulty:    ParseDifficulty(q.Difficulty),
	}
}

func ParseDifficulty(s string) model.Difficulty {
	switch d := model.Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		return d
	}
	return ""
}

type User struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Model 密码保持原样，由调用方负责哈希
func (u User) Model() model.User {
	name := u.Username
	if name == "" {
		name = u.Name
	}
	role := model.RoleUser
	if u.IsAdmin || strings.EqualFold(u.Role, string(model.Admin)) {
		role = model.Admin
	}
	return model.User{
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(u.Email)),
		Password: u.Password,
		Avatar:   u.Avatar,
		Role:     role,
	}
}

// DeriveSubjects 没有 subjects.json 时从测验和题目中收集科目，大小写不敏感去重，保留首次出现的写法
func DeriveSubjects(quizzes []model.Quiz, questions []model.Question) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		name = quiz.NormalizeText(name)
		if name == "" || seen[quiz.FoldKey(name)] {
			return
		}
		seen[quiz.FoldKey(name)] = true
		out = append(out, name)
	}
	for _, q := range quizzes {
		add(q.Subject)
	}
	for _, q := range questions {
		add(q.Subject)
	}
	return out
}
