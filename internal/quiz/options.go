package quiz

import (
	"math/rand/v2"
	"regexp"
	"strings"

	"quiz_app_backend/internal/model"
)

// RenderedQuestion 一次渲染中展示给用户的题目
type RenderedQuestion struct {
	Source  model.Question        `json:"source"`
	Text    string                `json:"text"`
	Options []model.AttemptOption `json:"options"`
}

// Snapshot 转为写入作答记录的快照
func (r RenderedQuestion) Snapshot() model.AttemptQuestion {
	return model.AttemptQuestion{
		Text:       r.Text,
		Subject:    r.Source.Subject,
		Difficulty: r.Source.Difficulty,
		Options:    append([]model.AttemptOption(nil), r.Options...),
	}
}

// PresentOptions 生成 {text,isCorrect} 选项并原地 Fisher–Yates 打乱。
// 选项文本重复时可能出现多个 isCorrect。
func PresentOptions(q model.Question, rng *rand.Rand) []model.AttemptOption {
	opts := make([]model.AttemptOption, len(q.Options))
	for i, text := range q.Options {
		opts[i] = model.AttemptOption{Text: text, IsCorrect: text == q.CorrectAnswer}
	}
	for i := len(opts) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		opts[i], opts[j] = opts[j], opts[i]
	}
	return opts
}

var (
	titleSeparators = regexp.MustCompile(`^[\s\-–—:.|]+`)
	// 编号后必须跟分隔符和空白，"Câu 3.14" 之类的正文不受影响
	numberedPrefix = regexp.MustCompile(`(?i)^(câu|cau|question)\s*\d+\s*[:.)\-–](\s+|$)`)
)

// StripPrefix 去掉题干中误带的测验标题和 "Câu N:" / "Question N:" 之类的前缀
func StripPrefix(text, quizTitle string) string {
	original := NormalizeText(text)
	out := original

	if title := NormalizeText(quizTitle); title != "" && strings.HasPrefix(out, title) {
		out = titleSeparators.ReplaceAllString(out[len(title):], "")
	}
	out = numberedPrefix.ReplaceAllString(out, "")
	out = strings.TrimSpace(out)

	if out == "" {
		return original
	}
	return out
}

// Render 按顺序渲染选中的题目，每次调用选项顺序独立打乱
func Render(questions []model.Question, quizTitle string, rng *rand.Rand) []RenderedQuestion {
	out := make([]RenderedQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, RenderedQuestion{
			Source:  q,
			Text:    StripPrefix(q.QuestionText, quizTitle),
			Options: PresentOptions(q, rng),
		})
	}
	return out
}
