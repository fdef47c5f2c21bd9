package fixture

import (
	"fmt"
	"strings"

	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"
)

type optionBank struct {
	keywords []string
	choices  []string
}

var optionBanks = []optionBank{
	{[]string{"cấu trúc dữ liệu", "giải thuật"}, []string{"Array (mảng)", "LinkedList (danh sách liên kết)", "Stack (ngăn xếp)", "Queue (hàng đợi)"}},
	{[]string{"lập trình c"}, []string{"printf()", "scanf()", "malloc()", "free()"}},
	{[]string{"mạng"}, []string{"TCP", "UDP", "ARP", "ICMP"}},
	{[]string{"cơ sở dữ liệu", "csdl"}, []string{"SELECT", "INSERT", "UPDATE", "DELETE"}},
	{[]string{"hệ điều hành"}, []string{"Semaphore", "Mutex", "Scheduler", "Virtual Memory"}},
}

func rotate(items []string, shift int) []string {
	n := len(items)
	s := ((shift % n) + n) % n
	return append(append([]string(nil), items[s:]...), items[:s]...)
}

func difficultyFor(qnum int) model.Difficulty {
	switch {
	case qnum%5 == 0:
		return model.DifficultyHard
	case qnum%3 == 0:
		return model.DifficultyMedium
	}
	return model.DifficultyEasy
}

func contains(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}

// BuildOptions 按科目关键字挑选选项库并按题号轮转，结果是确定的
func BuildOptions(q model.Quiz, qnum int) ([]string, string, model.Difficulty) {
	subject := strings.ToLower(q.Subject)
	idx := (qnum - 1) % 4

	var opts []string
	var correct string

	bank := -1
	for i, b := range optionBanks {
		for _, kw := range b.keywords {
			if strings.Contains(subject, kw) {
				bank = i
				break
			}
		}
		if bank != -1 {
			break
		}
	}

	switch bank {
	case -1:
		opts = []string{
			q.Subject + " - phương án A",
			q.Subject + " - phương án B",
			q.Subject + " - phương án C",
			q.Subject + " - phương án D",
		}
		correct = opts[0]
	case 1:
		// lập trình C：奇数题 printf()，偶数题 malloc()
		opts = rotate(optionBanks[bank].choices, idx)
		correct = "malloc()"
		if qnum%2 == 1 {
			correct = "printf()"
		}
		if !contains(opts, correct) {
			opts[0] = correct
		}
	default:
		opts = rotate(optionBanks[bank].choices, idx)
		correct = opts[0]
	}

	if !contains(opts, correct) {
		correct = opts[0]
	}
	return opts, correct, difficultyFor(qnum)
}

// FillerQuestions 为题目不足的测验生成占位题，existing 为已指定给该测验的题目数
func FillerQuestions(q model.Quiz, existing int) []model.Question {
	needed := quiz.TargetCount(q)
	if existing >= needed {
		return nil
	}

	out := make([]model.Question, 0, needed-existing)
	for qnum := existing + 1; qnum <= needed; qnum++ {
		opts, correct, difficulty := BuildOptions(q, qnum)
		out = append(out, model.Question{
			Subject:       q.Subject,
			QuizTitle:     q.Title,
			QuestionText:  fmt.Sprintf("%s - Câu %d: Nội dung câu hỏi về %s (mẫu)", q.Title, qnum, q.Subject),
			Options:       opts,
			CorrectAnswer: correct,
			Difficulty:    difficulty,
		})
	}
	return out
}
