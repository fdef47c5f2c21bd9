package quiz

import "quiz_app_backend/internal/model"

// DefaultQuestionCount totalMarks 未设置时的目标题数
const DefaultQuestionCount = 15

func TargetCount(q model.Quiz) int {
	if q.TotalMarks > 0 {
		return q.TotalMarks
	}
	return DefaultQuestionCount
}

// SelectQuestions 按以下顺序为测验选题，结果保持 catalog 原有顺序：
// 先取指定给该测验的题目；不足时从同科目未指定给其他测验的题目中补齐（按题干去重）；
// 仍为空时退回到整个题库的前 N 道。
func SelectQuestions(q model.Quiz, catalog []model.Question) []model.Question {
	target := TargetCount(q)
	title := NormalizeText(q.Title)

	var assigned []model.Question
	for _, item := range catalog {
		if t := NormalizeText(item.QuizTitle); t != "" && t == title {
			assigned = append(assigned, item)
		}
	}

	if len(assigned) >= target {
		return append([]model.Question(nil), assigned[:target]...)
	}

	selected := append([]model.Question(nil), assigned...)
	seen := make(map[string]bool, len(selected))
	for _, item := range selected {
		seen[item.QuestionText] = true
	}

	for _, item := range catalog {
		if len(selected) >= target {
			break
		}
		if NormalizeText(item.QuizTitle) != "" {
			// 已指定给本测验的在上面处理过，指定给其他测验的不借用
			continue
		}
		if !SameSubject(item.Subject, q.Subject) || seen[item.QuestionText] {
			continue
		}
		seen[item.QuestionText] = true
		selected = append(selected, item)
	}

	if len(selected) == 0 {
		n := target
		if n > len(catalog) {
			n = len(catalog)
		}
		return append([]model.Question(nil), catalog[:n]...)
	}

	return selected
}
