package fixture

import (
	"fmt"

	"quiz_app_backend/internal/quiz"
)

type MergeSummary struct {
	OriginalCount      int
	GeneratedProcessed int
	Added              int
	EnrichedExisting   int
	FinalTotal         int
}

func (s MergeSummary) String() string {
	return fmt.Sprintf("originalCount=%d generatedProcessed=%d added=%d enrichedExisting=%d finalTotal=%d",
		s.OriginalCount, s.GeneratedProcessed, s.Added, s.EnrichedExisting, s.FinalTotal)
}

var enrichFields = []string{"quizTitle", "difficulty", "subject", "options", "correctAnswer"}

func body(q map[string]any) string {
	for _, key := range []string{"questionText", "text", "title"} {
		if s, ok := q[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}

// MergeQuestions 将生成的题目（仅含 quizTitle 的条目）按规范化题干合并进基础题库。
// 新题去掉 _id/__v 后追加；已有题目只补齐缺失字段，且优先采用 4 个选项的版本。
func MergeQuestions(base, generated []map[string]any) ([]map[string]any, MergeSummary) {
	summary := MergeSummary{OriginalCount: len(base)}

	index := make(map[string]map[string]any, len(base))
	for i, q := range base {
		key := quiz.NormalizeText(body(q))
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}
		index[key] = q
	}

	for _, gq := range generated {
		if gq == nil || isBlank(gq["quizTitle"]) {
			continue
		}
		summary.GeneratedProcessed++

		key := quiz.NormalizeText(body(gq))
		if key == "" {
			continue
		}

		existing, ok := index[key]
		if !ok {
			clean := make(map[string]any, len(gq))
			for k, v := range gq {
				if k == "_id" || k == "__v" {
					continue
				}
				clean[k] = v
			}
			base = append(base, clean)
			index[key] = clean
			summary.Added++
			continue
		}

		changed := false
		for _, field := range enrichFields {
			if v, has := gq[field]; has && isBlank(existing[field]) {
				existing[field] = v
				changed = true
			}
		}
		if cur, ok := existing["options"].([]any); ok {
			if next, ok := gq["options"].([]any); ok && len(cur) < 4 && len(next) == 4 {
				existing["options"] = next
				changed = true
			}
		}
		if changed {
			summary.EnrichedExisting++
		}
	}

	summary.FinalTotal = len(base)
	return base, summary
}
