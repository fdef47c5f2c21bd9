package quiz

import (
	"fmt"
	"math"

	"quiz_app_backend/internal/model"
)

// ScaledTotal 所有测验统一折算为 10 分制
const ScaledTotal = 10

// ScaledScore round(raw/total*10)，total 为 0 时得 0
func ScaledScore(raw, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(raw) / float64(total) * ScaledTotal))
}

type Result struct {
	RawScore int
	RawTotal int
	Score    int
	Total    int
	Answers  []model.AttemptAnswer
}

// Grade selections 以题目位置为键，缺省表示未作答；越界下标按未作答处理
func Grade(questions []model.AttemptQuestion, selections map[int]int) Result {
	res := Result{
		RawTotal: len(questions),
		Total:    ScaledTotal,
		Answers:  make([]model.AttemptAnswer, len(questions)),
	}

	for i, q := range questions {
		answer := model.AttemptAnswer{CorrectIndex: q.CorrectIndex()}
		if sel, ok := selections[i]; ok && sel >= 0 && sel < len(q.Options) {
			picked := sel
			answer.SelectedIndex = &picked
			if q.Options[sel].IsCorrect {
				res.RawScore++
			}
		}
		res.Answers[i] = answer
	}

	res.Score = ScaledScore(res.RawScore, res.RawTotal)
	return res
}

// SnapshotError 快照中某题的正确选项数不为 1
type SnapshotError struct {
	Index   int
	Correct int
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("question %d has %d correct options, want exactly 1", e.Index+1, e.Correct)
}

// CheckSnapshot 每道题必须恰好有一个 isCorrect 选项
func CheckSnapshot(questions []model.AttemptQuestion) error {
	for i, q := range questions {
		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return &SnapshotError{Index: i, Correct: correct}
		}
	}
	return nil
}

// Regrade 依据快照重新计算分数，保证 score 与 rawScore/rawTotal 一致。
// 没有快照时信任提交的 rawScore/rawTotal。
func Regrade(a *model.Attempt) {
	if len(a.Questions) == 0 {
		if a.RawScore < 0 {
			a.RawScore = 0
		}
		if a.RawScore > a.RawTotal {
			a.RawScore = a.RawTotal
		}
		a.Score = ScaledScore(a.RawScore, a.RawTotal)
		a.Total = ScaledTotal
		return
	}

	selections := make(map[int]int, len(a.Answers))
	for i, ans := range a.Answers {
		if i < len(a.Questions) && ans.SelectedIndex != nil {
			selections[i] = *ans.SelectedIndex
		}
	}

	res := Grade(a.Questions, selections)
	a.RawScore = res.RawScore
	a.RawTotal = res.RawTotal
	a.Score = res.Score
	a.Total = res.Total
	a.Answers = res.Answers
}
