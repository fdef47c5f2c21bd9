package quiz

import (
	"testing"

	"quiz_app_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(correctAt ...int) []model.AttemptQuestion {
	out := make([]model.AttemptQuestion, len(correctAt))
	for i, c := range correctAt {
		opts := make([]model.AttemptOption, 4)
		for j := range opts {
			opts[j] = model.AttemptOption{Text: string(rune('A' + j)), IsCorrect: j == c}
		}
		out[i] = model.AttemptQuestion{Text: "q", Options: opts}
	}
	return out
}

func TestScaledScore(t *testing.T) {
	assert.Equal(t, 0, ScaledScore(0, 0))
	assert.Equal(t, 0, ScaledScore(3, 0))
	assert.Equal(t, 5, ScaledScore(1, 2))
	assert.Equal(t, 10, ScaledScore(15, 15))
	assert.Equal(t, 7, ScaledScore(2, 3))
	assert.Equal(t, 3, ScaledScore(1, 3))
	// 2.5 远离零取整
	assert.Equal(t, 3, ScaledScore(1, 4))
}

func TestGrade_Scenario(t *testing.T) {
	// Đề 01: 2 câu, câu 1 chọn đúng, câu 2 chọn sai
	questions := snapshot(2, 0)

	res := Grade(questions, map[int]int{0: 2, 1: 3})

	assert.Equal(t, 1, res.RawScore)
	assert.Equal(t, 2, res.RawTotal)
	assert.Equal(t, 5, res.Score)
	assert.Equal(t, 10, res.Total)
	require.Len(t, res.Answers, 2)
	assert.Equal(t, 2, *res.Answers[0].SelectedIndex)
	assert.Equal(t, 2, res.Answers[0].CorrectIndex)
	assert.Equal(t, 3, *res.Answers[1].SelectedIndex)
	assert.Equal(t, 0, res.Answers[1].CorrectIndex)
}

func TestGrade_UnansweredAndOutOfRange(t *testing.T) {
	questions := snapshot(1, 1, 1)

	res := Grade(questions, map[int]int{1: 9, 2: 1})

	assert.Nil(t, res.Answers[0].SelectedIndex)
	assert.Nil(t, res.Answers[1].SelectedIndex)
	assert.Equal(t, 1, res.RawScore)
	assert.Equal(t, 3, res.RawTotal)
	assert.Equal(t, 3, res.Score)
}

func TestGrade_Empty(t *testing.T) {
	res := Grade(nil, nil)

	assert.Equal(t, 0, res.Score)
	assert.Equal(t, 10, res.Total)
	assert.Empty(t, res.Answers)
}

func TestRegrade_FromSnapshot(t *testing.T) {
	sel := 0
	a := &model.Attempt{
		Score:     10,
		RawScore:  4,
		RawTotal:  4,
		Questions: snapshot(0, 1),
		Answers:   []model.AttemptAnswer{{SelectedIndex: &sel, CorrectIndex: 3}},
	}

	Regrade(a)

	assert.Equal(t, 1, a.RawScore)
	assert.Equal(t, 2, a.RawTotal)
	assert.Equal(t, 5, a.Score)
	assert.Equal(t, 10, a.Total)
	require.Len(t, a.Answers, 2)
	assert.Equal(t, 0, a.Answers[0].CorrectIndex)
	assert.Nil(t, a.Answers[1].SelectedIndex)
}

func TestRegrade_WithoutSnapshot(t *testing.T) {
	a := &model.Attempt{Score: 9, RawScore: 7, RawTotal: 5}

	Regrade(a)

	assert.Equal(t, 5, a.RawScore)
	assert.Equal(t, 10, a.Score)
	assert.Equal(t, 10, a.Total)

	empty := &model.Attempt{Score: 4}
	Regrade(empty)
	assert.Equal(t, 0, empty.Score)
}

func TestCheckSnapshot(t *testing.T) {
	assert.NoError(t, CheckSnapshot(nil))
	assert.NoError(t, CheckSnapshot(snapshot(0, 3)))

	none := snapshot(0, 1)
	none[1].Options[1].IsCorrect = false
	var serr *SnapshotError
	require.ErrorAs(t, CheckSnapshot(none), &serr)
	assert.Equal(t, 1, serr.Index)
	assert.Equal(t, 0, serr.Correct)

	both := snapshot(2)
	both[0].Options[0].IsCorrect = true
	require.ErrorAs(t, CheckSnapshot(both), &serr)
	assert.Equal(t, 0, serr.Index)
	assert.Equal(t, 2, serr.Correct)
}
