package model

import "gorm.io/datatypes"

// AttemptOption 作答时实际展示（已打乱）的选项
type AttemptOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// AttemptQuestion 作答时的题目快照，用于回看
type AttemptQuestion struct {
	Text       string          `json:"text"`
	Subject    string          `json:"subject,omitempty"`
	Difficulty Difficulty      `json:"difficulty,omitempty"`
	Options    []AttemptOption `json:"options"`
}

// CorrectIndex 返回第一个 isCorrect 选项的下标，没有则为 -1
func (q AttemptQuestion) CorrectIndex() int {
	for i, opt := range q.Options {
		if opt.IsCorrect {
			return i
		}
	}
	return -1
}

// AttemptAnswer SelectedIndex 为 nil 表示未作答
type AttemptAnswer struct {
	SelectedIndex *int `json:"selectedIndex"`
	CorrectIndex  int  `json:"correctIndex"`
}

// Attempt 一次完成的测验记录，创建后不再修改
// swagger:model Attempt
type Attempt struct {
	DocumentBase
	ClientID     string                               `gorm:"size:36;uniqueIndex" json:"clientId"`
	UserEmail    string                               `gorm:"size:100;index" json:"userEmail"`
	QuizTitle    string                               `gorm:"size:255" json:"quizTitle"`
	Score        int                                  `json:"score"`
	Total        int                                  `json:"total"`
	RawScore     int                                  `json:"rawScore"`
	RawTotal     int                                  `json:"rawTotal"`
	TimeSpent    int                                  `json:"timeSpent"` // 秒
	TimeText     string                               `gorm:"size:20" json:"timeText"`
	DurationText string                               `gorm:"size:50" json:"durationText,omitempty"`
	Questions    datatypes.JSONSlice[AttemptQuestion] `json:"questions"`
	Answers      datatypes.JSONSlice[AttemptAnswer]   `json:"answers"`
}

func (Attempt) TableName() string {
	return "history"
}
