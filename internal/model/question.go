package model

import "gorm.io/datatypes"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question QuizTitle 为空表示属于科目公共题池
// swagger:model Question
type Question struct {
	DocumentBase
	Subject       string                     `gorm:"size:100;index" json:"subject"`
	QuizTitle     string                     `gorm:"size:255;index" json:"quizTitle,omitempty"`
	QuestionText  string                     `gorm:"type:text;not null" json:"questionText"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                     `gorm:"type:text" json:"correctAnswer"`
	Difficulty    Difficulty                 `gorm:"size:10" json:"difficulty,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
