package model

// Quiz 通过 Subject 名称而非 ID 关联科目
// swagger:model Quiz
type Quiz struct {
	DocumentBase
	Title      string `gorm:"size:255;not null;index" json:"title"`
	Subject    string `gorm:"size:100;index" json:"subject"`
	Duration   int    `gorm:"default:15" json:"duration"`    // 分钟
	TotalMarks int    `gorm:"default:15" json:"totalMarks"` // 目标题目数
}

func (Quiz) TableName() string {
	return "quizzes"
}
