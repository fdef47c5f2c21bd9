package model

// Subject 名称大小写不敏感唯一，由服务层保证
// swagger:model Subject
type Subject struct {
	DocumentBase
	Name string `gorm:"size:100;not null;index" json:"name"`
}

func (Subject) TableName() string {
	return "subjects"
}
