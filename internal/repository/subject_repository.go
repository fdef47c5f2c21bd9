package repository

import (
	"quiz_app_backend/internal/model"
	"quiz_app_backend/internal/quiz"

	"gorm.io/gorm"
)

type SubjectRepository struct {
	DB *gorm.DB
}

func NewSubjectRepository(db *gorm.DB) *SubjectRepository {
	return &SubjectRepository{DB: db}
}

func (r *SubjectRepository) FindAll() ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.DB.Order("created_at ASC, id ASC").Find(&subjects).Error
	return subjects, err
}

func (r *SubjectRepository) FindByID(id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.DB.Where("id = ?", id).First(&subject).Error
	return &subject, err
}

// FindByNameFold 按 Unicode 大小写折叠比较（数据库的 LOWER 在 sqlite 下只处理 ASCII），
// excludeID 用于重命名时排除自身
func (r *SubjectRepository) FindByNameFold(name, excludeID string) (*model.Subject, error) {
	subjects, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	key := quiz.FoldKey(name)
	for i := range subjects {
		if subjects[i].ID != excludeID && quiz.FoldKey(subjects[i].Name) == key {
			return &subjects[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *SubjectRepository) Create(subject *model.Subject) error {
	return r.DB.Create(subject).Error
}

func (r *SubjectRepository) Update(subject *model.Subject) error {
	return r.DB.Save(subject).Error
}

func (r *SubjectRepository) Delete(id string) (int64, error) {
	res := r.DB.Where("id = ?", id).Delete(&model.Subject{})
	return res.RowsAffected, res.Error
}

// ReplaceAll 清空后批量插入，调用方负责放在事务内
func (r *SubjectRepository) ReplaceAll(subjects []model.Subject) error {
	if err := r.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Subject{}).Error; err != nil {
		return err
	}
	if len(subjects) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(subjects, 200).Error
}

func (r *SubjectRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Subject{}).Count(&count).Error
	return count, err
}
