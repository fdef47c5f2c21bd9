package repository

import (
	"quiz_app_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// 题目顺序决定选题结果，统一按插入顺序返回
const questionOrder = "created_at ASC, id ASC"

func (r *QuestionRepository) FindAll() ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Order(questionOrder).Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) FindBySubject(subject string) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("subject = ?", subject).Order(questionOrder).Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var question model.Question
	err := r.DB.Where("id = ?", id).First(&question).Error
	return &question, err
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) CreateMany(questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(questions, 200).Error
}

func (r *QuestionRepository) Delete(id string) (int64, error) {
	res := r.DB.Where("id = ?", id).Delete(&model.Question{})
	return res.RowsAffected, res.Error
}

func (r *QuestionRepository) CountByQuizTitle(title string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("quiz_title = ?", title).Count(&count).Error
	return count, err
}

func (r *QuestionRepository) ReplaceAll(questions []model.Question) error {
	if err := r.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Question{}).Error; err != nil {
		return err
	}
	return r.CreateMany(questions)
}

func (r *QuestionRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Count(&count).Error
	return count, err
}
