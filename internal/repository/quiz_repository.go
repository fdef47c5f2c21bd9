package repository

import (
	"quiz_app_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) FindAll() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.Order("created_at ASC, id ASC").Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Where("id = ?", id).First(&quiz).Error
	return &quiz, err
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

// DeleteWithQuestions 删除测验及 quizTitle 与其标题相同的全部题目，返回删除的题目数
func (r *QuizRepository) DeleteWithQuestions(quiz *model.Quiz) (int64, error) {
	var removed int64
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("quiz_title = ?", quiz.Title).Delete(&model.Question{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Where("id = ?", quiz.ID).Delete(&model.Quiz{}).Error
	})
	return removed, err
}

func (r *QuizRepository) ReplaceAll(quizzes []model.Quiz) error {
	if err := r.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Quiz{}).Error; err != nil {
		return err
	}
	if len(quizzes) == 0 {
		return nil
	}
	return r.DB.CreateInBatches(quizzes, 200).Error
}

func (r *QuizRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Quiz{}).Count(&count).Error
	return count, err
}
