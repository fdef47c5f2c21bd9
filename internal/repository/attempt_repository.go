package repository

import (
	"quiz_app_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByClientID(clientID string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.DB.Where("client_id = ?", clientID).First(&attempt).Error
	return &attempt, err
}

func (r *AttemptRepository) FindByEmail(email string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_email = ?", email).Order("created_at ASC, id ASC").Find(&attempts).Error
	return attempts, err
}

// FindAll email 为空时返回全部
func (r *AttemptRepository) FindAll(email string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	q := r.DB.Order("created_at ASC, id ASC")
	if email != "" {
		q = q.Where("user_email = ?", email)
	}
	err := q.Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) DeleteAll() (int64, error) {
	res := r.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Attempt{})
	return res.RowsAffected, res.Error
}
