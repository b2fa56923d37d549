package repository

import (
	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"gorm.io/gorm"
)

type NewsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) *NewsRepository {
	return &NewsRepository{db: db}
}

func (r *NewsRepository) List() ([]domain.News, error) {
	var news []domain.News
	err := r.db.Order("created_at ASC").Find(&news).Error
	return news, err
}

func (r *NewsRepository) FindByID(id uuid.UUID) (*domain.News, error) {
	var news domain.News
	err := r.db.Where("id = ?", id).First(&news).Error
	if err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *NewsRepository) Create(news *domain.News) error {
	return r.db.Create(news).Error
}

func (r *NewsRepository) Update(news *domain.News) error {
	return r.db.Save(news).Error
}

func (r *NewsRepository) Delete(id uuid.UUID) (bool, error) {
	res := r.db.Where("id = ?", id).Delete(&domain.News{})
	return res.RowsAffected > 0, res.Error
}
