package repository

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"gorm.io/gorm"
)

type UserAccountRepository struct {
	db *gorm.DB
}

func NewUserAccountRepository(db *gorm.DB) *UserAccountRepository {
	return &UserAccountRepository{db: db}
}

func (r *UserAccountRepository) List() ([]domain.UserAccount, error) {
	var accounts []domain.UserAccount
	err := r.db.Order("created_at ASC").Find(&accounts).Error
	return accounts, err
}

func (r *UserAccountRepository) FindByID(id uuid.UUID) (*domain.UserAccount, error) {
	var account domain.UserAccount
	err := r.db.Where("id = ?", id).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *UserAccountRepository) FindByEmail(email string) (*domain.UserAccount, error) {
	var account domain.UserAccount
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *UserAccountRepository) Create(account *domain.UserAccount) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	return r.db.Create(account).Error
}

func (r *UserAccountRepository) Update(account *domain.UserAccount) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	return r.db.Save(account).Error
}

func (r *UserAccountRepository) Delete(id uuid.UUID) (bool, error) {
	res := r.db.Where("id = ?", id).Delete(&domain.UserAccount{})
	return res.RowsAffected > 0, res.Error
}

func (r *UserAccountRepository) EmailExists(email string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.Model(&domain.UserAccount{}).Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *UserAccountRepository) CountAdmins() (int64, error) {
	var count int64
	err := r.db.Model(&domain.UserAccount{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error
	return count, err
}
