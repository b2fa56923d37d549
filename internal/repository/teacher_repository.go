package repository

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TeacherRepository struct {
	db *gorm.DB
}

func NewTeacherRepository(db *gorm.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

func (r *TeacherRepository) List() ([]domain.Teacher, error) {
	var teachers []domain.Teacher
	err := r.db.Order("created_at ASC").Find(&teachers).Error
	return teachers, err
}

// Search matches the query against names and the teacher code, ignoring case.
func (r *TeacherRepository) Search(query string) ([]domain.Teacher, error) {
	var teachers []domain.Teacher
	q := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := r.db.
		Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(teacher_code) LIKE ?", q, q, q).
		Order("created_at ASC").
		Find(&teachers).Error
	return teachers, err
}

func (r *TeacherRepository) FindByID(id uuid.UUID) (*domain.Teacher, error) {
	var teacher domain.Teacher
	err := r.db.Where("id = ?", id).First(&teacher).Error
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *TeacherRepository) Create(teacher *domain.Teacher) error {
	return r.db.Create(teacher).Error
}

func (r *TeacherRepository) Update(teacher *domain.Teacher) error {
	return r.db.Save(teacher).Error
}

// Delete removes the teacher and unassigns them from their classes.
func (r *TeacherRepository) Delete(id uuid.UUID) (bool, error) {
	var deleted bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Class{}).Where("assigned_teacher_id = ?", id).
			Update("assigned_teacher_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Teacher{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, err
}

func (r *TeacherRepository) CodeExists(code string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.Model(&domain.Teacher{}).Where("teacher_code = ?", code)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Upsert keys teachers on their teacher code.
func (r *TeacherRepository) Upsert(teacher *domain.Teacher) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "teacher_code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "gender", "phone", "date_of_birth", "email", "updated_at",
		}),
	}).Create(teacher).Error
}
