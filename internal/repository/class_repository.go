package repository

import (
	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassRepository struct {
	db *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

func (r *ClassRepository) List() ([]domain.Class, error) {
	var classes []domain.Class
	err := r.db.Order("created_at ASC").Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) FindByID(id uuid.UUID) (*domain.Class, error) {
	var class domain.Class
	err := r.db.Where("id = ?", id).First(&class).Error
	if err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *ClassRepository) Create(class *domain.Class) error {
	return r.db.Create(class).Error
}

func (r *ClassRepository) Update(class *domain.Class) error {
	return r.db.Save(class).Error
}

func (r *ClassRepository) Delete(id uuid.UUID) (bool, error) {
	res := r.db.Where("id = ?", id).Delete(&domain.Class{})
	return res.RowsAffected > 0, res.Error
}

func (r *ClassRepository) Exists(className string, semesterID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.Model(&domain.Class{}).Where("class_name = ? AND semester_id = ?", className, semesterID)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *ClassRepository) HasStudents(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Student{}).Where("class_id = ?", id).Count(&count).Error
	return count > 0, err
}

// AssignTeacher sets or clears (nil) the class teacher.
func (r *ClassRepository) AssignTeacher(id uuid.UUID, teacherID *uuid.UUID) error {
	var value interface{}
	if teacherID != nil {
		value = *teacherID
	}
	return r.db.Model(&domain.Class{}).Where("id = ?", id).Update("assigned_teacher_id", value).Error
}

// Upsert keys classes on (class_name, semester_id).
func (r *ClassRepository) Upsert(class *domain.Class) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "class_name"}, {Name: "semester_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"assigned_teacher_id", "capacity", "description", "updated_at"}),
	}).Create(class).Error
}
