package repository

import (
	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"gorm.io/gorm"
)

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) List() ([]domain.Student, error) {
	var students []domain.Student
	err := r.db.Order("created_at ASC").Find(&students).Error
	return students, err
}

func (r *StudentRepository) FindByID(id uuid.UUID) (*domain.Student, error) {
	var student domain.Student
	err := r.db.Preload("Documents", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("id = ?", id).First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) Create(student *domain.Student) error {
	return r.db.Create(student).Error
}

func (r *StudentRepository) Update(student *domain.Student) error {
	return r.db.Omit("Documents").Save(student).Error
}

// Delete removes the student together with their document records.
// Stored objects are returned so the caller can remove them from the bucket.
func (r *StudentRepository) Delete(id uuid.UUID) (bool, []domain.StudentDocument, error) {
	var deleted bool
	var docs []domain.StudentDocument
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", id).Find(&docs).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", id).Delete(&domain.StudentDocument{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Student{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	return deleted, docs, err
}

func (r *StudentRepository) StudentIDExists(code string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.Model(&domain.Student{}).Where("student_code = ?", code)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *StudentRepository) AddDocument(doc *domain.StudentDocument) error {
	return r.db.Create(doc).Error
}
