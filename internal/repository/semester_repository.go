package repository

import (
	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SemesterRepository struct {
	db *gorm.DB
}

func NewSemesterRepository(db *gorm.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

func (r *SemesterRepository) List() ([]domain.Semester, error) {
	var semesters []domain.Semester
	err := r.db.Order("created_at ASC").Find(&semesters).Error
	return semesters, err
}

func (r *SemesterRepository) FindByID(id uuid.UUID) (*domain.Semester, error) {
	var semester domain.Semester
	err := r.db.Where("id = ?", id).First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *SemesterRepository) Create(semester *domain.Semester) error {
	return r.db.Create(semester).Error
}

func (r *SemesterRepository) Update(semester *domain.Semester) error {
	return r.db.Save(semester).Error
}

// Delete reports whether a row was removed.
func (r *SemesterRepository) Delete(id uuid.UUID) (bool, error) {
	res := r.db.Where("id = ?", id).Delete(&domain.Semester{})
	return res.RowsAffected > 0, res.Error
}

func (r *SemesterRepository) NameExists(name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.Model(&domain.Semester{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *SemesterRepository) HasClasses(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Class{}).Where("semester_id = ?", id).Count(&count).Error
	return count > 0, err
}

// Upsert inserts the semester or refreshes the dates of the one with the same name.
func (r *SemesterRepository) Upsert(semester *domain.Semester) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_date", "end_date", "updated_at"}),
	}).Create(semester).Error
}
