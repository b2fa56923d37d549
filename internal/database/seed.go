package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kinderhub/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin creates the admin account unless the email is already taken.
// It reports whether an account was created.
func SeedAdmin(db *gorm.DB, fullName, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return false, errors.New("admin email and a password of at least 8 characters are required")
	}

	var count int64
	if err := db.Model(&domain.UserAccount{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &domain.UserAccount{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return false, err
	}
	return true, nil
}

// SeedSample fills an empty database with a small demo school year.
func SeedSample(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.Semester{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errors.New("database already has semesters, refusing to seed sample data")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		fall := &domain.Semester{Name: "Fall 2024", StartDate: "01-09-2024", EndDate: "31-01-2025"}
		spring := &domain.Semester{Name: "Spring 2025", StartDate: "01-02-2025", EndDate: "30-06-2025"}
		if err := tx.Create([]*domain.Semester{fall, spring}).Error; err != nil {
			return err
		}

		teachers := []*domain.Teacher{
			{FirstName: "Ann", LastName: "Lee", TeacherID: "T-001", Gender: domain.GenderFemale, Phone: "0812000001", DateOfBirth: "12-04-1988"},
			{FirstName: "Ben", LastName: "Stone", TeacherID: "T-002", Gender: domain.GenderMale, Phone: "0812000002", DateOfBirth: "03-11-1991"},
		}
		if err := tx.Create(teachers).Error; err != nil {
			return err
		}

		classes := []*domain.Class{
			{ClassName: "Grade 1A", SemesterID: fall.ID, AssignedTeacherID: &teachers[0].ID, Capacity: 20},
			{ClassName: "Grade 2B", SemesterID: fall.ID, AssignedTeacherID: &teachers[1].ID, Capacity: 18},
		}
		if err := tx.Create(classes).Error; err != nil {
			return err
		}

		students := []*domain.Student{
			{FirstName: "Mia", LastName: "Park", StudentID: "S-0001", Gender: domain.GenderFemale, DateOfBirth: "05-03-2019", ClassID: &classes[0].ID, ParentName: "Jin Park"},
			{FirstName: "Leo", LastName: "Cruz", StudentID: "S-0002", Gender: domain.GenderMale, DateOfBirth: "21-07-2018", ClassID: &classes[1].ID, ParentName: "Ana Cruz"},
		}
		if err := tx.Create(students).Error; err != nil {
			return err
		}

		news := &domain.News{
			Title:       "Welcome back",
			Content:     "Classes start on the first of September. See you there!",
			Author:      "Office",
			PublishedAt: "20-08-2024",
		}
		return tx.Create(news).Error
	})
}

// DropAll removes every application table.
func DropAll(db *gorm.DB) error {
	models := domain.AllModels()
	// reverse so dependents go first
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}

// Truncate deletes every row but keeps user accounts.
func Truncate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&domain.StudentDocument{}, &domain.Student{}, &domain.Class{},
			&domain.Teacher{}, &domain.Semester{}, &domain.News{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
