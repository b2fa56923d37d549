package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enum types
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// StringList stores a list of strings as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for StringList")
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// BaseModel is embedded by every collection entity. Collections are listed in
// creation order, which is the order clients render them in.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

func setUUIDIfEmpty(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// Semester
type Semester struct {
	BaseModel
	Name      string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	StartDate string `gorm:"type:varchar(10);not null" json:"startDate"`
	EndDate   string `gorm:"type:varchar(10);not null" json:"endDate"`
}

func (Semester) TableName() string { return "semesters" }

// Class
type Class struct {
	BaseModel
	ClassName         string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_class_semester" json:"className"`
	SemesterID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_class_semester" json:"semesterID"`
	AssignedTeacherID *uuid.UUID `gorm:"type:uuid" json:"assignedTeacherId,omitempty"`
	Capacity          int        `gorm:"not null;default:0" json:"capacity"`
	Description       string     `gorm:"type:text" json:"description"`
}

func (Class) TableName() string { return "classes" }

// Teacher
type Teacher struct {
	BaseModel
	FirstName   string `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName    string `gorm:"type:varchar(100);not null" json:"lastName"`
	TeacherID   string `gorm:"column:teacher_code;type:varchar(50);not null;uniqueIndex" json:"teacherID"`
	Gender      Gender `gorm:"type:varchar(10)" json:"gender"`
	Phone       string `gorm:"type:varchar(30)" json:"phone"`
	DateOfBirth string `gorm:"type:varchar(10)" json:"dateOfBirth"`
	Email       string `gorm:"type:varchar(255)" json:"email"`
}

func (Teacher) TableName() string { return "teachers" }

func (t Teacher) FullName() string {
	if t.LastName == "" {
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}

// Student
type Student struct {
	BaseModel
	FirstName   string            `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName    string            `gorm:"type:varchar(100);not null" json:"lastName"`
	StudentID   string            `gorm:"column:student_code;type:varchar(50);not null;uniqueIndex" json:"studentID"`
	Gender      Gender            `gorm:"type:varchar(10)" json:"gender"`
	DateOfBirth string            `gorm:"type:varchar(10)" json:"dateOfBirth"`
	ClassID     *uuid.UUID        `gorm:"type:uuid;index" json:"classId,omitempty"`
	ParentName  string            `gorm:"type:varchar(200)" json:"parentName"`
	ParentPhone string            `gorm:"type:varchar(30)" json:"parentPhone"`
	Address     string            `gorm:"type:text" json:"address"`
	Documents   []StudentDocument `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"documents,omitempty"`
}

func (Student) TableName() string { return "students" }

// StudentDocument is a file attached to a student and kept in object storage.
type StudentDocument struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID   uuid.UUID `gorm:"type:uuid;not null;index" json:"studentId"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"fileName"`
	ObjectKey   string    `gorm:"type:text;not null" json:"objectKey"`
	ContentType string    `gorm:"type:varchar(100);not null" json:"contentType"`
	Size        int64     `gorm:"not null" json:"size"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
}

func (StudentDocument) TableName() string { return "student_documents" }

func (m *StudentDocument) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&m.ID)
	return nil
}

// News
type News struct {
	BaseModel
	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Content     string `gorm:"type:text;not null" json:"content"`
	Author      string `gorm:"type:varchar(100)" json:"author"`
	ImageURL    string `gorm:"type:text" json:"imageUrl"`
	PublishedAt string `gorm:"type:varchar(10);not null" json:"publishedAt"`
}

func (News) TableName() string { return "news" }

// UserAccount
type UserAccount struct {
	BaseModel
	FullName     string     `gorm:"type:varchar(200);not null" json:"fullName"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'parent'" json:"role"`
	Students     StringList `gorm:"type:text" json:"students"`
}

func (UserAccount) TableName() string { return "user_accounts" }

// AllModels lists every persisted model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Semester{},
		&Teacher{},
		&Class{},
		&Student{},
		&StudentDocument{},
		&News{},
		&UserAccount{},
	}
}
