package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSemesterRepository_ListKeepsCreationOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSemesterRepository(db)

	for _, name := range []string{"Term 2", "Term 1", "Term 3"} {
		require.NoError(t, repo.Create(&domain.Semester{Name: name, StartDate: "01-09-2024", EndDate: "31-01-2025"}))
		time.Sleep(2 * time.Millisecond)
	}

	semesters, err := repo.List()
	require.NoError(t, err)
	require.Len(t, semesters, 3)
	assert.Equal(t, "Term 2", semesters[0].Name)
	assert.Equal(t, "Term 1", semesters[1].Name)
	assert.Equal(t, "Term 3", semesters[2].Name)
}

func TestSemesterRepository_UpsertUpdatesExistingName(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSemesterRepository(db)

	original := &domain.Semester{Name: "Fall 2024", StartDate: "01-09-2024", EndDate: "31-12-2024"}
	require.NoError(t, repo.Create(original))

	require.NoError(t, repo.Upsert(&domain.Semester{Name: "Fall 2024", StartDate: "02-09-2024", EndDate: "31-01-2025"}))
	require.NoError(t, repo.Upsert(&domain.Semester{Name: "Spring 2025", StartDate: "01-02-2025", EndDate: "30-06-2025"}))

	semesters, err := repo.List()
	require.NoError(t, err)
	require.Len(t, semesters, 2)

	stored, err := repo.FindByID(original.ID)
	require.NoError(t, err)
	assert.Equal(t, "02-09-2024", stored.StartDate)
	assert.Equal(t, "31-01-2025", stored.EndDate)
}

func TestSemesterRepository_DeleteReportsMissing(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSemesterRepository(db)

	deleted, err := repo.Delete(uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)

	s := &domain.Semester{Name: "Term", StartDate: "01-09-2024", EndDate: "31-01-2025"}
	require.NoError(t, repo.Create(s))
	deleted, err = repo.Delete(s.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestClassRepository_UpsertAndAssignTeacher(t *testing.T) {
	db := testutil.NewTestDB(t)
	semesters := NewSemesterRepository(db)
	classes := NewClassRepository(db)

	s := &domain.Semester{Name: "Term", StartDate: "01-09-2024", EndDate: "31-01-2025"}
	require.NoError(t, semesters.Create(s))

	require.NoError(t, classes.Upsert(&domain.Class{ClassName: "Grade 1A", SemesterID: s.ID, Capacity: 20}))
	require.NoError(t, classes.Upsert(&domain.Class{ClassName: "Grade 1A", SemesterID: s.ID, Capacity: 25}))

	list, err := classes.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 25, list[0].Capacity)

	teacherID := uuid.New()
	require.NoError(t, classes.AssignTeacher(list[0].ID, &teacherID))
	c, err := classes.FindByID(list[0].ID)
	require.NoError(t, err)
	require.NotNil(t, c.AssignedTeacherID)
	assert.Equal(t, teacherID, *c.AssignedTeacherID)

	require.NoError(t, classes.AssignTeacher(list[0].ID, nil))
	c, err = classes.FindByID(list[0].ID)
	require.NoError(t, err)
	assert.Nil(t, c.AssignedTeacherID)

	hasClasses, err := semesters.HasClasses(s.ID)
	require.NoError(t, err)
	assert.True(t, hasClasses)
}

func TestTeacherRepository_SearchAndDelete(t *testing.T) {
	db := testutil.NewTestDB(t)
	teachers := NewTeacherRepository(db)
	classes := NewClassRepository(db)

	ann := &domain.Teacher{FirstName: "Ann", LastName: "Lee", TeacherID: "T-001"}
	bob := &domain.Teacher{FirstName: "Bob", LastName: "Stone", TeacherID: "T-002"}
	require.NoError(t, teachers.Create(ann))
	require.NoError(t, teachers.Create(bob))

	found, err := teachers.Search("LEE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ann.ID, found[0].ID)

	found, err = teachers.Search("t-00")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	class := &domain.Class{ClassName: "Grade 1A", SemesterID: uuid.New(), AssignedTeacherID: &ann.ID}
	require.NoError(t, classes.Create(class))

	deleted, err := teachers.Delete(ann.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	c, err := classes.FindByID(class.ID)
	require.NoError(t, err)
	assert.Nil(t, c.AssignedTeacherID)
}

func TestTeacherRepository_UpsertByCode(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTeacherRepository(db)

	require.NoError(t, repo.Upsert(&domain.Teacher{FirstName: "Ann", LastName: "Lee", TeacherID: "T-001"}))
	require.NoError(t, repo.Upsert(&domain.Teacher{FirstName: "Anne", LastName: "Lee", TeacherID: "T-001", Phone: "0812"}))

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Anne", list[0].FirstName)
	assert.Equal(t, "0812", list[0].Phone)
}

func TestStudentRepository_DeleteReturnsDocuments(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewStudentRepository(db)

	student := &domain.Student{FirstName: "Mia", LastName: "Park", StudentID: "S-1"}
	require.NoError(t, repo.Create(student))
	require.NoError(t, repo.AddDocument(&domain.StudentDocument{
		StudentID: student.ID, FileName: "birth.pdf", ObjectKey: "students/x/birth.pdf", ContentType: "application/pdf", Size: 10,
	}))

	loaded, err := repo.FindByID(student.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Documents, 1)

	exists, err := repo.StudentIDExists("S-1", nil)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.StudentIDExists("S-1", &student.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	deleted, docs, err := repo.Delete(student.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	require.Len(t, docs, 1)
	assert.Equal(t, "students/x/birth.pdf", docs[0].ObjectKey)

	var remaining int64
	db.Model(&domain.StudentDocument{}).Count(&remaining)
	assert.Equal(t, int64(0), remaining)
}

func TestUserAccountRepository_EmailIsNormalized(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserAccountRepository(db)

	account := &domain.UserAccount{
		FullName: "Head Teacher", Email: "  Admin@Example.COM ", PasswordHash: "x",
		Role: domain.RoleAdmin, Students: domain.StringList{"S-1"},
	}
	require.NoError(t, repo.Create(account))

	found, err := repo.FindByEmail("admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
	assert.Equal(t, domain.StringList{"S-1"}, found.Students)

	exists, err := repo.EmailExists("ADMIN@example.com", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	admins, err := repo.CountAdmins()
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)
}
