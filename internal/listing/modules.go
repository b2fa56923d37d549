package listing

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/kinderhub/backend/internal/client"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
	"github.com/rs/zerolog/log"
)

// Options are shared by every module constructor.
type Options struct {
	PageSize int
	Notifier Notifier
	Confirm  func(label string) bool
}

func confirmWith[T any](o Options, label func(T) string) func(T) bool {
	if o.Confirm == nil {
		return nil
	}
	return func(item T) bool { return o.Confirm(label(item)) }
}

var errInvalidDate = errors.New("dates must look like DD-MM-YYYY")

func validDate(value string) error {
	if !domain.ValidDate(value) {
		return errInvalidDate
	}
	return nil
}

// onOrAfter and onOrBefore compare canonical dates; an unparsable item
// date never matches.
func onOrAfter(date, bound string) bool {
	return domain.ValidDate(date) && domain.DateOrdered(bound, date)
}

func onOrBefore(date, bound string) bool {
	return domain.ValidDate(date) && domain.DateOrdered(date, bound)
}

// ClassRow is a class joined with the names of its semester and teacher.
type ClassRow struct {
	dto.ClassDTO
	SemesterName string
	TeacherName  string
}

// Classes lists classes. Semester and teacher names come from separate
// fetches; when those fail the names stay empty.
func Classes(c *client.Client, o Options) *Controller[ClassRow] {
	fetch := func(ctx context.Context) client.Result[[]ClassRow] {
		classes, err := c.Classes(ctx).Unwrap()
		if err != nil {
			return client.Result[[]ClassRow]{Err: err}
		}

		semesterNames := map[uuid.UUID]string{}
		if semesters, err := c.Semesters(ctx).Unwrap(); err != nil {
			log.Warn().Err(err).Msg("failed to fetch semesters for class list")
		} else {
			for _, s := range semesters {
				semesterNames[s.ID] = s.Name
			}
		}
		teacherNames := map[uuid.UUID]string{}
		if teachers, err := c.Teachers(ctx).Unwrap(); err != nil {
			log.Warn().Err(err).Msg("failed to fetch teachers for class list")
		} else {
			for _, t := range teachers {
				teacherNames[t.ID] = strings.TrimSpace(t.FirstName + " " + t.LastName)
			}
		}

		return client.Result[[]ClassRow]{Value: JoinClasses(classes, semesterNames, teacherNames)}
	}

	return New(Config[ClassRow]{
		Name:   "class",
		Fetch:  fetch,
		Remove: c.DeleteClass,
		ID:     func(r ClassRow) uuid.UUID { return r.ID },
		SearchText: func(r ClassRow) []string {
			return []string{r.ClassName, r.SemesterName}
		},
		Filters: map[string]Filter[ClassRow]{
			"semester": {Match: func(r ClassRow, v string) bool {
				return r.SemesterID.String() == v || strings.EqualFold(r.SemesterName, v)
			}},
			"teacher": {Match: func(r ClassRow, v string) bool {
				if r.AssignedTeacherID == nil {
					return false
				}
				return r.AssignedTeacherID.String() == v || strings.EqualFold(r.TeacherName, v)
			}},
		},
		Columns: []Column[ClassRow]{
			{"ID", func(r ClassRow) interface{} { return r.ID.String() }},
			{"Class Name", func(r ClassRow) interface{} { return r.ClassName }},
			{"Semester", func(r ClassRow) interface{} { return r.SemesterName }},
			{"Teacher", func(r ClassRow) interface{} { return r.TeacherName }},
			{"Capacity", func(r ClassRow) interface{} { return r.Capacity }},
			{"Description", func(r ClassRow) interface{} { return r.Description }},
		},
		PageSize: o.PageSize,
		Notifier: o.Notifier,
		Confirm:  confirmWith(o, func(r ClassRow) string { return "class " + r.ClassName }),
	})
}

// JoinClasses resolves semester and teacher names for each class.
func JoinClasses(classes []dto.ClassDTO, semesterNames, teacherNames map[uuid.UUID]string) []ClassRow {
	rows := make([]ClassRow, 0, len(classes))
	for _, cl := range classes {
		row := ClassRow{ClassDTO: cl, SemesterName: semesterNames[cl.SemesterID]}
		if cl.AssignedTeacherID != nil {
			row.TeacherName = teacherNames[*cl.AssignedTeacherID]
		}
		rows = append(rows, row)
	}
	return rows
}

// Semesters lists semesters. The from and to filters keep semesters that
// overlap the range.
func Semesters(c *client.Client, o Options) *Controller[dto.SemesterDTO] {
	return New(Config[dto.SemesterDTO]{
		Name:   "semester",
		Fetch:  c.Semesters,
		Remove: c.DeleteSemester,
		ID:     func(s dto.SemesterDTO) uuid.UUID { return s.ID },
		SearchText: func(s dto.SemesterDTO) []string {
			return []string{s.Name}
		},
		Filters: map[string]Filter[dto.SemesterDTO]{
			"from": {Match: func(s dto.SemesterDTO, v string) bool { return onOrAfter(s.EndDate, v) }, Validate: validDate},
			"to":   {Match: func(s dto.SemesterDTO, v string) bool { return onOrBefore(s.StartDate, v) }, Validate: validDate},
		},
		Columns: []Column[dto.SemesterDTO]{
			{"ID", func(s dto.SemesterDTO) interface{} { return s.ID.String() }},
			{"Name", func(s dto.SemesterDTO) interface{} { return s.Name }},
			{"Start Date", func(s dto.SemesterDTO) interface{} { return s.StartDate }},
			{"End Date", func(s dto.SemesterDTO) interface{} { return s.EndDate }},
		},
		PageSize: o.PageSize,
		Notifier: o.Notifier,
		Confirm:  confirmWith(o, func(s dto.SemesterDTO) string { return "semester " + s.Name }),
	})
}

func Teachers(c *client.Client, o Options) *Controller[dto.TeacherDTO] {
	return New(Config[dto.TeacherDTO]{
		Name:   "teacher",
		Fetch:  c.Teachers,
		Remove: c.DeleteTeacher,
		ID:     func(t dto.TeacherDTO) uuid.UUID { return t.ID },
		SearchText: func(t dto.TeacherDTO) []string {
			return []string{t.FirstName, t.LastName, t.FirstName + " " + t.LastName, t.TeacherID, t.Phone}
		},
		Filters: map[string]Filter[dto.TeacherDTO]{
			"gender": {Match: func(t dto.TeacherDTO, v string) bool { return strings.EqualFold(t.Gender, v) }},
		},
		Columns: []Column[dto.TeacherDTO]{
			{"ID", func(t dto.TeacherDTO) interface{} { return t.ID.String() }},
			{"Teacher ID", func(t dto.TeacherDTO) interface{} { return t.TeacherID }},
			{"First Name", func(t dto.TeacherDTO) interface{} { return t.FirstName }},
			{"Last Name", func(t dto.TeacherDTO) interface{} { return t.LastName }},
			{"Gender", func(t dto.TeacherDTO) interface{} { return t.Gender }},
			{"Phone", func(t dto.TeacherDTO) interface{} { return t.Phone }},
			{"Date of Birth", func(t dto.TeacherDTO) interface{} { return t.DateOfBirth }},
			{"Email", func(t dto.TeacherDTO) interface{} { return t.Email }},
		},
		PageSize: o.PageSize,
		Notifier: o.Notifier,
		Confirm:  confirmWith(o, func(t dto.TeacherDTO) string { return "teacher " + t.TeacherID }),
	})
}

func Students(c *client.Client, o Options) *Controller[dto.StudentDTO] {
	return New(Config[dto.StudentDTO]{
		Name:   "student",
		Fetch:  c.Students,
		Remove: c.DeleteStudent,
		ID:     func(s dto.StudentDTO) uuid.UUID { return s.ID },
		SearchText: func(s dto.StudentDTO) []string {
			return []string{s.FirstName, s.LastName, s.FirstName + " " + s.LastName, s.StudentID}
		},
		Filters: map[string]Filter[dto.StudentDTO]{
			"class": {Match: func(s dto.StudentDTO, v string) bool {
				return s.ClassID != nil && s.ClassID.String() == v
			}},
			"gender": {Match: func(s dto.StudentDTO, v string) bool { return strings.EqualFold(s.Gender, v) }},
		},
		Columns: []Column[dto.StudentDTO]{
			{"ID", func(s dto.StudentDTO) interface{} { return s.ID.String() }},
			{"Student ID", func(s dto.StudentDTO) interface{} { return s.StudentID }},
			{"First Name", func(s dto.StudentDTO) interface{} { return s.FirstName }},
			{"Last Name", func(s dto.StudentDTO) interface{} { return s.LastName }},
			{"Gender", func(s dto.StudentDTO) interface{} { return s.Gender }},
			{"Date of Birth", func(s dto.StudentDTO) interface{} { return s.DateOfBirth }},
			{"Parent", func(s dto.StudentDTO) interface{} { return s.ParentName }},
			{"Parent Phone", func(s dto.StudentDTO) interface{} { return s.ParentPhone }},
		},
		PageSize: o.PageSize,
		Notifier: o.Notifier,
		Confirm:  confirmWith(o, func(s dto.StudentDTO) string { return "student " + s.StudentID }),
	})
}

// News lists posts. The from and to filters bound publishedAt.
func News(c *client.Client, o Options) *Controller[dto.NewsDTO] {
	return New(Config[dto.NewsDTO]{
		Name:   "news",
		Fetch:  c.News,
		Remove: c.DeleteNews,
		ID:     func(n dto.NewsDTO) uuid.UUID { return n.ID },
		SearchText: func(n dto.NewsDTO) []string {
			return []string{n.Title, n.Author}
		},
		Filters: map[string]Filter[dto.NewsDTO]{
			"from": {Match: func(n dto.NewsDTO, v string) bool { return onOrAfter(n.PublishedAt, v) }, Validate: validDate},
			"to":   {Match: func(n dto.NewsDTO, v string) bool { return onOrBefore(n.PublishedAt, v) }, Validate: validDate},
		},
		Columns: []Column[dto.NewsDTO]{
			{"ID", func(n dto.NewsDTO) interface{} { return n.ID.String() }},
			{"Title", func(n dto.NewsDTO) interface{} { return n.Title }},
			{"Author", func(n dto.NewsDTO) interface{} { return n.Author }},
			{"Published", func(n dto.NewsDTO) interface{} { return n.PublishedAt }},
			{"Content", func(n dto.NewsDTO) interface{} { return n.Content }},
		},
		PageSize: o.PageSize,
		Notifier: o.Notifier,
		Confirm:  confirmWith(o, func(n dto.NewsDTO) string { return "news post " + n.Title }),
	})
}

func UserAccounts(c *client.Client, o Options) *Controller[dto.UserAccountDTO] {
	return New(Config[dto.UserAccountDTO]{
		Name:   "user account",
		Fetch:  c.UserAccounts,
		Remove: c.DeleteUserAccount,
		ID:     func(u dto.UserAccountDTO) uuid.UUID { return u.ID },
		SearchText: func(u dto.UserAccountDTO) []string {
			return []string{u.FullName, u.Email}
		},
		Filters: map[string]Filter[dto.UserAccountDTO]{
			"role": {Match: func(u dto.UserAccountDTO, v string) bool { return strings.EqualFold(u.Role, v) }},
		},
		Columns: []Column[dto.UserAccountDTO]{
			{"ID", func(u dto.UserAccountDTO) interface{} { return u.ID.String() }},
			{"Full Name", func(u dto.UserAccountDTO) interface{} { return u.FullName }},
			{"Email", func(u dto.UserAccountDTO) interface{} { return u.Email }},
			{"Role", func(u dto.UserAccountDTO) interface{} { return u.Role }},
			{"Students", func(u dto.UserAccountDTO) interface{} { return strings.Join(u.Students, ", ") }},
		},
		PageSize: o.PageSize,
		Notifier: o.Notifier,
		Confirm:  confirmWith(o, func(u dto.UserAccountDTO) string { return "user account " + u.Email }),
	})
}
