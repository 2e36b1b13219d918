package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/artschool-api/internal/models"
	"github.com/noah-isme/artschool-api/internal/repository/memory"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
)

func TestInstructorServiceDuplicateEmailIgnoresCase(t *testing.T) {
	s := newSchool(t)
	ctx := context.Background()
	iris := s.instructor(t, "iris@school.test")

	_, err := s.instructors.Register(ctx, InstructorRequest{FirstName: "Ivan", LastName: "Sculptor", Email: "IRIS@SCHOOL.test"})
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateEmail))

	updated, err := s.instructors.Update(ctx, iris.ID, InstructorRequest{FirstName: "Iris", LastName: "Painter", Email: "Iris@School.test", Specialization: "Watercolor"})
	require.NoError(t, err)
	assert.Equal(t, "Watercolor", updated.Specialization)

	found, err := s.instructors.ListBySpecialization(ctx, "watercolor")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = s.instructors.Get(ctx, 404)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestCourseServiceCreateCourse(t *testing.T) {
	s := newSchool(t)
	ctx := context.Background()
	iris := s.instructor(t, "iris@school.test")

	course, err := s.courses.CreateCourse(ctx, CourseRequest{
		Name:         "  Figure Drawing ",
		Term:         models.TermWinter,
		SkillLevel:   models.SkillIntermediate,
		InstructorID: iris.ID,
		Fee:          decimal.RequireFromString("99.90"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Figure Drawing", course.Name)
	assert.Equal(t, models.DefaultCourseCapacity, course.MaxCapacity)

	_, err = s.courses.CreateCourse(ctx, CourseRequest{Name: "Ghost", Term: models.TermWinter, SkillLevel: models.SkillBeginner, InstructorID: 404})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	invalid := map[string]CourseRequest{
		"negative fee": {Name: "X", Term: models.TermSummer, SkillLevel: models.SkillBeginner, InstructorID: iris.ID, Fee: decimal.NewFromInt(-1)},
		"bad term":     {Name: "X", Term: "SPRING", SkillLevel: models.SkillBeginner, InstructorID: iris.ID},
		"dates":        {Name: "X", Term: models.TermSummer, SkillLevel: models.SkillBeginner, InstructorID: iris.ID, StartDate: "2026-08-01", EndDate: "2026-07-01"},
		"capacity":     {Name: "X", Term: models.TermSummer, SkillLevel: models.SkillBeginner, InstructorID: iris.ID, MaxCapacity: -3},
	}
	for name, req := range invalid {
		_, err := s.courses.CreateCourse(ctx, req)
		assert.True(t, errors.Is(err, appErrors.ErrValidation), name)
	}
}

func TestCourseServiceFilters(t *testing.T) {
	s := newSchool(t)
	ctx := context.Background()
	iris := s.instructor(t, "iris@school.test")
	beginner := s.course(t, iris.ID, models.SkillBeginner, 5, "10")
	s.course(t, iris.ID, models.SkillAdvanced, 5, "10")

	byLevel, err := s.courses.ListBySkillLevel(ctx, models.SkillBeginner)
	require.NoError(t, err)
	require.Len(t, byLevel, 1)
	assert.Equal(t, beginner.ID, byLevel[0].ID)

	byTerm, err := s.courses.ListByTerm(ctx, models.TermSummer)
	require.NoError(t, err)
	assert.Len(t, byTerm, 2)

	_, err = s.courses.ListByTerm(ctx, "AUTUMN")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	byInstructor, err := s.courses.ListByInstructor(ctx, iris.ID)
	require.NoError(t, err)
	assert.Len(t, byInstructor, 2)

	found, err := s.courses.Search(ctx, "advanced")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	deleted, err := s.courses.Delete(ctx, beginner.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	total, err := s.courses.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCourseServiceAvailableWithoutCounterReturnsAll(t *testing.T) {
	courses := memory.NewCourseRepository()
	ctx := context.Background()
	require.NoError(t, courses.Create(ctx, &models.Course{Name: "Full", MaxCapacity: 0}))
	require.NoError(t, courses.Create(ctx, &models.Course{Name: "Open", MaxCapacity: 3}))

	svc := NewCourseService(courses, memory.NewSessionRepository(), memory.NewInstructorRepository(), nil, nil, CourseServiceConfig{}, nil, zap.NewNop())
	available, err := svc.Available(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 2)
}

func TestCourseServiceSessions(t *testing.T) {
	s := newSchool(t)
	ctx := context.Background()
	iris := s.instructor(t, "iris@school.test")
	course := s.course(t, iris.ID, models.SkillBeginner, 5, "10")

	later, err := s.courses.CreateSession(ctx, course.ID, SessionRequest{Date: "2026-06-08", StartTime: "10:00", EndTime: "12:00", Topic: "Shading"})
	require.NoError(t, err)
	_, err = s.courses.CreateSession(ctx, course.ID, SessionRequest{Date: "2026-06-01", StartTime: "10:00", EndTime: "12:00", Topic: "Lines"})
	require.NoError(t, err)

	sessions, err := s.courses.Sessions(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	_, err = s.courses.CreateSession(ctx, 404, SessionRequest{Date: "2026-06-01"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = s.courses.CreateSession(ctx, course.ID, SessionRequest{Date: "2026-06-01", StartTime: "12:00", EndTime: "10:00"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = s.courses.CreateSession(ctx, course.ID, SessionRequest{Date: "2026-06-01", StartTime: "25:00"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	deleted, err := s.courses.DeleteSession(ctx, later.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = s.courses.GetSession(ctx, later.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
