package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/training-portal/internal/model"
	"github.com/training-portal/internal/storage"
)

// EnrollmentStore is the slice of the persistence layer the engine needs.
type EnrollmentStore interface {
	Create(ctx context.Context, e *model.Enrollment) error
	FindByID(ctx context.Context, id string) (*model.Enrollment, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]model.Enrollment, error)
	SetCompleted(ctx context.Context, id string, completedAt time.Time) (bool, error)
}

// CourseReader provides the course lookups the engine needs.
type CourseReader interface {
	FindByID(ctx context.Context, id string) (*model.Course, error)
	ListActive(ctx context.Context) ([]model.Course, error)
}

// EnrollmentEngine owns the enroll and complete transitions. Lifecycle status
// itself lives on the model as a pure function of the row and the clock; the
// engine never stores it.
type EnrollmentEngine struct {
	enrollments EnrollmentStore
	courses     CourseReader
	now         func() time.Time
}

func NewEnrollmentEngine(enrollments EnrollmentStore, courses CourseReader) *EnrollmentEngine {
	return &EnrollmentEngine{
		enrollments: enrollments,
		courses:     courses,
		now:         time.Now,
	}
}

// Enroll creates the enrollment for (employeeID, courseID), snapshotting the
// course's current validity window so later course edits cannot move this
// deadline. The store's uniqueness constraint decides races: a duplicate
// insert, concurrent or not, surfaces as ErrAlreadyEnrolled. Re-enrollment
// after expiry is rejected the same way; one row per pair, ever.
func (s *EnrollmentEngine) Enroll(ctx context.Context, employeeID, courseID string) (*model.Enrollment, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil || !course.Active {
		return nil, ErrCourseUnavailable
	}

	e := &model.Enrollment{
		ID:           uuid.New().String(),
		EmployeeID:   employeeID,
		CourseID:     courseID,
		EnrolledAt:   s.now(),
		DurationDays: course.ValidityDays,
	}

	if err := s.enrollments.Create(ctx, e); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, err
	}

	return e, nil
}

// Get returns one enrollment or ErrEnrollmentNotFound.
func (s *EnrollmentEngine) Get(ctx context.Context, enrollmentID string) (*model.Enrollment, error) {
	e, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEnrollmentNotFound
	}
	return e, nil
}

// Complete sets completed_at exactly once. Completing an already-completed
// enrollment is a no-op, not an error, and completing an expired one is
// allowed: late completion is still worth recording.
func (s *EnrollmentEngine) Complete(ctx context.Context, enrollmentID string) (*model.Enrollment, error) {
	e, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEnrollmentNotFound
	}

	if e.CompletedAt != nil {
		return e, nil
	}

	completedAt := s.now()
	wrote, err := s.enrollments.SetCompleted(ctx, enrollmentID, completedAt)
	if err != nil {
		return nil, err
	}
	if !wrote {
		// Lost a race against another complete call; the stored value wins.
		return s.enrollments.FindByID(ctx, enrollmentID)
	}

	e.CompletedAt = &completedAt
	return e, nil
}

// Dashboard assembles one employee's view: every active course labeled with
// the derived status of that employee's enrollment, plus per-status counts.
func (s *EnrollmentEngine) Dashboard(ctx context.Context, employeeID string) (*model.DashboardResponse, error) {
	courses, err := s.courses.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	byCourse := make(map[string]*model.Enrollment, len(enrollments))
	for i := range enrollments {
		byCourse[enrollments[i].CourseID] = &enrollments[i]
	}

	now := s.now()
	resp := &model.DashboardResponse{Courses: make([]model.CourseWithStatus, 0, len(courses))}
	for i := range courses {
		course := courses[i]
		cws := model.CourseWithStatus{Course: &course, Status: model.StatusAvailable}

		if e, ok := byCourse[course.ID]; ok {
			cws.Status = e.Status(now)
			deadline := e.ExpiresAt()
			cws.Deadline = &deadline
			cws.Completed = e.CompletedAt
		}

		switch cws.Status {
		case model.StatusCompleted:
			resp.Stats.Completed++
		case model.StatusInProgress:
			resp.Stats.InProgress++
		case model.StatusExpired:
			resp.Stats.Expired++
		default:
			resp.Stats.Available++
		}

		resp.Courses = append(resp.Courses, cws)
	}

	return resp, nil
}
