package service

import (
	"context"
	"fmt"
)

// EntityKind names the entities the delete guard knows about.
type EntityKind string

const (
	KindCategory EntityKind = "category"
	KindTeacher  EntityKind = "teacher"
	KindCourse   EntityKind = "course"
)

// ReferenceCounter exposes the dependent-row counts the guard dispatches to.
type ReferenceCounter interface {
	CountCoursesByCategory(ctx context.Context, categoryID string) (int, error)
	CountCoursesByTeacher(ctx context.Context, teacherID string) (int, error)
	CountEnrollmentsByCourse(ctx context.Context, courseID string) (int, error)
}

// IntegrityGuard refuses destructive mutations while dependent rows exist.
// It is a synchronous precondition check, consulted before the delete is
// issued, never a rollback afterwards. One dispatch table instead of
// per-kind branches.
type IntegrityGuard struct {
	counts map[EntityKind]referenceCheck
}

type referenceCheck struct {
	count  func(ctx context.Context, id string) (int, error)
	reason string
}

func NewIntegrityGuard(refs ReferenceCounter) *IntegrityGuard {
	return &IntegrityGuard{
		counts: map[EntityKind]referenceCheck{
			KindCategory: {refs.CountCoursesByCategory, "courses still reference this category"},
			KindTeacher:  {refs.CountCoursesByTeacher, "courses still reference this teacher"},
			// Any enrollment blocks, whatever its lifecycle state: completed
			// enrollments are historical records worth keeping.
			KindCourse: {refs.CountEnrollmentsByCourse, "enrollments still reference this course"},
		},
	}
}

// CanDelete returns nil when the delete may proceed, ErrDeleteBlocked (with
// the reason) when dependents exist. Errors from the store fail closed: no
// answer means no delete.
func (g *IntegrityGuard) CanDelete(ctx context.Context, kind EntityKind, id string) error {
	check, ok := g.counts[kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEntity, kind)
	}

	n, err := check.count(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %s (%d)", ErrDeleteBlocked, check.reason, n)
	}
	return nil
}

// storeCounter adapts the concrete repositories to ReferenceCounter.
type storeCounter struct {
	categories interface {
		CountCourses(ctx context.Context, id string) (int, error)
	}
	teachers interface {
		CountCourses(ctx context.Context, id string) (int, error)
	}
	courses interface {
		CountEnrollments(ctx context.Context, id string) (int, error)
	}
}

// NewStoreCounter bundles the repository count queries into a ReferenceCounter.
func NewStoreCounter(
	categories interface {
		CountCourses(ctx context.Context, id string) (int, error)
	},
	teachers interface {
		CountCourses(ctx context.Context, id string) (int, error)
	},
	courses interface {
		CountEnrollments(ctx context.Context, id string) (int, error)
	},
) ReferenceCounter {
	return &storeCounter{categories: categories, teachers: teachers, courses: courses}
}

func (s *storeCounter) CountCoursesByCategory(ctx context.Context, id string) (int, error) {
	return s.categories.CountCourses(ctx, id)
}

func (s *storeCounter) CountCoursesByTeacher(ctx context.Context, id string) (int, error) {
	return s.teachers.CountCourses(ctx, id)
}

func (s *storeCounter) CountEnrollmentsByCourse(ctx context.Context, id string) (int, error) {
	return s.courses.CountEnrollments(ctx, id)
}
