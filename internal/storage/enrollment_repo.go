package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/training-portal/internal/model"
)

type EnrollmentRepository struct {
	db *Database
}

func NewEnrollmentRepository(db *Database) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts the enrollment row. The UNIQUE (employee_id, course_id)
// constraint turns a concurrent duplicate into ErrConflict, so exactly one
// of two racing enroll calls wins.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	query := `
		INSERT INTO enrollments (id, employee_id, course_id, enrolled_at, duration_days_at_enrollment)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, e.ID, e.EmployeeID, e.CourseID, e.EnrolledAt, e.DurationDays)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*model.Enrollment, error) {
	var e model.Enrollment
	query := `
		SELECT id, employee_id, course_id, enrolled_at, duration_days_at_enrollment, completed_at
		FROM enrollments WHERE id = $1
	`
	err := r.db.GetContext(ctx, &e, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find enrollment: %w", err)
	}
	return &e, nil
}

func (r *EnrollmentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	query := `
		SELECT id, employee_id, course_id, enrolled_at, duration_days_at_enrollment, completed_at
		FROM enrollments WHERE employee_id = $1
	`
	if err := r.db.SelectContext(ctx, &enrollments, query, employeeID); err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListAll returns every enrollment with employee and course data joined in,
// for the admin view.
func (r *EnrollmentRepository) ListAll(ctx context.Context) ([]model.Enrollment, error) {
	enrollments := []model.Enrollment{}
	query := `
		SELECT e.id, e.employee_id, e.course_id, e.enrolled_at,
		       e.duration_days_at_enrollment, e.completed_at,
		       emp.name AS employee_name, emp.surname AS employee_surname,
		       c.title AS course_title
		FROM enrollments e
		JOIN employees emp ON emp.id = e.employee_id
		JOIN courses c ON c.id = e.course_id
		ORDER BY e.enrolled_at DESC
	`
	if err := r.db.SelectContext(ctx, &enrollments, query); err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

// SetCompleted stamps completed_at only when it is still NULL, which makes
// the complete transition idempotent even under concurrent calls. Returns
// true when this call did the write.
func (r *EnrollmentRepository) SetCompleted(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	query := `UPDATE enrollments SET completed_at = $2 WHERE id = $1 AND completed_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, completedAt)
	if err != nil {
		return false, fmt.Errorf("failed to complete enrollment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to complete enrollment: %w", err)
	}
	return n > 0, nil
}
