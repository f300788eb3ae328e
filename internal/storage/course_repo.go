package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/training-portal/internal/model"
)

type CourseRepository struct {
	db *Database
}

func NewCourseRepository(db *Database) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, req *model.CreateCourseRequest) (*model.Course, error) {
	var c model.Course
	query := `
		INSERT INTO courses (id, title, description, teacher_id, category_id, validity_days, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, title, description, teacher_id, category_id, validity_days, active, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		uuid.New().String(), req.Title, req.Description, req.TeacherID, req.CategoryID, req.ValidityDays, req.Active).
		StructScan(&c)
	if err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return &c, nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	query := `SELECT id, title, description, teacher_id, category_id, validity_days, active, created_at FROM courses WHERE id = $1`
	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find course: %w", err)
	}
	return &c, nil
}

// List returns all courses with teacher and category names joined in.
func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	courses := []model.Course{}
	query := `
		SELECT c.id, c.title, c.description, c.teacher_id, c.category_id,
		       c.validity_days, c.active, c.created_at,
		       t.name AS teacher_name, t.surname AS teacher_surname,
		       cat.name AS category_name
		FROM courses c
		JOIN teachers t ON t.id = c.teacher_id
		LEFT JOIN categories cat ON cat.id = c.category_id
		ORDER BY c.title
	`
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

// ListActive returns courses an employee may enroll in.
func (r *CourseRepository) ListActive(ctx context.Context) ([]model.Course, error) {
	courses := []model.Course{}
	query := `
		SELECT c.id, c.title, c.description, c.teacher_id, c.category_id,
		       c.validity_days, c.active, c.created_at,
		       t.name AS teacher_name, t.surname AS teacher_surname,
		       cat.name AS category_name
		FROM courses c
		JOIN teachers t ON t.id = c.teacher_id
		LEFT JOIN categories cat ON cat.id = c.category_id
		WHERE c.active = true
		ORDER BY c.title
	`
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("failed to list active courses: %w", err)
	}
	return courses, nil
}

// categoryChange resolves the category_id part of an update: a nil pointer
// keeps the current value, an empty string clears it to NULL, anything else
// sets it.
func categoryChange(req *model.UpdateCourseRequest) (clear bool, value *string) {
	if req.CategoryID != nil && *req.CategoryID == "" {
		return true, nil
	}
	return false, req.CategoryID
}

// Update applies the non-nil fields of req. Changing validity_days only
// affects future enrollments; existing rows keep their snapshot.
func (r *CourseRepository) Update(ctx context.Context, id string, req *model.UpdateCourseRequest) (*model.Course, error) {
	clearCategory, categoryID := categoryChange(req)

	var c model.Course
	query := `
		UPDATE courses SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			teacher_id = COALESCE($4, teacher_id),
			category_id = CASE WHEN $5 THEN NULL ELSE COALESCE($6, category_id) END,
			validity_days = COALESCE($7, validity_days),
			active = COALESCE($8, active)
		WHERE id = $1
		RETURNING id, title, description, teacher_id, category_id, validity_days, active, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		id, req.Title, req.Description, req.TeacherID, clearCategory, categoryID, req.ValidityDays, req.Active).
		StructScan(&c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return &c, nil
}

func (r *CourseRepository) CountEnrollments(ctx context.Context, courseID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`
	if err := r.db.GetContext(ctx, &count, query, courseID); err != nil {
		return 0, fmt.Errorf("failed to count enrollments for course: %w", err)
	}
	return count, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
