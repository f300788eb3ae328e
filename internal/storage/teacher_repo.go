package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/training-portal/internal/model"
)

type TeacherRepository struct {
	db *Database
}

func NewTeacherRepository(db *Database) *TeacherRepository {
	return &TeacherRepository{db: db}
}

func (r *TeacherRepository) Create(ctx context.Context, req *model.CreateTeacherRequest) (*model.Teacher, error) {
	var t model.Teacher
	query := `
		INSERT INTO teachers (id, name, surname, email, title, specialization, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, name, surname, email, title, specialization, active
	`
	err := r.db.QueryRowxContext(ctx, query,
		uuid.New().String(), req.Name, req.Surname, req.Email, req.Title, req.Specialization, req.Active).
		StructScan(&t)
	if err != nil {
		return nil, fmt.Errorf("failed to create teacher: %w", err)
	}
	return &t, nil
}

func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*model.Teacher, error) {
	var t model.Teacher
	query := `SELECT id, name, surname, email, title, specialization, active FROM teachers WHERE id = $1`
	err := r.db.GetContext(ctx, &t, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find teacher: %w", err)
	}
	return &t, nil
}

// List returns teachers with their derived course counts.
func (r *TeacherRepository) List(ctx context.Context) ([]model.Teacher, error) {
	teachers := []model.Teacher{}
	query := `
		SELECT t.id, t.name, t.surname, t.email, t.title, t.specialization, t.active,
		       COUNT(c.id) AS course_count
		FROM teachers t
		LEFT JOIN courses c ON c.teacher_id = t.id
		GROUP BY t.id
		ORDER BY t.surname, t.name
	`
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	return teachers, nil
}

func (r *TeacherRepository) CountCourses(ctx context.Context, teacherID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM courses WHERE teacher_id = $1`
	if err := r.db.GetContext(ctx, &count, query, teacherID); err != nil {
		return 0, fmt.Errorf("failed to count courses for teacher: %w", err)
	}
	return count, nil
}

func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete teacher: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
