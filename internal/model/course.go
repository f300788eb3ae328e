package model

import "time"

// Course is a training course. ValidityDays is the current configured
// completion window; editing it never touches enrollments issued earlier,
// which carry their own snapshot of the value.
type Course struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	TeacherID    string    `json:"teacher_id" db:"teacher_id"`
	CategoryID   *string   `json:"category_id,omitempty" db:"category_id"`
	ValidityDays int       `json:"validity_days" db:"validity_days"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Joined fields, populated by list queries.
	TeacherName    string  `json:"teacher_name,omitempty" db:"teacher_name"`
	TeacherSurname string  `json:"teacher_surname,omitempty" db:"teacher_surname"`
	CategoryName   *string `json:"category_name,omitempty" db:"category_name"`
}

type CreateCourseRequest struct {
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description"`
	TeacherID    string  `json:"teacher_id" validate:"required"`
	CategoryID   *string `json:"category_id"`
	ValidityDays int     `json:"validity_days" validate:"required,gt=0"`
	Active       bool    `json:"active"`
}

// UpdateCourseRequest carries partial updates; nil fields are left alone.
// An empty CategoryID clears the category.
type UpdateCourseRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	TeacherID    *string `json:"teacher_id"`
	CategoryID   *string `json:"category_id"`
	ValidityDays *int    `json:"validity_days"`
	Active       *bool   `json:"active"`
}
