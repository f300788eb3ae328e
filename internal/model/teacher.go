package model

// Teacher is a course instructor, managed by admins.
type Teacher struct {
	ID             string `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	Surname        string `json:"surname" db:"surname"`
	Email          string `json:"email" db:"email"`
	Title          string `json:"title" db:"title"`
	Specialization string `json:"specialization" db:"specialization"`
	Active         bool   `json:"active" db:"active"`
	CourseCount    int    `json:"course_count" db:"course_count"`
}

type CreateTeacherRequest struct {
	Name           string `json:"name" validate:"required"`
	Surname        string `json:"surname" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Title          string `json:"title"`
	Specialization string `json:"specialization"`
	Active         bool   `json:"active"`
}
