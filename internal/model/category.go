package model

// Category groups courses. CourseCount is derived by the list query and backs
// the delete guard: a category with courses cannot be removed.
type Category struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Active      bool   `json:"active" db:"active"`
	CourseCount int    `json:"course_count" db:"course_count"`
}

type CreateCategoryRequest struct {
	Name   string `json:"name" validate:"required"`
	Active bool   `json:"active"`
}
