package model

import "time"

// EnrollmentStatus is derived, never stored. Recomputing it at read time is
// what keeps it consistent with the row it describes.
type EnrollmentStatus string

const (
	StatusAvailable  EnrollmentStatus = "available"
	StatusInProgress EnrollmentStatus = "in_progress"
	StatusCompleted  EnrollmentStatus = "completed"
	StatusExpired    EnrollmentStatus = "expired"
)

// Enrollment ties one employee to one course. DurationDays is a snapshot of
// the course's validity window taken at enrollment time, so later course
// edits leave the deadline of this enrollment alone.
type Enrollment struct {
	ID           string     `json:"id" db:"id"`
	EmployeeID   string     `json:"employee_id" db:"employee_id"`
	CourseID     string     `json:"course_id" db:"course_id"`
	EnrolledAt   time.Time  `json:"enrolled_at" db:"enrolled_at"`
	DurationDays int        `json:"duration_days_at_enrollment" db:"duration_days_at_enrollment"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// Joined fields, populated by admin list queries.
	EmployeeName    string `json:"employee_name,omitempty" db:"employee_name"`
	EmployeeSurname string `json:"employee_surname,omitempty" db:"employee_surname"`
	CourseTitle     string `json:"course_title,omitempty" db:"course_title"`
}

// ExpiresAt is always computed, never persisted.
func (e *Enrollment) ExpiresAt() time.Time {
	return e.EnrolledAt.AddDate(0, 0, e.DurationDays)
}

// Status classifies the enrollment at the given instant. A set CompletedAt
// wins unconditionally (late completion still counts); the deadline is
// inclusive on the expired side.
func (e *Enrollment) Status(now time.Time) EnrollmentStatus {
	if e.CompletedAt != nil {
		return StatusCompleted
	}
	if !now.Before(e.ExpiresAt()) {
		return StatusExpired
	}
	return StatusInProgress
}

type EnrollRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

// CourseWithStatus is a course as one employee sees it on the dashboard.
type CourseWithStatus struct {
	Course    *Course          `json:"course"`
	Status    EnrollmentStatus `json:"status"`
	Deadline  *time.Time       `json:"deadline,omitempty"`
	Completed *time.Time       `json:"completed_at,omitempty"`
}

type DashboardStats struct {
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	Expired    int `json:"expired"`
	Available  int `json:"available"`
}

type DashboardResponse struct {
	Stats   DashboardStats     `json:"stats"`
	Courses []CourseWithStatus `json:"courses"`
}
