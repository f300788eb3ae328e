package service

import "errors"

// Business-rule errors. Handlers map these to HTTP statuses with errors.Is;
// anything else coming out of a service is an internal failure and must not
// leak storage details to the caller.
var (
	// ErrAlreadyEnrolled indicates an enrollment for the (employee, course)
	// pair already exists.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")

	// ErrCourseUnavailable indicates the course does not exist or is inactive.
	ErrCourseUnavailable = errors.New("course not available")

	// ErrEnrollmentNotFound indicates the enrollment does not exist.
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	// ErrTokenInvalid indicates a reset token that is unknown, expired or
	// already consumed. The three cases are deliberately indistinguishable.
	ErrTokenInvalid = errors.New("invalid or expired token")

	// ErrWeakPassword indicates the password fails the strength policy.
	ErrWeakPassword = errors.New("password does not meet the policy")

	// ErrDeleteBlocked indicates a delete was refused because dependent
	// rows still reference the entity.
	ErrDeleteBlocked = errors.New("delete blocked by existing references")

	// ErrUnknownEntity indicates a delete check for an entity kind the
	// guard does not know.
	ErrUnknownEntity = errors.New("unknown entity kind")
)
