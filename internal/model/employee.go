package model

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Employee is a portal account. PasswordHash stays nil until the invited
// employee completes the set-password flow, so a fresh account cannot log in.
type Employee struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Surname      string    `json:"surname" db:"surname"`
	Email        string    `json:"email" db:"email"`
	PasswordHash *string   `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token      string    `json:"token"`
	ExpiresAt  int64     `json:"expires_at"`
	RedirectTo string    `json:"redirect_to"`
	User       *Employee `json:"user"`
}

type CreateEmployeeRequest struct {
	Name    string `json:"name" validate:"required"`
	Surname string `json:"surname" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Role    Role   `json:"role"`
}

// CreateEmployeeResponse carries the invite link alongside the new account;
// actual delivery of the link is up to the notification system.
type CreateEmployeeResponse struct {
	Employee   *Employee `json:"employee"`
	InviteLink string    `json:"invite_link"`
}

// SessionClaims is what the session token proves about its bearer. It is the
// only source downstream code may derive role decisions from.
type SessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
