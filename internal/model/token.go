package model

import "time"

type TokenPurpose string

const (
	PurposeInvite TokenPurpose = "invite"
	PurposeReset  TokenPurpose = "reset"
)

// ResetToken is a single-use credential for setting a password, either on
// first activation (invite) or after a reset request. A token is dead once
// ConsumedAt is set or ExpiresAt has passed.
type ResetToken struct {
	Token      string       `json:"token" db:"token"`
	EmployeeID string       `json:"employee_id" db:"employee_id"`
	Purpose    TokenPurpose `json:"purpose" db:"purpose"`
	ExpiresAt  time.Time    `json:"expires_at" db:"expires_at"`
	ConsumedAt *time.Time   `json:"consumed_at,omitempty" db:"consumed_at"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}

type ResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}
