package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/training-portal/internal/model"
	"github.com/training-portal/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// TokenStore is the persistence slice the reset flow needs. Consume must
// apply the password hash and mark the token consumed atomically.
type TokenStore interface {
	Create(ctx context.Context, t *model.ResetToken) error
	Find(ctx context.Context, token string) (*model.ResetToken, error)
	DeleteByEmployee(ctx context.Context, employeeID string) (int, error)
	Consume(ctx context.Context, token, employeeID, passwordHash string, consumedAt time.Time) error
}

// EmployeeReader provides the identity lookup for reset requests.
type EmployeeReader interface {
	FindByEmail(ctx context.Context, email string) (*model.Employee, error)
}

// ResetService issues and consumes single-use, time-bounded set-password
// tokens. One mechanism serves both first-time activation (invite) and
// password reset, distinguished only by purpose and TTL.
type ResetService struct {
	tokens    TokenStore
	employees EmployeeReader
	baseURL   string
	inviteTTL time.Duration
	resetTTL  time.Duration
	now       func() time.Time
}

func NewResetService(tokens TokenStore, employees EmployeeReader, baseURL string, inviteTTL, resetTTL time.Duration) *ResetService {
	return &ResetService{
		tokens:    tokens,
		employees: employees,
		baseURL:   baseURL,
		inviteTTL: inviteTTL,
		resetTTL:  resetTTL,
		now:       time.Now,
	}
}

// IssueInvite creates an invite token for a freshly created employee and
// returns the set-password link. Invite tokens expire like reset tokens,
// just on a longer clock.
func (s *ResetService) IssueInvite(ctx context.Context, employeeID string) (string, error) {
	return s.issue(ctx, employeeID, model.PurposeInvite, s.inviteTTL)
}

// IssueReset handles a reset request by email. An unknown email reports
// success without issuing anything, so the response can never be used to
// probe which addresses are registered.
func (s *ResetService) IssueReset(ctx context.Context, email string) (string, error) {
	emp, err := s.employees.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if emp == nil {
		return "", nil
	}
	return s.issue(ctx, emp.ID, model.PurposeReset, s.resetTTL)
}

// issue invalidates every outstanding token for the subject before inserting
// the fresh one; a stale link from an older email can never race a new one.
func (s *ResetService) issue(ctx context.Context, employeeID string, purpose model.TokenPurpose, ttl time.Duration) (string, error) {
	if _, err := s.tokens.DeleteByEmployee(ctx, employeeID); err != nil {
		return "", err
	}

	value, err := generateTokenValue()
	if err != nil {
		return "", err
	}

	now := s.now()
	t := &model.ResetToken{
		Token:      value,
		EmployeeID: employeeID,
		Purpose:    purpose,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return "", err
	}

	return s.baseURL + "/set-password?token=" + value, nil
}

// Consume validates the token first, then enforces the password policy, and
// only then applies the new hash and the consumption mark together. Any
// failure leaves both the credential and the token untouched.
func (s *ResetService) Consume(ctx context.Context, token, newPassword string) error {
	t, err := s.tokens.Find(ctx, token)
	if err != nil {
		return err
	}
	now := s.now()
	if t == nil || t.ConsumedAt != nil || !t.ExpiresAt.After(now) {
		return ErrTokenInvalid
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.tokens.Consume(ctx, token, t.EmployeeID, string(hash), now); err != nil {
		// A concurrent consumer got there first; same answer as an
		// already-consumed token.
		if errors.Is(err, storage.ErrConflict) {
			return ErrTokenInvalid
		}
		return err
	}

	return nil
}

func generateTokenValue() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
