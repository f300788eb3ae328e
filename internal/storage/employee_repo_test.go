package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/training-portal/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func TestEmployeeRepository_ValidatePassword(t *testing.T) {
	repo := &EmployeeRepository{}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret!"), bcrypt.MinCost)
	require.NoError(t, err)
	hash := string(hashBytes)

	t.Run("nil hash never matches", func(t *testing.T) {
		// An invited account has no credential yet; no input may log it in.
		emp := &model.Employee{ID: "emp1", Email: "emp@example.com"}

		for _, password := range []string{"", "Sup3rSecret!", "password", " ", "\x00"} {
			assert.False(t, repo.ValidatePassword(emp, password), "password %q", password)
		}
	})

	t.Run("correct password matches", func(t *testing.T) {
		emp := &model.Employee{ID: "emp1", PasswordHash: &hash}
		assert.True(t, repo.ValidatePassword(emp, "Sup3rSecret!"))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		emp := &model.Employee{ID: "emp1", PasswordHash: &hash}
		assert.False(t, repo.ValidatePassword(emp, "sup3rsecret!"))
		assert.False(t, repo.ValidatePassword(emp, ""))
	})

	t.Run("empty stored hash never matches", func(t *testing.T) {
		empty := ""
		emp := &model.Employee{ID: "emp1", PasswordHash: &empty}
		assert.False(t, repo.ValidatePassword(emp, ""))
		assert.False(t, repo.ValidatePassword(emp, "Sup3rSecret!"))
	})
}
