package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
		contains string
	}{
		{"valid", "Sup3rSecret!", false, ""},
		{"too short", "Ab1!", true, "at least 8 characters"},
		{"missing upper", "sup3rsecret!", true, "an upper-case letter"},
		{"missing lower", "SUP3RSECRET!", true, "a lower-case letter"},
		{"missing digit", "SuperSecret!", true, "a digit"},
		{"missing symbol", "Sup3rSecret", true, "a symbol"},
		{"only letters", "abcdefghij", true, "an upper-case letter, a digit, a symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrWeakPassword)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
