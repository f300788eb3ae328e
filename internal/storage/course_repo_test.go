package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/training-portal/internal/model"
)

func TestCategoryChange(t *testing.T) {
	catID := "f4a2c9e0-1111-2222-3333-444455556666"
	empty := ""

	tests := []struct {
		name      string
		req       *model.UpdateCourseRequest
		wantClear bool
		wantValue *string
	}{
		{
			name:      "absent field keeps the current category",
			req:       &model.UpdateCourseRequest{},
			wantClear: false,
			wantValue: nil,
		},
		{
			name:      "empty string clears the category to null",
			req:       &model.UpdateCourseRequest{CategoryID: &empty},
			wantClear: true,
			wantValue: nil,
		},
		{
			name:      "id sets the category",
			req:       &model.UpdateCourseRequest{CategoryID: &catID},
			wantClear: false,
			wantValue: &catID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clear, value := categoryChange(tt.req)
			assert.Equal(t, tt.wantClear, clear)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}
