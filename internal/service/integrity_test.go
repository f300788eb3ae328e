package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	byCategory map[string]int
	byTeacher  map[string]int
	byCourse   map[string]int
	err        error
}

func (f *fakeCounter) CountCoursesByCategory(_ context.Context, id string) (int, error) {
	return f.byCategory[id], f.err
}

func (f *fakeCounter) CountCoursesByTeacher(_ context.Context, id string) (int, error) {
	return f.byTeacher[id], f.err
}

func (f *fakeCounter) CountEnrollmentsByCourse(_ context.Context, id string) (int, error) {
	return f.byCourse[id], f.err
}

func TestIntegrityGuard_CanDelete(t *testing.T) {
	counter := &fakeCounter{
		byCategory: map[string]int{"cat-used": 3},
		byTeacher:  map[string]int{"t-used": 1},
		byCourse:   map[string]int{"c-used": 7},
	}
	guard := NewIntegrityGuard(counter)

	tests := []struct {
		name    string
		kind    EntityKind
		id      string
		wantErr error
	}{
		{"free category", KindCategory, "cat-free", nil},
		{"referenced category", KindCategory, "cat-used", ErrDeleteBlocked},
		{"free teacher", KindTeacher, "t-free", nil},
		{"referenced teacher", KindTeacher, "t-used", ErrDeleteBlocked},
		{"free course", KindCourse, "c-free", nil},
		{"course with enrollments", KindCourse, "c-used", ErrDeleteBlocked},
		{"unknown kind", EntityKind("widget"), "x", ErrUnknownEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.CanDelete(context.Background(), tt.kind, tt.id)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestIntegrityGuard_FailsClosedOnStoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	guard := NewIntegrityGuard(&fakeCounter{err: storeErr})

	err := guard.CanDelete(context.Background(), KindCourse, "c1")
	assert.ErrorIs(t, err, storeErr)
}

func TestIntegrityGuard_BlockedErrorNamesTheReason(t *testing.T) {
	guard := NewIntegrityGuard(&fakeCounter{byCourse: map[string]int{"c1": 2}})

	err := guard.CanDelete(context.Background(), KindCourse, "c1")
	assert.ErrorIs(t, err, ErrDeleteBlocked)
	assert.Contains(t, err.Error(), "enrollments still reference this course")
	assert.Contains(t, err.Error(), "2")
}
