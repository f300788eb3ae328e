package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/training-portal/internal/model"
	"github.com/training-portal/internal/storage"
)

// fakeEnrollmentStore keeps enrollments in memory and enforces the same
// one-row-per-pair rule the real table does.
type fakeEnrollmentStore struct {
	mu   sync.Mutex
	rows map[string]*model.Enrollment
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{rows: make(map[string]*model.Enrollment)}
}

func (f *fakeEnrollmentStore) Create(_ context.Context, e *model.Enrollment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.EmployeeID == e.EmployeeID && row.CourseID == e.CourseID {
			return storage.ErrConflict
		}
	}
	cp := *e
	f.rows[e.ID] = &cp
	return nil
}

func (f *fakeEnrollmentStore) FindByID(_ context.Context, id string) (*model.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeEnrollmentStore) ListByEmployee(_ context.Context, employeeID string) ([]model.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Enrollment
	for _, row := range f.rows {
		if row.EmployeeID == employeeID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeEnrollmentStore) SetCompleted(_ context.Context, id string, completedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.CompletedAt != nil {
		return false, nil
	}
	row.CompletedAt = &completedAt
	return true, nil
}

type fakeCourseReader struct {
	courses map[string]*model.Course
}

func (f *fakeCourseReader) FindByID(_ context.Context, id string) (*model.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourseReader) ListActive(_ context.Context) ([]model.Course, error) {
	var out []model.Course
	for _, c := range f.courses {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func newTestEngine(store *fakeEnrollmentStore, courses map[string]*model.Course, now time.Time) *EnrollmentEngine {
	engine := NewEnrollmentEngine(store, &fakeCourseReader{courses: courses})
	engine.now = func() time.Time { return now }
	return engine
}

func TestEnrollmentEngine_Enroll(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	courses := map[string]*model.Course{
		"active":   {ID: "active", Active: true, ValidityDays: 30},
		"inactive": {ID: "inactive", Active: false, ValidityDays: 30},
	}

	t.Run("snapshots the validity window", func(t *testing.T) {
		store := newFakeEnrollmentStore()
		engine := newTestEngine(store, courses, now)

		e, err := engine.Enroll(context.Background(), "emp1", "active")
		require.NoError(t, err)
		assert.Equal(t, 30, e.DurationDays)
		assert.Equal(t, now, e.EnrolledAt)
		assert.Equal(t, now.AddDate(0, 0, 30), e.ExpiresAt())
		assert.NotEmpty(t, e.ID)
	})

	t.Run("rejects unknown course", func(t *testing.T) {
		engine := newTestEngine(newFakeEnrollmentStore(), courses, now)

		_, err := engine.Enroll(context.Background(), "emp1", "missing")
		assert.ErrorIs(t, err, ErrCourseUnavailable)
	})

	t.Run("rejects inactive course", func(t *testing.T) {
		engine := newTestEngine(newFakeEnrollmentStore(), courses, now)

		_, err := engine.Enroll(context.Background(), "emp1", "inactive")
		assert.ErrorIs(t, err, ErrCourseUnavailable)
	})

	t.Run("rejects duplicate enrollment", func(t *testing.T) {
		store := newFakeEnrollmentStore()
		engine := newTestEngine(store, courses, now)

		_, err := engine.Enroll(context.Background(), "emp1", "active")
		require.NoError(t, err)

		_, err = engine.Enroll(context.Background(), "emp1", "active")
		assert.ErrorIs(t, err, ErrAlreadyEnrolled)
	})
}

func TestEnrollmentEngine_ConcurrentEnrollSingleWinner(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	courses := map[string]*model.Course{
		"c1": {ID: "c1", Active: true, ValidityDays: 14},
	}
	store := newFakeEnrollmentStore()
	engine := newTestEngine(store, courses, now)

	const attempts = 16
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Enroll(context.Background(), "emp1", "c1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrAlreadyEnrolled):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)
	assert.Len(t, store.rows, 1)
}

func TestEnrollmentEngine_Complete(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	courses := map[string]*model.Course{
		"c1": {ID: "c1", Active: true, ValidityDays: 5},
	}

	t.Run("sets completed at once", func(t *testing.T) {
		store := newFakeEnrollmentStore()
		engine := newTestEngine(store, courses, now)

		e, err := engine.Enroll(context.Background(), "emp1", "c1")
		require.NoError(t, err)

		done, err := engine.Complete(context.Background(), e.ID)
		require.NoError(t, err)
		require.NotNil(t, done.CompletedAt)
		assert.Equal(t, now, *done.CompletedAt)
	})

	t.Run("is idempotent", func(t *testing.T) {
		store := newFakeEnrollmentStore()
		engine := newTestEngine(store, courses, now)

		e, err := engine.Enroll(context.Background(), "emp1", "c1")
		require.NoError(t, err)

		first, err := engine.Complete(context.Background(), e.ID)
		require.NoError(t, err)

		engine.now = func() time.Time { return now.Add(2 * time.Hour) }
		second, err := engine.Complete(context.Background(), e.ID)
		require.NoError(t, err)

		// The first timestamp stays.
		assert.Equal(t, *first.CompletedAt, *second.CompletedAt)
	})

	t.Run("allows late completion after expiry", func(t *testing.T) {
		store := newFakeEnrollmentStore()
		engine := newTestEngine(store, courses, now)

		e, err := engine.Enroll(context.Background(), "emp1", "c1")
		require.NoError(t, err)

		late := now.AddDate(0, 0, 10)
		engine.now = func() time.Time { return late }
		done, err := engine.Complete(context.Background(), e.ID)
		require.NoError(t, err)
		require.NotNil(t, done.CompletedAt)
		assert.Equal(t, model.StatusCompleted, done.Status(late))
	})

	t.Run("unknown enrollment", func(t *testing.T) {
		engine := newTestEngine(newFakeEnrollmentStore(), courses, now)

		_, err := engine.Complete(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrEnrollmentNotFound)
	})
}

func TestEnrollmentEngine_Dashboard(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	courses := map[string]*model.Course{
		"done":     {ID: "done", Active: true, ValidityDays: 30},
		"running":  {ID: "running", Active: true, ValidityDays: 30},
		"overdue":  {ID: "overdue", Active: true, ValidityDays: 30},
		"untaken":  {ID: "untaken", Active: true, ValidityDays: 30},
		"archived": {ID: "archived", Active: false, ValidityDays: 30},
	}
	store := newFakeEnrollmentStore()
	engine := newTestEngine(store, courses, now)

	completedAt := now.Add(-time.Hour)
	require.NoError(t, store.Create(context.Background(), &model.Enrollment{
		ID: "e1", EmployeeID: "emp1", CourseID: "done",
		EnrolledAt: now.AddDate(0, 0, -5), DurationDays: 30, CompletedAt: &completedAt,
	}))
	require.NoError(t, store.Create(context.Background(), &model.Enrollment{
		ID: "e2", EmployeeID: "emp1", CourseID: "running",
		EnrolledAt: now.AddDate(0, 0, -5), DurationDays: 30,
	}))
	require.NoError(t, store.Create(context.Background(), &model.Enrollment{
		ID: "e3", EmployeeID: "emp1", CourseID: "overdue",
		EnrolledAt: now.AddDate(0, 0, -60), DurationDays: 30,
	}))
	// Another employee's enrollment must not leak into emp1's view.
	require.NoError(t, store.Create(context.Background(), &model.Enrollment{
		ID: "e4", EmployeeID: "emp2", CourseID: "untaken",
		EnrolledAt: now, DurationDays: 30,
	}))

	resp, err := engine.Dashboard(context.Background(), "emp1")
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Stats.Completed)
	assert.Equal(t, 1, resp.Stats.InProgress)
	assert.Equal(t, 1, resp.Stats.Expired)
	assert.Equal(t, 1, resp.Stats.Available)
	assert.Len(t, resp.Courses, 4)

	byID := make(map[string]model.CourseWithStatus)
	for _, cws := range resp.Courses {
		byID[cws.Course.ID] = cws
	}
	assert.Equal(t, model.StatusCompleted, byID["done"].Status)
	assert.Equal(t, model.StatusInProgress, byID["running"].Status)
	assert.Equal(t, model.StatusExpired, byID["overdue"].Status)
	assert.Equal(t, model.StatusAvailable, byID["untaken"].Status)
	assert.NotContains(t, byID, "archived")

	require.NotNil(t, byID["running"].Deadline)
	assert.Equal(t, now.AddDate(0, 0, 25), *byID["running"].Deadline)
	assert.Nil(t, byID["untaken"].Deadline)
}
