package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/training-portal/internal/model"
	"github.com/training-portal/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// fakeTokenStore mirrors the real repository's consume semantics: the
// password write and the consumption mark land together or not at all.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*model.ResetToken
	hashes map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		tokens: make(map[string]*model.ResetToken),
		hashes: make(map[string]string),
	}
}

func (f *fakeTokenStore) Create(_ context.Context, t *model.ResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tokens[t.Token] = &cp
	return nil
}

func (f *fakeTokenStore) Find(_ context.Context, token string) (*model.ResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokenStore) DeleteByEmployee(_ context.Context, employeeID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for value, t := range f.tokens {
		if t.EmployeeID == employeeID {
			delete(f.tokens, value)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenStore) Consume(_ context.Context, token, employeeID, passwordHash string, consumedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok || t.ConsumedAt != nil || !t.ExpiresAt.After(consumedAt) {
		return storage.ErrConflict
	}
	t.ConsumedAt = &consumedAt
	f.hashes[employeeID] = passwordHash
	return nil
}

type fakeEmployeeReader struct {
	byEmail map[string]*model.Employee
}

func (f *fakeEmployeeReader) FindByEmail(_ context.Context, email string) (*model.Employee, error) {
	emp, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	return emp, nil
}

func newTestResetService(store *fakeTokenStore, now time.Time) *ResetService {
	employees := &fakeEmployeeReader{byEmail: map[string]*model.Employee{
		"known@example.com": {ID: "emp1", Email: "known@example.com"},
	}}
	svc := NewResetService(store, employees, "http://localhost:8080", 168*time.Hour, time.Hour)
	svc.now = func() time.Time { return now }
	return svc
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	value := u.Query().Get("token")
	require.NotEmpty(t, value)
	return value
}

func TestResetService_IssueInvite(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeTokenStore()
	svc := newTestResetService(store, now)

	link, err := svc.IssueInvite(context.Background(), "emp1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://localhost:8080/set-password?token="))

	stored := store.tokens[tokenFromLink(t, link)]
	require.NotNil(t, stored)
	assert.Equal(t, model.PurposeInvite, stored.Purpose)
	assert.Equal(t, now.Add(168*time.Hour), stored.ExpiresAt)
}

func TestResetService_IssueReset(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("known email gets a short-lived token", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := newTestResetService(store, now)

		link, err := svc.IssueReset(context.Background(), "known@example.com")
		require.NoError(t, err)

		stored := store.tokens[tokenFromLink(t, link)]
		require.NotNil(t, stored)
		assert.Equal(t, model.PurposeReset, stored.Purpose)
		assert.Equal(t, now.Add(time.Hour), stored.ExpiresAt)
	})

	t.Run("unknown email reports success without a token", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := newTestResetService(store, now)

		link, err := svc.IssueReset(context.Background(), "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, link)
		assert.Empty(t, store.tokens)
	})
}

func TestResetService_IssueInvalidatesOutstandingTokens(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := newFakeTokenStore()
	svc := newTestResetService(store, now)

	first, err := svc.IssueReset(context.Background(), "known@example.com")
	require.NoError(t, err)
	firstToken := tokenFromLink(t, first)

	second, err := svc.IssueReset(context.Background(), "known@example.com")
	require.NoError(t, err)

	assert.Len(t, store.tokens, 1)
	assert.Nil(t, store.tokens[firstToken])

	err = svc.Consume(context.Background(), firstToken, "Sup3rSecret!")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	err = svc.Consume(context.Background(), tokenFromLink(t, second), "Sup3rSecret!")
	assert.NoError(t, err)
}

func TestResetService_Consume(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("sets the password and burns the token", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := newTestResetService(store, now)

		link, err := svc.IssueInvite(context.Background(), "emp1")
		require.NoError(t, err)
		token := tokenFromLink(t, link)

		require.NoError(t, svc.Consume(context.Background(), token, "Sup3rSecret!"))

		hash := store.hashes["emp1"]
		require.NotEmpty(t, hash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Sup3rSecret!")))
		assert.NotNil(t, store.tokens[token].ConsumedAt)
	})

	t.Run("second consume fails", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := newTestResetService(store, now)

		link, err := svc.IssueInvite(context.Background(), "emp1")
		require.NoError(t, err)
		token := tokenFromLink(t, link)

		require.NoError(t, svc.Consume(context.Background(), token, "Sup3rSecret!"))
		err = svc.Consume(context.Background(), token, "An0therSecret!")
		assert.ErrorIs(t, err, ErrTokenInvalid)

		// The first password survives the failed second attempt.
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.hashes["emp1"]), []byte("Sup3rSecret!")))
	})

	t.Run("expired token", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := newTestResetService(store, now)

		link, err := svc.IssueReset(context.Background(), "known@example.com")
		require.NoError(t, err)

		svc.now = func() time.Time { return now.Add(time.Hour) } // exactly at expiry
		err = svc.Consume(context.Background(), tokenFromLink(t, link), "Sup3rSecret!")
		assert.ErrorIs(t, err, ErrTokenInvalid)
		assert.Empty(t, store.hashes)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc := newTestResetService(newFakeTokenStore(), now)

		err := svc.Consume(context.Background(), "no-such-token", "Sup3rSecret!")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("dead token wins over weak password", func(t *testing.T) {
		svc := newTestResetService(newFakeTokenStore(), now)

		// The token is checked first; its holder learns nothing about the
		// password policy from a dead link.
		err := svc.Consume(context.Background(), "no-such-token", "short")
		assert.ErrorIs(t, err, ErrTokenInvalid)
		assert.NotErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("weak password leaves the token alive", func(t *testing.T) {
		store := newFakeTokenStore()
		svc := newTestResetService(store, now)

		link, err := svc.IssueInvite(context.Background(), "emp1")
		require.NoError(t, err)
		token := tokenFromLink(t, link)

		err = svc.Consume(context.Background(), token, "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
		assert.Nil(t, store.tokens[token].ConsumedAt)

		// The same token still works with a valid password.
		assert.NoError(t, svc.Consume(context.Background(), token, "Sup3rSecret!"))
	})
}
