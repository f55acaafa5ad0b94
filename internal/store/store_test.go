package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := uuid.NewString()
	require.NoError(t, s.CreateUser(ctx, User{ID: id, Email: "a@example.com", DisplayName: "A"}))

	u, err := s.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, "A", u.DisplayName)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecentEntriesFiltersAndOrders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	userID := uuid.NewString()
	require.NoError(t, s.CreateUser(ctx, User{ID: userID, Email: "b@example.com"}))

	// Analyzed, in window.
	_, err := s.InsertEntry(ctx, LogEntry{
		UserID: userID, Content: "old", Intent: "chat", IsAnalyzed: true,
		CreatedAt: now.Add(-48 * time.Hour),
	})
	require.NoError(t, err)
	_, err = s.InsertEntry(ctx, LogEntry{
		UserID: userID, Content: "new", Intent: "empathy", IsAnalyzed: true,
		Emotions: []string{"anxious"}, Topics: []string{"work"},
		CreatedAt: now.Add(-1 * time.Hour),
	})
	require.NoError(t, err)

	// Not analyzed: excluded.
	_, err = s.InsertEntry(ctx, LogEntry{
		UserID: userID, Content: "pending", Intent: "chat",
		CreatedAt: now.Add(-2 * time.Hour),
	})
	require.NoError(t, err)

	// Outside window: excluded.
	_, err = s.InsertEntry(ctx, LogEntry{
		UserID: userID, Content: "ancient", Intent: "chat", IsAnalyzed: true,
		CreatedAt: now.Add(-30 * 24 * time.Hour),
	})
	require.NoError(t, err)

	// Different user: excluded.
	otherID := uuid.NewString()
	require.NoError(t, s.CreateUser(ctx, User{ID: otherID, Email: "c@example.com"}))
	_, err = s.InsertEntry(ctx, LogEntry{
		UserID: otherID, Content: "other", Intent: "chat", IsAnalyzed: true,
		CreatedAt: now.Add(-1 * time.Hour),
	})
	require.NoError(t, err)

	entries, err := s.RecentEntries(ctx, userID, now.Add(-14*24*time.Hour), 200)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].Content, "newest first")
	assert.Equal(t, "old", entries[1].Content)
	assert.Equal(t, []string{"anxious"}, entries[0].Emotions)
	assert.Equal(t, []string{"work"}, entries[0].Topics)
}

func TestRecentEntriesCap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	userID := uuid.NewString()
	require.NoError(t, s.CreateUser(ctx, User{ID: userID, Email: "d@example.com"}))

	for i := 0; i < 10; i++ {
		_, err := s.InsertEntry(ctx, LogEntry{
			UserID: userID, Content: "x", Intent: "chat", IsAnalyzed: true,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := s.RecentEntries(ctx, userID, now.Add(-time.Hour), 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestMarkAnalyzed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := uuid.NewString()
	require.NoError(t, s.CreateUser(ctx, User{ID: userID, Email: "e@example.com"}))

	id, err := s.InsertEntry(ctx, LogEntry{UserID: userID, Content: "hi", Intent: "chat"})
	require.NoError(t, err)

	require.NoError(t, s.MarkAnalyzed(ctx, id))

	entries, err := s.RecentEntries(ctx, userID, time.Now().UTC().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.ErrorIs(t, s.MarkAnalyzed(ctx, 99999), ErrNotFound)
}

func TestProfileLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	userID := uuid.NewString()
	require.NoError(t, s.CreateUser(ctx, User{ID: userID, Email: "f@example.com"}))

	_, err := s.LoadProfile(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound, "no profile until first save")

	require.NoError(t, s.SaveProfile(ctx, userID, []byte(`{"log_count":1}`)))
	blob, err := s.LoadProfile(ctx, userID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"log_count":1}`, string(blob))

	// Wholesale overwrite.
	require.NoError(t, s.SaveProfile(ctx, userID, []byte(`{"log_count":2}`)))
	blob, err = s.LoadProfile(ctx, userID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"log_count":2}`, string(blob))

	assert.ErrorIs(t, s.SaveProfile(ctx, "missing", []byte(`{}`)), ErrNotFound)
}

func TestListUserIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids, err := s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	a, b := uuid.NewString(), uuid.NewString()
	require.NoError(t, s.CreateUser(ctx, User{ID: a, Email: "g@example.com"}))
	require.NoError(t, s.CreateUser(ctx, User{ID: b, Email: "h@example.com"}))

	ids, err = s.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, ids)
}
