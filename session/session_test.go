package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mbolis/branch-portal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "session.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db)
}

func TestStoreLastWriterWins(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "c1", "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "c1", "k", "one"))
	require.NoError(t, store.Set(ctx, "c1", "k", "two"))
	require.NoError(t, store.Set(ctx, "c2", "k", "other device"))

	v, ok, err := store.Get(ctx, "c1", "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)

	require.NoError(t, store.Delete(ctx, "c1", "k"))
	_, ok, _ = store.Get(ctx, "c1", "k")
	assert.False(t, ok)

	v, _, _ = store.Get(ctx, "c2", "k")
	assert.Equal(t, "other device", v)
}

func TestLoginLogout(t *testing.T) {
	m := NewManager(newStore(t), false, "")
	ctx := context.Background()

	s, err := m.Load(ctx, "device")
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())
	assert.True(t, s.Configured())

	assert.ErrorIs(t, m.Login(ctx, s, "sufyan", ""), ErrMissingCredentials)
	assert.ErrorIs(t, m.Login(ctx, s, "  ", "pw"), ErrMissingCredentials)
	assert.False(t, s.LoggedIn())

	require.NoError(t, m.Login(ctx, s, "Sufyan Ali", "pw"))
	assert.Equal(t, "Training Coordinator", s.User.Role)
	assert.Equal(t, "https://ui-avatars.com/api/?name=Sufyan+Ali&background=FF8C00&color=fff", s.User.Avatar)

	// persisted across requests
	again, err := m.Load(ctx, "device")
	require.NoError(t, err)
	require.True(t, again.LoggedIn())
	assert.Equal(t, *s.User, *again.User)

	require.NoError(t, m.Logout(ctx, again))
	assert.False(t, again.LoggedIn())

	again, err = m.Load(ctx, "device")
	require.NoError(t, err)
	assert.False(t, again.LoggedIn())
}

func TestUnreadableUserSessionMeansLoggedOut(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "device", KeyUser, "{not json"))

	s, err := NewManager(store, false, "").Load(ctx, "device")
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())
}

func TestConfigure(t *testing.T) {
	m := NewManager(newStore(t), true, "")
	ctx := context.Background()

	s, err := m.Load(ctx, "device")
	require.NoError(t, err)
	assert.False(t, s.Configured())

	assert.ErrorIs(t, m.Configure(ctx, s, "https://example.com/exec"), ErrInvalidEndpoint)
	assert.False(t, s.Configured())

	require.NoError(t, m.Configure(ctx, s, " https://script.google.com/macros/s/abc/exec "))
	assert.True(t, s.Configured())

	again, err := m.Load(ctx, "device")
	require.NoError(t, err)
	assert.Equal(t, "https://script.google.com/macros/s/abc/exec", again.Endpoint)
}

func TestDefaultEndpoint(t *testing.T) {
	m := NewManager(newStore(t), true, "https://script.google.com/macros/s/default/exec")
	s, err := m.Load(context.Background(), "fresh-device")
	require.NoError(t, err)
	assert.True(t, s.Configured())
	assert.Equal(t, "https://script.google.com/macros/s/default/exec", s.Endpoint)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	s := &Session{ClientID: "x"}
	assert.Same(t, s, FromContext(NewContext(context.Background(), s)))
}
