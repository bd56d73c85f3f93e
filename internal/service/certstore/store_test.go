package certstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeStore returns a canned identity list.
type fakeStore struct {
	ids []Identity
	err error
}

func (f *fakeStore) List(_ context.Context) ([]Identity, error) {
	return f.ids, f.err
}

// TestSelectLatest verifies windowing and latest-expiration ordering.
func TestSelectLatest(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	expired := Identity{
		Subject:   "CN=Expired",
		NotBefore: now.AddDate(-2, 0, 0),
		NotAfter:  now.AddDate(-1, 0, 0),
	}
	notYetActive := Identity{
		Subject:   "CN=Future",
		NotBefore: now.AddDate(0, 1, 0),
		NotAfter:  now.AddDate(2, 0, 0),
	}
	expiresSoon := Identity{
		Subject:   "CN=Soon",
		NotBefore: now.AddDate(-1, 0, 0),
		NotAfter:  now.AddDate(0, 1, 0),
	}
	expiresLater := Identity{
		Subject:   "CN=Later",
		NotBefore: now.AddDate(0, 0, -1),
		NotAfter:  now.AddDate(3, 0, 0),
	}

	selected, err := SelectLatest([]Identity{expired, notYetActive, expiresSoon, expiresLater}, now)
	require.NoError(t, err)
	require.Equal(t, "CN=Later", selected.Subject)

	// Only invalid candidates.
	_, err = SelectLatest([]Identity{expired, notYetActive}, now)
	require.Error(t, err)

	// Empty store.
	_, err = SelectLatest(nil, now)
	require.Error(t, err)
}

// TestResolveExplicitSubject ensures an explicit subject bypasses the store entirely.
func TestResolveExplicitSubject(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: errors.New("store must not be queried")}

	subject, err := Resolve(context.Background(), `CN="Contoso, Ltd."`, store)
	require.NoError(t, err)
	require.Equal(t, `CN="Contoso, Ltd."`, subject)
}

// TestResolveFromStore selects the latest-expiring valid certificate from the store.
func TestResolveFromStore(t *testing.T) {
	t.Parallel()

	now := time.Now()
	store := &fakeStore{
		ids: []Identity{
			{
				Subject:   "CN=Old",
				NotBefore: now.AddDate(-1, 0, 0),
				NotAfter:  now.AddDate(0, 6, 0),
			},
			{
				Subject:   "CN=New",
				NotBefore: now.AddDate(0, 0, -7),
				NotAfter:  now.AddDate(2, 0, 0),
			},
		},
	}

	subject, err := Resolve(context.Background(), "", store)
	require.NoError(t, err)
	require.Equal(t, "CN=New", subject)
}

// TestResolveStoreError propagates store failures.
func TestResolveStoreError(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: errors.New("powershell exploded")}

	_, err := Resolve(context.Background(), "", store)
	require.ErrorIs(t, err, store.err)
}
