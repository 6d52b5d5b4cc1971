package credentials_test

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-storefront-client/credentials"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestMemStoreReplaceAndClear(t *testing.T) {
	store := credentials.NewMemStore()
	require.False(t, store.Snapshot().IsAuthenticated())

	store.Replace(credentials.Credentials{
		AccessToken:  "T1",
		RefreshToken: "R1",
		User:         &credentials.User{ID: "user-1", Email: "a@b.com", FullName: "John Doe", Role: "Admin"},
	})

	snapshot := store.Snapshot()
	require.True(t, snapshot.IsAuthenticated())
	require.Equal(t, "T1", store.AccessToken())
	require.Equal(t, "R1", store.RefreshToken())
	require.Equal(t, "a@b.com", snapshot.User.Email)

	require.True(t, store.Clear())
	snapshot = store.Snapshot()
	require.False(t, snapshot.IsAuthenticated())
	require.Empty(t, snapshot.AccessToken)
	require.Empty(t, snapshot.RefreshToken)
	require.Nil(t, snapshot.User)

	// Clearing an empty store is a no-op.
	require.False(t, store.Clear())
}

func TestMemStoreSnapshotIsACopy(t *testing.T) {
	store := credentials.NewMemStore()
	store.Replace(credentials.Credentials{
		AccessToken: "T1",
		User:        &credentials.User{Email: "a@b.com"},
	})

	snapshot := store.Snapshot()
	snapshot.User.Email = "tampered@example.com"

	require.Equal(t, "a@b.com", store.Snapshot().User.Email)
}

func TestMemStoreNeverObservesPartialState(t *testing.T) {
	store := credentials.NewMemStore()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			store.Replace(credentials.Credentials{
				AccessToken:  "T",
				RefreshToken: "R",
				User:         &credentials.User{ID: "user-1"},
			})
			store.Clear()
		}
	}()

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snapshot := store.Snapshot()
				if snapshot.IsAuthenticated() {
					require.NotNil(t, snapshot.User)
					require.NotEmpty(t, snapshot.RefreshToken)
				} else {
					require.Nil(t, snapshot.User)
					require.Empty(t, snapshot.RefreshToken)
				}
			}
		}()
	}
	wg.Wait()
}

func TestAccessTokenExpired(t *testing.T) {
	live := credentials.Credentials{AccessToken: signedToken(t, time.Now().Add(time.Hour))}
	require.False(t, live.AccessTokenExpired())

	expired := credentials.Credentials{AccessToken: signedToken(t, time.Now().Add(-time.Hour))}
	require.True(t, expired.AccessTokenExpired())

	// Non-JWT tokens and missing tokens are left to the server to judge.
	require.False(t, credentials.Credentials{AccessToken: "opaque-token"}.AccessTokenExpired())
	require.False(t, credentials.Credentials{}.AccessTokenExpired())
}
