// Package storetest holds the behaviour every store driver must share.
package storetest

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/stretchr/testify/require"
)

// Run exercises the Store contract against a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("get missing key", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "auth_token")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "auth_token", "token-1"))
		v, err := s.Get(ctx, "auth_token")
		require.NoError(t, err)
		require.Equal(t, "token-1", v)
	})

	t.Run("set replaces", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "auth_token", "token-1"))
		require.NoError(t, s.Set(ctx, "auth_token", "token-2"))
		v, err := s.Get(ctx, "auth_token")
		require.NoError(t, err)
		require.Equal(t, "token-2", v)
	})

	t.Run("delete several keys", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		require.NoError(t, s.Set(ctx, "auth_token", "a"))
		require.NoError(t, s.Set(ctx, "refresh_token", "r"))
		require.NoError(t, s.Set(ctx, "other", "o"))

		require.NoError(t, s.Delete(ctx, "auth_token", "refresh_token", "missing"))

		_, err := s.Get(ctx, "auth_token")
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Get(ctx, "refresh_token")
		require.ErrorIs(t, err, store.ErrNotFound)

		v, err := s.Get(ctx, "other")
		require.NoError(t, err)
		require.Equal(t, "o", v)
	})

	t.Run("delete nothing", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Delete(context.Background()))
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Ping(context.Background()))
	})
}
