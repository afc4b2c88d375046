package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/magsync/internal/sync/store"
	"github.com/aussiebroadwan/magsync/pkg/cryptox"
)

func TestVaultSealsAtRest(t *testing.T) {
	st := newTestStore(t)
	vault := newVault(t, st)
	ctx := context.Background()

	secret := "very-secret-refresh-token"
	require.NoError(t, vault.Update(ctx, map[string]*string{
		"allegro.refresh_token": &secret,
	}))

	// The raw row must not contain the plaintext.
	raw, err := st.Settings().Get(ctx, "allegro.refresh_token")
	require.NoError(t, err)
	require.True(t, cryptox.IsSealed(raw.Value))
	require.NotContains(t, raw.Value, secret)

	// The vault read round-trips.
	got, err := vault.Get(ctx, "allegro.refresh_token")
	require.NoError(t, err)
	require.Equal(t, secret, got)
}

func TestVaultMissingKeyIsEmpty(t *testing.T) {
	vault := newVault(t, newTestStore(t))

	got, err := vault.Get(context.Background(), "never.set")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestVaultReadsUnsealedLegacyRows(t *testing.T) {
	st := newTestStore(t)
	vault := newVault(t, st)
	ctx := context.Background()

	// Simulates an operator seeding credentials with a plain insert.
	plain := "bootstrap-client-id"
	require.NoError(t, st.Settings().Update(ctx, map[string]*string{
		"allegro.client_id": &plain,
	}))

	got, err := vault.Get(ctx, "allegro.client_id")
	require.NoError(t, err)
	require.Equal(t, plain, got)
}

func TestVaultNilValueDeletes(t *testing.T) {
	st := newTestStore(t)
	vault := newVault(t, st)
	ctx := context.Background()

	value := "short-lived"
	require.NoError(t, vault.Update(ctx, map[string]*string{"k": &value}))
	require.NoError(t, vault.Update(ctx, map[string]*string{"k": nil}))

	_, err := st.Settings().Get(ctx, "k")
	require.ErrorIs(t, err, store.ErrNotFound)
}
