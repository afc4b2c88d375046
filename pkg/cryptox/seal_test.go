package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/magsync/pkg/cryptox"
)

func TestSealRoundTrip(t *testing.T) {
	sealer, err := cryptox.NewSealer([]byte("test-master-key"))
	require.NoError(t, err)

	sealed, err := sealer.Seal("super-secret-token")
	require.NoError(t, err)
	require.True(t, cryptox.IsSealed(sealed))
	require.NotContains(t, sealed, "super-secret-token")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "super-secret-token", opened)
}

func TestSealNoncesDiffer(t *testing.T) {
	sealer, err := cryptox.NewSealer([]byte("test-master-key"))
	require.NoError(t, err)

	first, err := sealer.Seal("same-value")
	require.NoError(t, err)
	second, err := sealer.Seal("same-value")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestOpenPassesThroughPlaintext(t *testing.T) {
	sealer, err := cryptox.NewSealer([]byte("test-master-key"))
	require.NoError(t, err)

	opened, err := sealer.Open("legacy-plaintext-token")
	require.NoError(t, err)
	require.Equal(t, "legacy-plaintext-token", opened)
	require.False(t, cryptox.IsSealed("legacy-plaintext-token"))
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealer, err := cryptox.NewSealer([]byte("key-one"))
	require.NoError(t, err)
	other, err := cryptox.NewSealer([]byte("key-two"))
	require.NoError(t, err)

	sealed, err := sealer.Seal("secret")
	require.NoError(t, err)

	_, err = other.Open(sealed)
	require.Error(t, err)
}

func TestOpenRejectsCorruptValue(t *testing.T) {
	sealer, err := cryptox.NewSealer([]byte("key"))
	require.NoError(t, err)

	_, err = sealer.Open("sealed:v1:!!!not-base64!!!")
	require.Error(t, err)
	_, err = sealer.Open("sealed:v1:AAAA")
	require.Error(t, err)
}

func TestNewSealerRejectsEmptyKey(t *testing.T) {
	_, err := cryptox.NewSealer(nil)
	require.Error(t, err)
}

func TestLoadKey(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "master.key")
		require.NoError(t, os.WriteFile(path, []byte("file-key-material"), 0o600))

		material, source, err := cryptox.LoadKey(path)
		require.NoError(t, err)
		require.Equal(t, "file", source)
		require.Equal(t, []byte("file-key-material"), material)
	})

	t.Run("from env", func(t *testing.T) {
		t.Setenv("SYNC_MASTER_KEY", "env-key-material")
		material, source, err := cryptox.LoadKey("")
		require.NoError(t, err)
		require.Equal(t, "env", source)
		require.Equal(t, []byte("env-key-material"), material)
	})

	t.Run("ephemeral fallback", func(t *testing.T) {
		t.Setenv("SYNC_MASTER_KEY", "")
		material, source, err := cryptox.LoadKey("")
		require.NoError(t, err)
		require.Equal(t, "ephemeral", source)
		require.Len(t, material, 32)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, _, err := cryptox.LoadKey(filepath.Join(t.TempDir(), "absent.key"))
		require.Error(t, err)
	})
}
