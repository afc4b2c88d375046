package service_test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/magsync/internal/sync/service"
	"github.com/aussiebroadwan/magsync/internal/sync/store/drivers/sqlite"
	"github.com/aussiebroadwan/magsync/pkg/allegro"
	"github.com/aussiebroadwan/magsync/pkg/baselinker"
	"github.com/aussiebroadwan/magsync/pkg/cryptox"
	"github.com/aussiebroadwan/magsync/pkg/retryx"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "sync.db"))
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func newVault(t *testing.T, st *sqlite.Store) *service.SettingsVault {
	t.Helper()
	sealer, err := cryptox.NewSealer([]byte("test-master-key"))
	require.NoError(t, err)
	return service.NewSettingsVault(st.Settings(), sealer)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastPolicy() retryx.Policy {
	return retryx.Policy{
		Timeout:        5 * time.Second,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		MaxAttempts:    2,
	}
}

// allegroClient builds a client whose API and auth endpoints both point at
// the given handler.
func allegroClient(t *testing.T, tokens allegro.TokenStore, handler http.Handler) *allegro.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return allegro.NewClient(tokens,
		allegro.WithBaseURL(server.URL),
		allegro.WithAuthURL(server.URL),
		allegro.WithLimiter(nil),
		allegro.WithPolicy(fastPolicy()),
	)
}

func orderPlatform(t *testing.T, handler http.Handler) *baselinker.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return baselinker.NewClient("bl-token",
		baselinker.WithBaseURL(server.URL),
		baselinker.WithPolicy(fastPolicy()),
	)
}
