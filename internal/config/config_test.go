package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every STATPANEL_ env var that Load() reads.
var allConfigKeys = []string{
	"STATPANEL_CONFIG",
	"STATPANEL_LISTEN_ADDR",
	"STATPANEL_DB_PATH",
	"STATPANEL_SIGNIN_URL",
	"STATPANEL_GRAPHQL_URL",
	"STATPANEL_SECRET_KEY",
	"STATPANEL_ACTIVITY_THROTTLE",
	"STATPANEL_LOGIN_NOTICE",
	"STATPANEL_HEALTHCHECK_TIMEOUT",
}

// isolateConfigEnv saves and unsets all STATPANEL_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statpanel.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "statpanel.db", cfg.DBPath)
	assert.Equal(t, DefaultSigninURL, cfg.SigninURL)
	assert.Equal(t, DefaultGraphQLURL, cfg.GraphQLURL)
	assert.Equal(t, time.Second, cfg.ActivityThrottle)
	assert.False(t, cfg.HasSecretKey())
	assert.Empty(t, cfg.LoginNotice)
	assert.Equal(t, 2*time.Second, cfg.HealthcheckTimeout)
}

func TestLoad_Env(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STATPANEL_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("STATPANEL_DB_PATH", "/tmp/test.db")
	t.Setenv("STATPANEL_SIGNIN_URL", "http://localhost:4000/signin")
	t.Setenv("STATPANEL_GRAPHQL_URL", "http://localhost:4000/graphql")
	t.Setenv("STATPANEL_ACTIVITY_THROTTLE", "250ms")
	t.Setenv("STATPANEL_LOGIN_NOTICE", "**hello**")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "http://localhost:4000/signin", cfg.SigninURL)
	assert.Equal(t, "http://localhost:4000/graphql", cfg.GraphQLURL)
	assert.Equal(t, 250*time.Millisecond, cfg.ActivityThrottle)
	assert.Equal(t, "**hello**", cfg.LoginNotice)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolateConfigEnv(t)
	path := writeConfigFile(t, `
listen_addr = "127.0.0.1:7000"
db_path = "/var/lib/statpanel/state.db"
activity_throttle = "5s"
login_notice = "Use your campus login."
`)
	t.Setenv("STATPANEL_CONFIG", path)
	t.Setenv("STATPANEL_LISTEN_ADDR", "127.0.0.1:7001")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7001", cfg.ListenAddr, "env overrides file")
	assert.Equal(t, "/var/lib/statpanel/state.db", cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.ActivityThrottle)
	assert.Equal(t, "Use your campus login.", cfg.LoginNotice)
	assert.Equal(t, DefaultGraphQLURL, cfg.GraphQLURL, "unset file fields keep defaults")
}

func TestLoad_FileMissing(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STATPANEL_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATPANEL_CONFIG")
}

func TestLoad_FileMalformed(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STATPANEL_CONFIG", writeConfigFile(t, "listen_addr = ["))

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
}

func TestLoad_InvalidActivityThrottle(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STATPANEL_ACTIVITY_THROTTLE", "not-a-duration")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATPANEL_ACTIVITY_THROTTLE")
}

func TestLoad_NegativeActivityThrottle(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STATPANEL_ACTIVITY_THROTTLE", "-1s")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
}

func TestLoad_HealthcheckTimeout(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STATPANEL_HEALTHCHECK_TIMEOUT", "500ms")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.HealthcheckTimeout)
}

func TestLoad_InvalidHealthcheckTimeout(t *testing.T) {
	for _, v := range []string{"soon", "0s", "-2s"} {
		t.Run(v, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("STATPANEL_HEALTHCHECK_TIMEOUT", v)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "STATPANEL_HEALTHCHECK_TIMEOUT")
		})
	}
}

func TestLoad_SecretKey_Valid(t *testing.T) {
	isolateConfigEnv(t)
	// 64 hex chars = 32 bytes
	t.Setenv("STATPANEL_SECRET_KEY", "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Len(t, cfg.SecretKey, 32)
	assert.True(t, cfg.HasSecretKey())
}

func TestLoad_SecretKey_TooShort(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STATPANEL_SECRET_KEY", "deadbeef")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATPANEL_SECRET_KEY")
}

func TestLoad_SecretKey_NotHex(t *testing.T) {
	isolateConfigEnv(t)
	// 64 chars but not valid hex
	t.Setenv("STATPANEL_SECRET_KEY", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STATPANEL_SECRET_KEY")
}
