package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requiredEnv = map[string]string{
	"APP_ENV":              "test",
	"APP_PORT":             "8080",
	"DB_USER":              "app",
	"DB_HOST":              "localhost",
	"DB_PORT":              "3306",
	"DB_NAME":              "events",
	"JWT_SECRET":           "secret",
	"ACCESS_TOKEN_TTL_MIN": "15",
}

// withFlags sets the persistent flag values for one test.
func withFlags(t *testing.T, env, level, format string) {
	t.Helper()
	oldEnv, oldLevel, oldFormat := envFile, logLevel, logFormat
	envFile, logLevel, logFormat = env, level, format
	t.Cleanup(func() { envFile, logLevel, logFormat = oldEnv, oldLevel, oldFormat })
}

// unsetEnv clears keys for the test and restores them afterwards, so a
// dotenv file is free to set them.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(k, old)
			} else {
				_ = os.Unsetenv(k)
			}
		})
	}
}

func TestRootRunsServeByDefault(t *testing.T) {
	require.NotNil(t, rootCmd.RunE)

	found, _, err := rootCmd.Find(nil)
	require.NoError(t, err)
	assert.Equal(t, rootCmd, found)

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])

	down, _, err := rootCmd.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, migrateDownCmd, down)
	assert.NotNil(t, down.Flags().Lookup("steps"))
}

func TestRootHelp(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--help"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	out := buf.String()
	for _, want := range []string{"Event booking API", "--env-file", "--log-level", "--log-format", "serve", "migrate"} {
		assert.Contains(t, out, want)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	for k, v := range requiredEnv {
		t.Setenv(k, v)
	}
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LOG_FORMAT", "json")

	withFlags(t, filepath.Join(t.TempDir(), "missing.env"), "", "")
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	withFlags(t, "", "debug", "console")
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	keys := make([]string, 0, len(requiredEnv))
	var body bytes.Buffer
	for k, v := range requiredEnv {
		keys = append(keys, k)
		body.WriteString(k + "=" + v + "\n")
	}
	unsetEnv(t, keys...)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, body.Bytes(), 0o600))

	withFlags(t, path, "", "")
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "events", cfg.DB.Name)
	assert.Equal(t, 15, cfg.Auth.AccessTTLMin)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	unsetEnv(t, "JWT_SECRET")
	for k, v := range requiredEnv {
		if k != "JWT_SECRET" {
			t.Setenv(k, v)
		}
	}
	withFlags(t, "", "", "")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestMigrateDownRejectsNonPositiveSteps(t *testing.T) {
	old := migrateSteps
	migrateSteps = 0
	t.Cleanup(func() { migrateSteps = old })

	err := migrateDownCmd.RunE(migrateDownCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--steps")
}
