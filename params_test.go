package main

import (
	"os"
	"testing"
	"time"

	"github.com/launchdarkly/registration-contract-tests/config"

	helpers "github.com/launchdarkly/go-test-helpers/v2"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func parseParams(t *testing.T, args ...string) (*commandParams, *pflag.FlagSet) {
	var params commandParams
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	params.addFlags(fs)
	require.NoError(t, fs.Parse(args))
	return &params, fs
}

func env(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

func TestDefaultsWithNoFlags(t *testing.T) {
	params, fs := parseParams(t)
	cfg, err := params.runConfig(fs, env(nil))
	require.NoError(t, err)
	assert.Equal(t, config.Default(env(nil)), cfg)
}

func TestFlagDefaultsDoNotOverrideEnvironment(t *testing.T) {
	params, fs := parseParams(t)
	cfg, err := params.runConfig(fs, env(map[string]string{"CI": "true"}))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, ldvalue.NewOptionalInt(3), cfg.MaxFailures)
}

func TestCIFlag(t *testing.T) {
	params, fs := parseParams(t, "--ci")
	cfg, err := params.runConfig(fs, env(nil))
	require.NoError(t, err)
	assert.True(t, cfg.CI)
	assert.Equal(t, 1, cfg.Workers)

	params, fs = parseParams(t, "--ci=false")
	cfg, err = params.runConfig(fs, env(map[string]string{"CI": "1"}))
	require.NoError(t, err)
	assert.False(t, cfg.CI)
	assert.Equal(t, 3, cfg.Workers)
}

func TestFlagsOverrideDefaults(t *testing.T) {
	params, fs := parseParams(t,
		"--url", "http://localhost:5173",
		"--workers", "6",
		"--retries", "0",
		"--max-failures", "2",
		"--timeout", "45s",
		"--expect-timeout", "2s",
		"--headed",
		"--slow-mo", "100ms",
		"--browser", "firefox",
		"--output-dir", "out",
		"--fixtures", "data.json",
	)
	cfg, err := params.runConfig(fs, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173", cfg.BaseURL)
	assert.Equal(t, "http://localhost:5173", cfg.WebServer.URL)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, 0, cfg.Retries)
	assert.Equal(t, ldvalue.NewOptionalInt(2), cfg.MaxFailures)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.ExpectTimeout)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 100*time.Millisecond, cfg.SlowMo)
	assert.Equal(t, "firefox", cfg.Browser)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "data.json", cfg.FixturesPath)
}

func TestNoWebServerFlag(t *testing.T) {
	params, fs := parseParams(t, "--no-web-server")
	cfg, err := params.runConfig(fs, env(nil))
	require.NoError(t, err)
	assert.Nil(t, cfg.WebServer)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	helpers.WithTempFile(func(path string) {
		require.NoError(t, os.WriteFile(path, []byte(`
baseURL: http://app.test
workers: 4
retries: 3
webServer:
  url: http://app.test/health
`), 0o600))
		params, fs := parseParams(t, "--config", path, "--retries", "1", "--url", "http://other.test")
		cfg, err := params.runConfig(fs, env(nil))
		require.NoError(t, err)
		assert.Equal(t, "http://other.test", cfg.BaseURL)
		assert.Equal(t, "http://app.test/health", cfg.WebServer.URL, "a separate readiness URL is kept")
		assert.Equal(t, 4, cfg.Workers)
		assert.Equal(t, 1, cfg.Retries)
	})
}

func TestInvalidSettingsAreRejected(t *testing.T) {
	params, fs := parseParams(t, "--workers", "0")
	_, err := params.runConfig(fs, env(nil))
	assert.Error(t, err)

	params, fs = parseParams(t, "--config", "./no/such/file.yaml")
	_, err = params.runConfig(fs, env(nil))
	assert.Error(t, err)
}

func TestSuiteConfig(t *testing.T) {
	params, fs := parseParams(t, "--run", "edad", "--skip", "negativa", "--max-failures", "5")
	cfg, err := params.runConfig(fs, env(nil))
	require.NoError(t, err)

	sc := params.suiteConfig(cfg, nil)
	assert.Equal(t, 3, sc.Workers)
	assert.Equal(t, 1, sc.Retries)
	assert.Equal(t, 5, sc.MaxFailures)
	assert.Equal(t, 20*time.Second, sc.Timeout)
	require.NotNil(t, sc.Filter)
}
