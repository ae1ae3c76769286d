package config

import (
	"os"
	"strings"
	"testing"
	"time"

	helpers "github.com/launchdarkly/go-test-helpers/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

func env(vars map[string]string) func(string) string {
	return func(name string) string { return vars[name] }
}

func TestLocalDefaults(t *testing.T) {
	c := Default(env(nil))
	assert.Equal(t, "http://localhost:3000", c.BaseURL)
	assert.Equal(t, 20*time.Second, c.Timeout)
	assert.Equal(t, 5*time.Second, c.ExpectTimeout)
	assert.Equal(t, 1, c.Retries)
	assert.Equal(t, 3, c.Workers)
	assert.False(t, c.MaxFailures.IsDefined())
	assert.Equal(t, ArtifactOnlyOnFailure, c.Screenshot)
	assert.Equal(t, ArtifactRetainOnFailure, c.Video)
	assert.Equal(t, ArtifactOnFirstRetry, c.Trace)
	assert.True(t, c.Headless)
	assert.Equal(t, time.Duration(0), c.SlowMo)
	assert.Equal(t, "chromium", c.Browser)
	assert.Equal(t, "Desktop Chrome", c.Device)
	assert.False(t, c.CI)
	require.NotNil(t, c.WebServer)
	assert.Equal(t, WebServerConfig{Command: "npm start", URL: "http://localhost:3000", Timeout: time.Minute},
		*c.WebServer)
	assert.NoError(t, c.Validate())
}

func TestCIDefaults(t *testing.T) {
	c := Default(env(map[string]string{"CI": "true"}))
	assert.True(t, c.CI)
	assert.Equal(t, 1, c.Workers)
	assert.Equal(t, 1, c.Retries)
	assert.Equal(t, ldvalue.NewOptionalInt(3), c.MaxFailures)
	assert.NoError(t, c.Validate())
}

func TestCIFalseIsNotCI(t *testing.T) {
	assert.False(t, Default(env(map[string]string{"CI": "false"})).CI)
}

func TestSlowMoFromEnvironment(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, Default(env(map[string]string{"SLOWMO": "250"})).SlowMo)
	assert.Equal(t, time.Duration(0), Default(env(map[string]string{"SLOWMO": "fast"})).SlowMo)
}

func TestLoadOverridesOnlyWhatIsSet(t *testing.T) {
	base := Default(env(nil))
	c, err := Load(strings.NewReader(`
baseURL: http://app.test:8080
timeout: 30s
workers: 5
maxFailures: 2
video: "off"
webServer:
  command: go run ./cmd/app
  reuseExistingServer: true
`), base)
	require.NoError(t, err)

	assert.Equal(t, "http://app.test:8080", c.BaseURL)
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, 5, c.Workers)
	assert.Equal(t, ldvalue.NewOptionalInt(2), c.MaxFailures)
	assert.Equal(t, ArtifactOff, c.Video)
	assert.Equal(t, base.ExpectTimeout, c.ExpectTimeout)
	assert.Equal(t, base.Retries, c.Retries)
	assert.Equal(t, base.Trace, c.Trace)
	require.NotNil(t, c.WebServer)
	assert.Equal(t, "go run ./cmd/app", c.WebServer.Command)
	assert.Equal(t, "http://localhost:3000", c.WebServer.URL)
	assert.True(t, c.WebServer.ReuseExisting)

	assert.Equal(t, "npm start", base.WebServer.Command, "base config must not be modified")
}

func TestLoadCanDisableWebServer(t *testing.T) {
	c, err := Load(strings.NewReader("webServer:\n  disabled: true\n"), Default(env(nil)))
	require.NoError(t, err)
	assert.Nil(t, c.WebServer)
}

func TestLoadCanRemoveMaxFailures(t *testing.T) {
	c, err := Load(strings.NewReader("maxFailures: 0\n"), Default(env(map[string]string{"CI": "1"})))
	require.NoError(t, err)
	assert.False(t, c.MaxFailures.IsDefined())
}

func TestLoadEmptyDocument(t *testing.T) {
	base := Default(env(nil))
	c, err := Load(strings.NewReader(""), base)
	require.NoError(t, err)
	assert.Equal(t, base, c)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("wrokers: 4\n"), Default(env(nil)))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	helpers.WithTempFile(func(path string) {
		require.NoError(t, os.WriteFile(path, []byte("retries: 0\nheadless: false\n"), 0o600))
		c, err := LoadFile(path, Default(env(nil)))
		require.NoError(t, err)
		assert.Equal(t, 0, c.Retries)
		assert.False(t, c.Headless)
	})
}

func TestLoadFileErrorNamesTheFile(t *testing.T) {
	helpers.WithTempFile(func(path string) {
		require.NoError(t, os.WriteFile(path, []byte("timeout: [1, 2]\n"), 0o600))
		_, err := LoadFile(path, Default(env(nil)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}

func TestValidate(t *testing.T) {
	for name, modify := range map[string]func(*RunConfig){
		"no base URL":       func(c *RunConfig) { c.BaseURL = "" },
		"zero timeout":      func(c *RunConfig) { c.Timeout = 0 },
		"zero expect":       func(c *RunConfig) { c.ExpectTimeout = 0 },
		"negative retries":  func(c *RunConfig) { c.Retries = -1 },
		"no workers":        func(c *RunConfig) { c.Workers = 0 },
		"zero max failures": func(c *RunConfig) { c.MaxFailures = ldvalue.NewOptionalInt(0) },
		"unknown browser":   func(c *RunConfig) { c.Browser = "netscape" },
		"bad screenshot":    func(c *RunConfig) { c.Screenshot = ArtifactOnFirstRetry },
		"bad video":         func(c *RunConfig) { c.Video = ArtifactOnAllRetries },
		"bad trace":         func(c *RunConfig) { c.Trace = "sometimes" },
		"no server command": func(c *RunConfig) { c.WebServer.Command = "" },
		"zero server wait":  func(c *RunConfig) { c.WebServer.Timeout = 0 },
		"negative slow-mo":  func(c *RunConfig) { c.SlowMo = -time.Second },
	} {
		t.Run(name, func(t *testing.T) {
			c := Default(env(nil))
			modify(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestArtifactModes(t *testing.T) {
	type expectation struct {
		recordFirst, recordRetry1, recordRetry2 bool
		keepPassed, keepFailed, keepRetryFailed bool
	}
	for mode, e := range map[ArtifactMode]expectation{
		ArtifactOff:             {false, false, false, false, false, false},
		ArtifactOn:              {true, true, true, true, true, true},
		ArtifactOnlyOnFailure:   {false, false, false, false, true, true},
		ArtifactRetainOnFailure: {true, true, true, false, true, true},
		ArtifactOnFirstRetry:    {false, true, false, false, false, true},
		ArtifactOnAllRetries:    {false, true, true, false, false, true},
	} {
		t.Run(string(mode), func(t *testing.T) {
			assert.Equal(t, e.recordFirst, mode.Record(0), "record on first attempt")
			assert.Equal(t, e.recordRetry1, mode.Record(1), "record on first retry")
			assert.Equal(t, e.recordRetry2, mode.Record(2), "record on second retry")
			assert.Equal(t, e.keepPassed, mode.Keep(0, false), "keep after first attempt passed")
			assert.Equal(t, e.keepFailed, mode.Keep(0, true), "keep after first attempt failed")
			assert.Equal(t, e.keepRetryFailed, mode.Keep(1, true), "keep after first retry failed")
		})
	}
}
