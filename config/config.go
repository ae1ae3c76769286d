// Package config defines the settings for a test run: where the application is, how long to
// wait for it, how many times to retry, how many workers to use, and what diagnostics to keep.
//
// Settings come from three layers. Defaults depend on whether the run is in a CI environment;
// a YAML file can override any of them; command-line flags override the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL          = "http://localhost:3000"
	DefaultTimeout          = time.Second * 20
	DefaultExpectTimeout    = time.Second * 5
	DefaultRetries          = 1
	DefaultLocalWorkers     = 3
	DefaultCIWorkers        = 1
	DefaultCIMaxFailures    = 3
	DefaultOutputDir        = "test-results"
	DefaultBrowser          = "chromium"
	DefaultDevice           = "Desktop Chrome"
	DefaultWebServerCommand = "npm start"
	DefaultWebServerTimeout = time.Second * 60
)

var knownBrowsers = []string{"chromium", "firefox", "webkit"}

// RunConfig holds every setting for a test run.
type RunConfig struct {
	BaseURL       string
	Timeout       time.Duration
	ExpectTimeout time.Duration
	Retries       int
	Workers       int
	MaxFailures   ldvalue.OptionalInt
	Screenshot    ArtifactMode
	Video         ArtifactMode
	Trace         ArtifactMode
	Headless      bool
	SlowMo        time.Duration
	Browser       string
	Device        string
	OutputDir     string
	FixturesPath  string
	CI            bool

	// WebServer is nil if the application is not launched by the harness.
	WebServer *WebServerConfig
}

// WebServerConfig describes a process that serves the application under test.
type WebServerConfig struct {
	Command       string
	URL           string
	Timeout       time.Duration
	ReuseExisting bool
}

// Default returns the default settings. The lookup function is normally os.Getenv; "CI" selects
// the settings for constrained CI machines and "SLOWMO" sets a delay in milliseconds between
// browser actions.
func Default(lookup func(string) string) RunConfig {
	ci := lookup("CI") != "" && lookup("CI") != "false"
	c := RunConfig{
		BaseURL:       DefaultBaseURL,
		Timeout:       DefaultTimeout,
		ExpectTimeout: DefaultExpectTimeout,
		Retries:       DefaultRetries,
		Workers:       DefaultLocalWorkers,
		Screenshot:    ArtifactOnlyOnFailure,
		Video:         ArtifactRetainOnFailure,
		Trace:         ArtifactOnFirstRetry,
		Headless:      true,
		Browser:       DefaultBrowser,
		Device:        DefaultDevice,
		OutputDir:     DefaultOutputDir,
		CI:            ci,
		WebServer: &WebServerConfig{
			Command: DefaultWebServerCommand,
			URL:     DefaultBaseURL,
			Timeout: DefaultWebServerTimeout,
		},
	}
	if ci {
		c.Workers = DefaultCIWorkers
		c.MaxFailures = ldvalue.NewOptionalInt(DefaultCIMaxFailures)
	}
	if ms, err := strconv.Atoi(lookup("SLOWMO")); err == nil && ms > 0 {
		c.SlowMo = time.Duration(ms) * time.Millisecond
	}
	return c
}

// Validate checks for settings that cannot work.
func (c RunConfig) Validate() error {
	var errs []error
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base URL must not be empty"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, was %s", c.Timeout))
	}
	if c.ExpectTimeout <= 0 {
		errs = append(errs, fmt.Errorf("expect timeout must be positive, was %s", c.ExpectTimeout))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, was %d", c.Retries))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, was %d", c.Workers))
	}
	if c.MaxFailures.IsDefined() && c.MaxFailures.IntValue() < 1 {
		errs = append(errs, fmt.Errorf("max failures must be at least 1, was %d", c.MaxFailures.IntValue()))
	}
	if c.SlowMo < 0 {
		errs = append(errs, fmt.Errorf("slow-mo must not be negative, was %s", c.SlowMo))
	}
	if !contains(knownBrowsers, c.Browser) {
		errs = append(errs, fmt.Errorf("browser %q is not one of %q", c.Browser, knownBrowsers))
	}
	for _, err := range []error{
		checkMode("screenshot", c.Screenshot, screenshotModes),
		checkMode("video", c.Video, videoModes),
		checkMode("trace", c.Trace, traceModes),
	} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if ws := c.WebServer; ws != nil {
		if ws.Command == "" {
			errs = append(errs, errors.New("web server command must not be empty"))
		}
		if ws.URL == "" {
			errs = append(errs, errors.New("web server URL must not be empty"))
		}
		if ws.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("web server timeout must be positive, was %s", ws.Timeout))
		}
	}
	return errors.Join(errs...)
}

// fileConfig is the YAML representation. Pointer fields distinguish "not set" from zero values.
type fileConfig struct {
	BaseURL       *string        `yaml:"baseURL"`
	Timeout       *time.Duration `yaml:"timeout"`
	ExpectTimeout *time.Duration `yaml:"expectTimeout"`
	Retries       *int           `yaml:"retries"`
	Workers       *int           `yaml:"workers"`
	MaxFailures   *int           `yaml:"maxFailures"`
	Screenshot    *ArtifactMode  `yaml:"screenshot"`
	Video         *ArtifactMode  `yaml:"video"`
	Trace         *ArtifactMode  `yaml:"trace"`
	Headless      *bool          `yaml:"headless"`
	SlowMo        *time.Duration `yaml:"slowMo"`
	Browser       *string        `yaml:"browser"`
	Device        *string        `yaml:"device"`
	OutputDir     *string        `yaml:"outputDir"`
	Fixtures      *string        `yaml:"fixtures"`
	WebServer     *fileWebServer `yaml:"webServer"`
}

type fileWebServer struct {
	Disabled      bool           `yaml:"disabled"`
	Command       *string        `yaml:"command"`
	URL           *string        `yaml:"url"`
	Timeout       *time.Duration `yaml:"timeout"`
	ReuseExisting *bool          `yaml:"reuseExistingServer"`
}

// LoadFile applies the settings in a YAML file on top of base.
func LoadFile(path string, base RunConfig) (RunConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()
	c, err := Load(f, base)
	if err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load applies YAML settings from a reader on top of base. Unknown keys are an error.
func Load(r io.Reader, base RunConfig) (RunConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var fc fileConfig
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("decode config: %w", err)
	}
	return fc.applyTo(base), nil
}

func (fc fileConfig) applyTo(c RunConfig) RunConfig {
	setString(&c.BaseURL, fc.BaseURL)
	setDuration(&c.Timeout, fc.Timeout)
	setDuration(&c.ExpectTimeout, fc.ExpectTimeout)
	setInt(&c.Retries, fc.Retries)
	setInt(&c.Workers, fc.Workers)
	if fc.MaxFailures != nil {
		if *fc.MaxFailures == 0 {
			c.MaxFailures = ldvalue.OptionalInt{}
		} else {
			c.MaxFailures = ldvalue.NewOptionalInt(*fc.MaxFailures)
		}
	}
	if fc.Screenshot != nil {
		c.Screenshot = *fc.Screenshot
	}
	if fc.Video != nil {
		c.Video = *fc.Video
	}
	if fc.Trace != nil {
		c.Trace = *fc.Trace
	}
	if fc.Headless != nil {
		c.Headless = *fc.Headless
	}
	setDuration(&c.SlowMo, fc.SlowMo)
	setString(&c.Browser, fc.Browser)
	setString(&c.Device, fc.Device)
	setString(&c.OutputDir, fc.OutputDir)
	setString(&c.FixturesPath, fc.Fixtures)

	if ws := fc.WebServer; ws != nil {
		if ws.Disabled {
			c.WebServer = nil
		} else {
			merged := WebServerConfig{URL: c.BaseURL, Timeout: DefaultWebServerTimeout}
			if c.WebServer != nil {
				merged = *c.WebServer
			}
			setString(&merged.Command, ws.Command)
			setString(&merged.URL, ws.URL)
			setDuration(&merged.Timeout, ws.Timeout)
			if ws.ReuseExisting != nil {
				merged.ReuseExisting = *ws.ReuseExisting
			}
			c.WebServer = &merged
		}
	}
	return c
}

func setString(dest *string, value *string) {
	if value != nil {
		*dest = *value
	}
}

func setInt(dest *int, value *int) {
	if value != nil {
		*dest = *value
	}
}

func setDuration(dest *time.Duration, value *time.Duration) {
	if value != nil {
		*dest = *value
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
