package main

import (
	"fmt"
	"time"

	"github.com/launchdarkly/registration-contract-tests/config"
	"github.com/launchdarkly/registration-contract-tests/framework/ldtest"

	"github.com/spf13/pflag"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type commandParams struct {
	configPath    string
	baseURL       string
	fixturesPath  string
	filters       ldtest.RegexFilters
	workers       int
	retries       int
	maxFailures   int
	timeout       time.Duration
	expectTimeout time.Duration
	headed        bool
	slowMo        time.Duration
	browser       string
	outputDir     string
	noWebServer   bool
	ci            bool
	debug         bool
	debugAll      bool
}

func (c *commandParams) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML file with run settings")
	fs.StringVar(&c.baseURL, "url", config.DefaultBaseURL, "base URL of the application under test")
	fs.StringVar(&c.fixturesPath, "fixtures", "", "JSON file with test data (default: built-in data)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.IntVar(&c.workers, "workers", config.DefaultLocalWorkers, "maximum number of tests to run at once")
	fs.IntVar(&c.retries, "retries", config.DefaultRetries, "number of times to retry a failed test")
	fs.IntVar(&c.maxFailures, "max-failures", 0, "stop after this many tests have failed (0 for no limit)")
	fs.DurationVar(&c.timeout, "timeout", config.DefaultTimeout, "time limit for each test attempt")
	fs.DurationVar(&c.expectTimeout, "expect-timeout", config.DefaultExpectTimeout,
		"time limit for each assertion")
	fs.BoolVar(&c.headed, "headed", false, "show the browser window")
	fs.DurationVar(&c.slowMo, "slow-mo", 0, "delay between browser actions")
	fs.StringVar(&c.browser, "browser", config.DefaultBrowser, "chromium, firefox, or webkit")
	fs.StringVar(&c.outputDir, "output-dir", config.DefaultOutputDir, "directory for screenshots, videos, and traces")
	fs.BoolVar(&c.noWebServer, "no-web-server", false, "do not launch the application; it must already be running")
	fs.BoolVar(&c.ci, "ci", false, "use CI settings (default: true if the CI environment variable is set)")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
}

// runConfig builds the settings for the run. Flags that were given explicitly override the
// configuration file, which overrides the defaults.
func (c *commandParams) runConfig(fs *pflag.FlagSet, lookupEnv func(string) string) (config.RunConfig, error) {
	if fs.Changed("ci") {
		ciValue := fmt.Sprint(c.ci)
		envLookup := lookupEnv
		lookupEnv = func(name string) string {
			if name == "CI" {
				return ciValue
			}
			return envLookup(name)
		}
	}
	cfg := config.Default(lookupEnv)

	if c.configPath != "" {
		loaded, err := config.LoadFile(c.configPath, cfg)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if fs.Changed("url") {
		if ws := cfg.WebServer; ws != nil && ws.URL == cfg.BaseURL {
			updated := *ws
			updated.URL = c.baseURL
			cfg.WebServer = &updated
		}
		cfg.BaseURL = c.baseURL
	}
	if fs.Changed("fixtures") {
		cfg.FixturesPath = c.fixturesPath
	}
	if fs.Changed("workers") {
		cfg.Workers = c.workers
	}
	if fs.Changed("retries") {
		cfg.Retries = c.retries
	}
	if fs.Changed("max-failures") {
		if c.maxFailures == 0 {
			cfg.MaxFailures = ldvalue.OptionalInt{}
		} else {
			cfg.MaxFailures = ldvalue.NewOptionalInt(c.maxFailures)
		}
	}
	if fs.Changed("timeout") {
		cfg.Timeout = c.timeout
	}
	if fs.Changed("expect-timeout") {
		cfg.ExpectTimeout = c.expectTimeout
	}
	if fs.Changed("headed") {
		cfg.Headless = !c.headed
	}
	if fs.Changed("slow-mo") {
		cfg.SlowMo = c.slowMo
	}
	if fs.Changed("browser") {
		cfg.Browser = c.browser
	}
	if fs.Changed("output-dir") {
		cfg.OutputDir = c.outputDir
	}
	if c.noWebServer {
		cfg.WebServer = nil
	}

	return cfg, cfg.Validate()
}

func (c *commandParams) suiteConfig(cfg config.RunConfig, testLogger ldtest.TestLogger) ldtest.Config {
	return ldtest.Config{
		Filter:      c.filters.AsFilter,
		TestLogger:  testLogger,
		Workers:     cfg.Workers,
		Retries:     cfg.Retries,
		MaxFailures: cfg.MaxFailures.OrElse(0),
		Timeout:     cfg.Timeout,
	}
}
