// Package browser starts the browser that the scenarios drive and gives each test attempt an
// isolated session in it, capturing screenshots, videos, and traces according to the run
// configuration.
package browser

import (
	"errors"
	"fmt"

	"github.com/launchdarkly/registration-contract-tests/config"
	"github.com/launchdarkly/registration-contract-tests/framework"

	"github.com/playwright-community/playwright-go"
)

// Launcher owns the automation driver and one shared browser process. Sessions created from it
// share nothing but that process.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	device  *playwright.DeviceDescriptor
	cfg     config.RunConfig
	logger  framework.Logger
}

// Launch starts the driver and the configured browser.
func Launch(cfg config.RunConfig, debugLogger framework.Logger) (*Launcher, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	device, ok := pw.Devices[cfg.Device]
	if !ok {
		_ = pw.Stop()
		return nil, fmt.Errorf("unknown device %q", cfg.Device)
	}
	browserType, err := selectBrowserType(pw, cfg.Browser)
	if err != nil {
		_ = pw.Stop()
		return nil, err
	}

	debugLogger.Printf("Launching %s (headless: %t, slow-mo: %s)", cfg.Browser, cfg.Headless, cfg.SlowMo)
	browser, err := browserType.Launch(launchOptions(cfg))
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch %s: %w", cfg.Browser, err)
	}
	debugLogger.Printf("Browser version %s", browser.Version())

	return &Launcher{
		pw:      pw,
		browser: browser,
		device:  device,
		cfg:     cfg,
		logger:  debugLogger,
	}, nil
}

// Close shuts down the browser and the driver.
func (l *Launcher) Close() error {
	return errors.Join(l.browser.Close(), l.pw.Stop())
}

func selectBrowserType(pw *playwright.Playwright, name string) (playwright.BrowserType, error) {
	switch name {
	case "chromium":
		return pw.Chromium, nil
	case "firefox":
		return pw.Firefox, nil
	case "webkit":
		return pw.WebKit, nil
	default:
		return nil, fmt.Errorf("unknown browser %q", name)
	}
}

func launchOptions(cfg config.RunConfig) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}
	if cfg.SlowMo > 0 {
		opts.SlowMo = playwright.Float(float64(cfg.SlowMo.Milliseconds()))
	}
	return opts
}

// contextOptions emulates the configured device, resolves relative navigation against the base
// URL, and records video into dir if the video mode calls for it on this attempt.
func contextOptions(
	cfg config.RunConfig,
	device *playwright.DeviceDescriptor,
	dir string,
	attempt int,
) playwright.BrowserNewContextOptions {
	opts := playwright.BrowserNewContextOptions{
		BaseURL: playwright.String(cfg.BaseURL),
	}
	if device != nil {
		opts.UserAgent = playwright.String(device.UserAgent)
		opts.Viewport = device.Viewport
		opts.Screen = device.Screen
		opts.DeviceScaleFactor = playwright.Float(device.DeviceScaleFactor)
		opts.IsMobile = playwright.Bool(device.IsMobile)
		opts.HasTouch = playwright.Bool(device.HasTouch)
	}
	if cfg.Video.Record(attempt) {
		opts.RecordVideo = &playwright.RecordVideo{Dir: dir}
	}
	return opts
}
