package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/launchdarkly/registration-contract-tests/config"
	"github.com/launchdarkly/registration-contract-tests/framework"

	"github.com/playwright-community/playwright-go"
)

const (
	traceFileName          = "trace.zip"
	failedScreenshotName   = "test-failed-1.png"
	finishedScreenshotName = "test-finished-1.png"
)

// Session is one test attempt's isolated browser context and its single page. Nothing in it is
// shared with other sessions: cookies, storage, and the application's own state in the page
// start fresh every time.
type Session struct {
	Context playwright.BrowserContext
	Page    playwright.Page

	dir       string
	attempt   int
	cfg       config.RunConfig
	tracing   bool
	recording bool
	logger    framework.Logger
}

// NewSession opens a browser context for one attempt of a test. The test name determines where
// artifacts are written.
func (l *Launcher) NewSession(testName string, attempt int, logger framework.Logger) (*Session, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	dir := ArtifactDir(l.cfg.OutputDir, testName, attempt)
	opts := contextOptions(l.cfg, l.device, dir, attempt)

	bc, err := l.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	bc.SetDefaultTimeout(float64(l.cfg.Timeout.Milliseconds()))

	s := &Session{
		Context:   bc,
		dir:       dir,
		attempt:   attempt,
		cfg:       l.cfg,
		recording: opts.RecordVideo != nil,
		logger:    logger,
	}

	if l.cfg.Trace.Record(attempt) {
		if err := bc.Tracing().Start(playwright.TracingStartOptions{
			Title:       playwright.String(testName),
			Screenshots: playwright.Bool(true),
			Snapshots:   playwright.Bool(true),
		}); err != nil {
			_ = bc.Close()
			return nil, fmt.Errorf("could not start tracing: %w", err)
		}
		s.tracing = true
	}

	page, err := bc.NewPage()
	if err != nil {
		_ = bc.Close()
		return nil, fmt.Errorf("could not open page: %w", err)
	}
	page.OnConsole(func(msg playwright.ConsoleMessage) {
		logger.Printf("[console.%s] %s", msg.Type(), msg.Text())
	})
	page.OnPageError(func(err error) {
		logger.Printf("[page error] %s", err)
	})
	s.Page = page
	return s, nil
}

// Close saves whatever artifacts the configuration says to keep for an attempt with this
// outcome, then closes the browser context. Artifacts that are not kept are deleted.
func (s *Session) Close(failed bool) error {
	var errs []error

	if s.cfg.Screenshot.Keep(s.attempt, failed) {
		name := finishedScreenshotName
		if failed {
			name = failedScreenshotName
		}
		path := filepath.Join(s.dir, name)
		if _, err := s.Page.Screenshot(playwright.PageScreenshotOptions{
			Path:     playwright.String(path),
			FullPage: playwright.Bool(true),
		}); err != nil {
			errs = append(errs, fmt.Errorf("screenshot: %w", err))
		} else {
			s.logger.Printf("Saved screenshot: %s", path)
		}
	}

	if s.tracing {
		var err error
		if s.cfg.Trace.Keep(s.attempt, failed) {
			path := filepath.Join(s.dir, traceFileName)
			if err = s.Context.Tracing().Stop(path); err == nil {
				s.logger.Printf("Saved trace: %s", path)
			}
		} else {
			err = s.Context.Tracing().Stop()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("trace: %w", err))
		}
	}

	var video playwright.Video
	if s.recording {
		video = s.Page.Video()
	}

	if err := s.Context.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser context: %w", err))
	}

	// The video file is complete only once the context is closed.
	if video != nil {
		if s.cfg.Video.Keep(s.attempt, failed) {
			if path, err := video.Path(); err == nil {
				s.logger.Printf("Saved video: %s", path)
			}
		} else if err := video.Delete(); err != nil {
			errs = append(errs, fmt.Errorf("delete video: %w", err))
		}
	}

	// Leaves the directory in place if anything was saved in it.
	_ = os.Remove(s.dir)

	return errors.Join(errs...)
}

// ArtifactDir is where artifacts for one attempt of a test are written. Retries get their own
// directory so that they do not overwrite the first attempt's artifacts.
func ArtifactDir(outputDir, testName string, attempt int) string {
	name := slug(testName)
	if attempt > 0 {
		name = fmt.Sprintf("%s-retry%d", name, attempt)
	}
	return filepath.Join(outputDir, name)
}
