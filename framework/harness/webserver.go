package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"sync"
	"time"

	"github.com/launchdarkly/registration-contract-tests/config"
	"github.com/launchdarkly/registration-contract-tests/framework"
)

const (
	readinessPollInterval = time.Millisecond * 100
	readinessProbeTimeout = time.Second * 2
	stopGracePeriod       = time.Second * 5
)

// WebServer is a process that serves the application under test, or a stand-in for an
// application that was already running when the harness started.
type WebServer struct {
	cmd     *exec.Cmd
	logger  framework.Logger
	exited  chan struct{}
	exitErr error
	stop    sync.Once
}

// StartWebServer launches the configured command and waits until its URL responds. If something
// is already responding at that URL, the result depends on cfg.ReuseExisting: either the running
// application is used and nothing is launched, or it is an error.
//
// Progress is written to output; the command's own output goes to the debug logger.
func StartWebServer(
	ctx context.Context,
	cfg config.WebServerConfig,
	debugLogger framework.Logger,
	output io.Writer,
) (*WebServer, error) {
	if debugLogger == nil {
		debugLogger = framework.NullLogger()
	}
	client := &http.Client{Timeout: readinessProbeTimeout}

	if status, err := probe(ctx, client, cfg.URL); err == nil && isReadyStatus(status) {
		if !cfg.ReuseExisting {
			return nil, fmt.Errorf("%s is already in use; stop that application or enable reuseExistingServer",
				cfg.URL)
		}
		fmt.Fprintf(output, "Using application already running at %s\n", cfg.URL)
		return &WebServer{}, nil
	}

	logger := framework.PrefixedLogger(debugLogger, "[WebServer] ")
	cmd := exec.Command("sh", "-c", cfg.Command)
	setProcessGroup(cmd)
	lineWriter := framework.NewLineWriter(logger)
	cmd.Stdout = lineWriter
	cmd.Stderr = lineWriter

	var args commandBuilder
	args.add("sh", "-c", cfg.Command)
	logger.Printf("Starting: %s", args)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start web server command: %w", err)
	}
	s := &WebServer{
		cmd:    cmd,
		logger: logger,
		exited: make(chan struct{}),
	}
	go func() {
		s.exitErr = cmd.Wait()
		lineWriter.Flush()
		close(s.exited)
	}()

	if err := s.awaitReady(ctx, client, cfg, output); err != nil {
		s.Stop()
		return nil, err
	}
	return s, nil
}

func (s *WebServer) awaitReady(
	ctx context.Context,
	client *http.Client,
	cfg config.WebServerConfig,
	output io.Writer,
) error {
	fmt.Fprintf(output, "Waiting for application at %s", cfg.URL)
	defer fmt.Fprintln(output)

	deadline := time.NewTimer(cfg.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(readinessPollInterval)
	defer ticker.Stop()

	var lastResult error
	for {
		fmt.Fprintf(output, ".")
		status, err := probe(ctx, client, cfg.URL)
		switch {
		case err != nil:
			lastResult = err
		case isReadyStatus(status):
			return nil
		default:
			lastResult = fmt.Errorf("status code %d", status)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.exited:
			if s.exitErr != nil {
				return fmt.Errorf("web server command exited before %s was ready: %w", cfg.URL, s.exitErr)
			}
			return fmt.Errorf("web server command exited before %s was ready", cfg.URL)
		case <-deadline.C:
			return fmt.Errorf("timed out after %s waiting for %s, result of last query was: %w",
				cfg.Timeout, cfg.URL, lastResult)
		case <-ticker.C:
		}
	}
}

// Launched returns false if the harness is using an application it did not start.
func (s *WebServer) Launched() bool {
	return s.cmd != nil
}

// Stop interrupts the launched process, and kills it if it has not exited within a few seconds.
// It does nothing if no process was launched.
func (s *WebServer) Stop() {
	if s.cmd == nil {
		return
	}
	s.stop.Do(func() {
		select {
		case <-s.exited:
			return
		default:
		}
		s.logger.Printf("Stopping")
		if err := interruptProcess(s.cmd); err != nil {
			s.logger.Printf("Could not interrupt process: %s", err)
		}
		select {
		case <-s.exited:
		case <-time.After(stopGracePeriod):
			s.logger.Printf("Process did not exit after %s, killing it", stopGracePeriod)
			_ = killProcess(s.cmd)
			<-s.exited
		}
	})
}

// A redirect or an auth challenge still means the listener is up.
func isReadyStatus(status int) bool {
	return status >= 200 && status <= 403
}

func probe(ctx context.Context, client *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode, nil
}

var errNoProcess = errors.New("process was not started")
