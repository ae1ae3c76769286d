package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/launchdarkly/registration-contract-tests/framework"
	"github.com/launchdarkly/registration-contract-tests/framework/ldtest"

	"github.com/fatih/color"
)

var (
	passedColor  = color.New(color.FgGreen)
	failedColor  = color.New(color.FgRed, color.Bold)
	retryColor   = color.New(color.FgYellow)
	skippedColor = color.New(color.FgHiBlack)
	errorColor   = color.New(color.FgRed)
)

// ConsoleTestLogger reports progress as tests run. Several tests may be running at once, so every
// line names its test, and each call writes its lines together.
type ConsoleTestLogger struct {
	Out                  io.Writer
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	lock                 sync.Mutex
}

func (c *ConsoleTestLogger) TestStarted(id ldtest.TestID) {
	c.lock.Lock()
	defer c.lock.Unlock()
	fmt.Fprintf(c.Out, "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id ldtest.TestID, err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	fmt.Fprintf(c.Out, "  [%s] error:\n", id)
	for _, line := range strings.Split(err.Error(), "\n") {
		errorColor.Fprintf(c.Out, "    %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestRetrying(id ldtest.TestID, attempt int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	retryColor.Fprintf(c.Out, "  RETRY #%d: %s\n", attempt, id)
}

func (c *ConsoleTestLogger) TestFinished(id ldtest.TestID, failed bool, debugOutput framework.CapturedOutput) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if failed {
		failedColor.Fprintf(c.Out, "  FAILED: %s\n", id)
	} else {
		passedColor.Fprintf(c.Out, "  PASSED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Out, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id ldtest.TestID, reason string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if reason == "" {
		skippedColor.Fprintf(c.Out, "  SKIPPED: %s\n", id)
	} else {
		skippedColor.Fprintf(c.Out, "  SKIPPED: %s (%s)\n", id, reason)
	}
}

func printResults(out io.Writer, results ldtest.Results) {
	passed, failed, flaky, skipped := results.Counts()

	var flakyTests []string
	for _, t := range results.Tests {
		if t.Flaky {
			flakyTests = append(flakyTests, t.TestID.String())
		}
	}
	if len(flakyTests) > 0 {
		retryColor.Fprintf(out, "Flaky tests (passed on retry): %d\n", len(flakyTests))
		for _, name := range flakyTests {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}

	if len(results.Failures) > 0 {
		failedColor.Fprintf(out, "FAILED TESTS (%d):\n", len(results.Failures))
		for _, f := range results.Failures {
			fmt.Fprintf(out, "  %s (attempts: %d)\n", f.TestID, f.Attempts)
			for _, err := range f.Errors {
				for _, line := range strings.Split(err.Error(), "\n") {
					errorColor.Fprintf(out, "    %s\n", line)
				}
			}
		}
	}

	if results.Interrupted {
		failedColor.Fprintln(out, "Run was stopped after reaching the maximum number of failures")
	}

	summary := fmt.Sprintf("%d passed, %d failed, %d flaky, %d skipped", passed, failed, flaky, skipped)
	if results.OK() {
		passedColor.Fprintf(out, "All tests passed: %s\n", summary)
	} else {
		failedColor.Fprintf(out, "Tests failed: %s\n", summary)
	}
}
