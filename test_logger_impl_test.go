package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/launchdarkly/registration-contract-tests/framework"
	"github.com/launchdarkly/registration-contract-tests/framework/ldtest"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func testID(path ...string) ldtest.TestID {
	return ldtest.TestID{Path: path}
}

func TestConsoleTestLogger(t *testing.T) {
	var out bytes.Buffer
	c := &ConsoleTestLogger{Out: &out}
	id := testID("grupo", "caso")

	c.TestStarted(id)
	c.TestError(id, errors.New("first line\nsecond line"))
	c.TestRetrying(id, 1)
	c.TestFinished(id, false, nil)
	c.TestSkipped(testID("grupo", "otro"), "excluded by filter parameters")

	assert.Equal(t, `[grupo/caso]
  [grupo/caso] error:
    first line
    second line
  RETRY #1: grupo/caso
  PASSED: grupo/caso
  SKIPPED: grupo/otro (excluded by filter parameters)
`, out.String())
}

func TestConsoleTestLoggerDebugOutput(t *testing.T) {
	output := framework.CapturedOutput{{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), Message: "fill"}}

	var out bytes.Buffer
	c := &ConsoleTestLogger{Out: &out, DebugOutputOnFailure: true}
	c.TestFinished(testID("a"), false, output)
	assert.NotContains(t, out.String(), "DEBUG")
	c.TestFinished(testID("a"), true, output)
	assert.Contains(t, out.String(), "  FAILED: a\n    DEBUG [2024-05-01 10:00:00.000] fill\n")
}

func TestPrintResults(t *testing.T) {
	failure := ldtest.TestResult{
		TestID:   testID("grupo", "falla"),
		Errors:   []error{errors.New("expected text")},
		Attempts: 2,
	}
	results := ldtest.Results{
		Tests: []ldtest.TestResult{
			{TestID: testID("grupo", "pasa"), Attempts: 1},
			{TestID: testID("grupo", "inestable"), Attempts: 2, Flaky: true},
			failure,
			{TestID: testID("grupo", "omitida"), Skipped: true, SkipReason: "maximum number of failures reached"},
		},
		Failures:    []ldtest.TestResult{failure},
		Interrupted: true,
	}

	var out bytes.Buffer
	printResults(&out, results)
	assert.Equal(t, `Flaky tests (passed on retry): 1
  grupo/inestable
FAILED TESTS (1):
  grupo/falla (attempts: 2)
    expected text
Run was stopped after reaching the maximum number of failures
Tests failed: 2 passed, 1 failed, 1 flaky, 1 skipped
`, out.String())
}

func TestPrintResultsAllPassed(t *testing.T) {
	var out bytes.Buffer
	printResults(&out, ldtest.Results{Tests: []ldtest.TestResult{{TestID: testID("a"), Attempts: 1}}})
	assert.Equal(t, "All tests passed: 1 passed, 0 failed, 0 flaky, 0 skipped\n", out.String())
}
