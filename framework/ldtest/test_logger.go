package ldtest

import "github.com/launchdarkly/registration-contract-tests/framework"

// TestLogger receives notifications about test progress. Scenarios run concurrently, so
// implementations must be safe for concurrent use.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestRetrying(id TestID, attempt int)
	TestFinished(id TestID, failed bool, debugOutput framework.CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                  {}
func (n nullTestLogger) TestError(TestID, error)                             {}
func (n nullTestLogger) TestRetrying(TestID, int)                            {}
func (n nullTestLogger) TestFinished(TestID, bool, framework.CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                          {}
