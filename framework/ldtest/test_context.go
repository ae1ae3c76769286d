package ldtest

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/launchdarkly/registration-contract-tests/framework"
)

// T represents one attempt at a test or a group of tests.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner, and with some extra features such as captured debug logging,
// retries, and a per-attempt timeout.
type T struct {
	env         *environment
	id          TestID
	attempt     int
	debugLogger framework.CapturingLogger
	failed      bool
	aborted     bool
	skipped     bool
	timedOut    bool
	inScenario  bool
	skipReason  string
	errors      []error
	cleanups    []func()
	cleanedUp   bool
	cleanupOnce sync.Once
	lock        sync.Mutex
}

type attemptState struct {
	failed     bool
	aborted    bool
	skipped    bool
	skipReason string
	errors     []error
}

// ID returns the full identifier of the current test.
func (t *T) ID() TestID {
	return t.id
}

// Attempt returns zero for the first attempt at a scenario, one for the first retry, and so on.
func (t *T) Attempt() int {
	return t.attempt
}

// Context returns the value that was passed as Config.Context. Domain-specific test code uses it
// to reach shared resources such as the browser.
func (t *T) Context() interface{} {
	return t.env.config.Context
}

// Failed returns true if the current attempt has failed so far.
func (t *T) Failed() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.failed
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.addError(fmt.Errorf(format, args...))
}

func (t *T) addError(err error) {
	t.lock.Lock()
	if t.timedOut {
		t.lock.Unlock()
		t.Debug("error after timeout: %s", err)
		return
	}
	t.failed = true
	t.errors = append(t.errors, err)
	t.lock.Unlock()
	t.env.testLogger.TestError(t.id, err)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	panic(t)
}

// Abort fails the test and immediately exits, and also prevents it from being retried. It is
// for problems that a fresh attempt cannot fix, such as a reference to missing test data.
func (t *T) Abort(err error) {
	t.lock.Lock()
	t.aborted = true
	t.lock.Unlock()
	t.addError(err)
	t.FailNow()
}

func (t *T) Skip() {
	t.lock.Lock()
	t.skipped = true
	t.lock.Unlock()
	panic(t)
}

func (t *T) SkipWithReason(reason string) {
	t.lock.Lock()
	t.skipReason = reason
	t.lock.Unlock()
	t.Skip()
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the attempt.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return &t.debugLogger
}

// Defer schedules a function to be called at the end of the current attempt, even if it failed,
// panicked, or timed out. Deferred functions run in reverse order. A function deferred after the
// attempt's cleanups have already run, as happens when a timed-out test carries on, is called
// immediately.
func (t *T) Defer(fn func()) {
	t.lock.Lock()
	if t.cleanedUp {
		t.lock.Unlock()
		t.runCleanup(fn)
		return
	}
	t.cleanups = append(t.cleanups, fn)
	t.lock.Unlock()
}

// Run runs a group of tests synchronously. Scenarios declared inside the group with
// RunScenario are scheduled and may still be running when Run returns.
func (t *T) Run(name string, action func(*T)) {
	id := t.id.Plus(name)
	t1 := t.env.newT(id, t.attempt)
	t1.inScenario = t.inScenario
	t1.run(action)
	state := t1.state()
	switch {
	case state.skipped:
		t.env.testLogger.TestSkipped(id, state.skipReason)
	case state.failed && t.inScenario:
		replayOutput(t1.debugLogger.Output(), &t.debugLogger)
		t.Errorf("subtest %q failed", name)
	case state.failed:
		t.env.addFailure(TestResult{TestID: id, Errors: state.errors, Attempts: 1, order: t.env.nextOrder()})
		t.env.testLogger.TestFinished(id, true, t1.debugLogger.Output())
	}
}

// RunScenario schedules a test scenario. The action is called with a fresh T for each attempt,
// on one of the worker goroutines. Inside a scenario it is equivalent to Run.
func (t *T) RunScenario(name string, action func(*T)) {
	if t.inScenario {
		t.Run(name, action)
		return
	}
	id := t.id.Plus(name)
	env := t.env
	if env.config.Filter != nil && !env.config.Filter(id) {
		env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	order := env.nextOrder()
	if env.config.ListOnly {
		env.addResult(TestResult{TestID: id, order: order})
		return
	}
	env.group.Go(func() error {
		env.runScenario(id, order, action)
		return nil
	})
}

func (t *T) run(action func(*T)) {
	defer t.runCleanups()
	defer func() {
		if r := recover(); r != nil {
			t.recovered(r)
		}
	}()
	action(t)
}

func (t *T) recovered(r interface{}) {
	t.lock.Lock()
	if t.skipped || t.timedOut {
		t.lock.Unlock()
		return
	}
	t.failed = true
	var addError error
	if _, ok := r.(*T); ok {
		if len(t.errors) == 0 {
			addError = errors.New("test failed with no failure message")
		}
	} else {
		addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
	}
	if addError != nil {
		t.errors = append(t.errors, addError)
	}
	t.lock.Unlock()
	if addError != nil {
		t.env.testLogger.TestError(t.id, addError)
	}
}

func (t *T) runCleanups() {
	t.cleanupOnce.Do(func() {
		t.lock.Lock()
		cleanups := t.cleanups
		t.cleanups = nil
		t.cleanedUp = true
		t.lock.Unlock()
		for i := len(cleanups) - 1; i >= 0; i-- {
			t.runCleanup(cleanups[i])
		}
	})
}

func (t *T) runCleanup(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(*T); !ok {
				t.Errorf("unexpected panic in deferred function: %+v", r)
			}
		}
	}()
	fn()
}

func (t *T) markTimedOut(timeout time.Duration) {
	err := fmt.Errorf("test timed out after %s", timeout)
	t.lock.Lock()
	t.failed = true
	t.timedOut = true
	t.errors = append(t.errors, err)
	t.lock.Unlock()
	t.env.testLogger.TestError(t.id, err)
}

func (t *T) state() attemptState {
	t.lock.Lock()
	defer t.lock.Unlock()
	return attemptState{
		failed:     t.failed,
		aborted:    t.aborted,
		skipped:    t.skipped,
		skipReason: t.skipReason,
		errors:     append([]error(nil), t.errors...),
	}
}

func replayOutput(output framework.CapturedOutput, dest framework.Logger) {
	for _, m := range output {
		dest.Printf("%s", m.Message)
	}
}
