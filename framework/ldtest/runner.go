package ldtest

import (
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	abandonGracePeriod = time.Second * 10
	maxFailuresReason  = "maximum number of failures reached"
)

// Config controls how tests are scheduled and reported.
type Config struct {
	// Filter selects which scenarios to run. If nil, all scenarios run.
	Filter Filter

	// TestLogger receives progress notifications. If nil, nothing is reported.
	TestLogger TestLogger

	// Context is an arbitrary value that tests can retrieve with T.Context.
	Context interface{}

	// Workers is the maximum number of scenarios that run at the same time. Values below 1 mean 1.
	Workers int

	// Retries is the number of times a failed scenario is attempted again.
	Retries int

	// MaxFailures stops the run after this many scenarios have failed. Zero means no limit.
	MaxFailures int

	// Timeout bounds each attempt at a scenario. Zero means no limit.
	Timeout time.Duration

	// ListOnly records the scenarios that would run, without running them.
	ListOnly bool
}

type environment struct {
	config     Config
	testLogger TestLogger
	group      errgroup.Group
	results    Results
	order      int
	failCount  int
	lock       sync.Mutex
}

// Run calls the action with a root T, and waits for every scenario it schedules to finish.
func Run(config Config, action func(*T)) Results {
	env := &environment{config: config, testLogger: config.TestLogger}
	if env.testLogger == nil {
		env.testLogger = nullTestLogger{}
	}
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	env.group.SetLimit(workers)

	root := env.newT(TestID{}, 0)
	root.run(action)
	_ = env.group.Wait()

	if state := root.state(); state.failed {
		env.addFailure(TestResult{TestID: root.id, Errors: state.errors, Attempts: 1, order: env.nextOrder()})
	}

	env.lock.Lock()
	defer env.lock.Unlock()
	ret := env.results
	sortResults(ret.Tests)
	sortResults(ret.Failures)
	return ret
}

func (e *environment) newT(id TestID, attempt int) *T {
	return &T{env: e, id: id, attempt: attempt}
}

func (e *environment) nextOrder() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.order++
	return e.order
}

func (e *environment) stopped() bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.results.Interrupted
}

func (e *environment) addResult(result TestResult) {
	e.lock.Lock()
	e.results.Tests = append(e.results.Tests, result)
	e.lock.Unlock()
}

func (e *environment) addFailure(result TestResult) {
	e.lock.Lock()
	e.results.Tests = append(e.results.Tests, result)
	e.results.Failures = append(e.results.Failures, result)
	e.failCount++
	if e.config.MaxFailures > 0 && e.failCount >= e.config.MaxFailures {
		e.results.Interrupted = true
	}
	e.lock.Unlock()
}

func (e *environment) runScenario(id TestID, order int, action func(*T)) {
	if e.stopped() {
		e.testLogger.TestSkipped(id, maxFailuresReason)
		e.addResult(TestResult{TestID: id, Skipped: true, SkipReason: maxFailuresReason, order: order})
		return
	}

	e.testLogger.TestStarted(id)
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			e.testLogger.TestRetrying(id, attempt)
		}
		t := e.runAttempt(id, attempt, action)
		state := t.state()
		if state.skipped {
			e.testLogger.TestSkipped(id, state.skipReason)
			e.addResult(TestResult{TestID: id, Skipped: true, SkipReason: state.skipReason,
				Attempts: attempt + 1, order: order})
			return
		}
		e.testLogger.TestFinished(id, state.failed, t.debugLogger.Output())
		if !state.failed {
			e.addResult(TestResult{TestID: id, Attempts: attempt + 1, Flaky: attempt > 0, order: order})
			return
		}
		if state.aborted || attempt >= e.config.Retries || e.stopped() {
			e.addFailure(TestResult{TestID: id, Errors: state.errors, Attempts: attempt + 1, order: order})
			return
		}
	}
}

func (e *environment) runAttempt(id TestID, attempt int, action func(*T)) *T {
	t := e.newT(id, attempt)
	t.inScenario = true
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.run(action)
	}()
	if e.config.Timeout <= 0 {
		<-done
		return t
	}

	deadline := time.NewTimer(e.config.Timeout)
	defer deadline.Stop()
	select {
	case <-done:
		return t
	case <-deadline.C:
	}

	// Tearing down the attempt's resources is what unblocks a test stuck waiting on the browser.
	t.markTimedOut(e.config.Timeout)
	t.runCleanups()

	grace := time.NewTimer(abandonGracePeriod)
	defer grace.Stop()
	select {
	case <-done:
	case <-grace.C:
		t.Debug("test did not exit within %s after timing out; abandoning it", abandonGracePeriod)
	}
	return t
}
