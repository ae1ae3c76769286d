package ldtest

import (
	"sort"
	"strings"
)

type Results struct {
	Tests       []TestResult
	Failures    []TestResult
	Interrupted bool
}

type TestResult struct {
	TestID     TestID
	Errors     []error
	Skipped    bool
	SkipReason string
	Attempts   int
	Flaky      bool
	order      int
}

// OK returns true if no test failed and the run was not cut short by the failure threshold.
func (r Results) OK() bool {
	return len(r.Failures) == 0 && !r.Interrupted
}

// Counts returns the number of tests that passed (including flaky ones), failed, were flaky,
// and were skipped.
func (r Results) Counts() (passed, failed, flaky, skipped int) {
	for _, t := range r.Tests {
		switch {
		case t.Skipped:
			skipped++
		case len(t.Errors) > 0:
			failed++
		default:
			passed++
			if t.Flaky {
				flaky++
			}
		}
	}
	return
}

func sortResults(results []TestResult) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].order < results[j].order })
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Plus returns a new TestID with an additional path element. It never shares storage with the
// receiver, since IDs are handed to concurrently running scenarios.
func (t TestID) Plus(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	path = append(path, t.Path...)
	return TestID{Path: append(path, name)}
}
