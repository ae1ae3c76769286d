// Package ldtest provides a test context, T, that behaves like Go's *testing.T in a program
// that is not run by "go test".
//
// Tests are declared by calling Run (for groups) and RunScenario (for individual scenarios)
// inside the action passed to the package-level Run function. Scenarios are scheduled onto a
// bounded pool of workers; each attempt at a scenario gets a fresh T, so anything the scenario
// creates through T.Defer is torn down before it is retried.
//
// T implements the TestingT interfaces of testify's assert and require packages, so those can
// be used to make assertions.
package ldtest
