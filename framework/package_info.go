// Package framework contains the low-level implementation of test harness infrastructure
// that is not specific to the registration form.
//
// The general model is:
//
// 1. An application under test is running somewhere, possibly launched by the harness itself
// (see the harness subpackage), and is reachable at a base URL.
//
// 2. The harness drives that application through a real browser, one isolated browser session
// per test attempt.
//
// 3. There is a general notion of a test context which is similar to Go's *testing.T (see the
// ldtest subpackage), allowing pieces of test logic to be associated with a test identifier, to
// accumulate success/failure results, and to be retried and run in parallel.
//
// The domain-specific code that knows what is being tested is responsible for providing the
// page interactions and a domain-specific test API on top of the test context.
package framework
