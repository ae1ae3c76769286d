// Package regtests contains the registration form scenarios and the small test API they are
// written in.
//
// Infrastructure that is not specific to the registration form, such as scheduling, retries,
// and browser sessions, is in the framework and browser packages.
package regtests
