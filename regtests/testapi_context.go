package regtests

import (
	"github.com/launchdarkly/registration-contract-tests/fixtures"
	"github.com/launchdarkly/registration-contract-tests/framework/ldtest"
	"github.com/launchdarkly/registration-contract-tests/regpage"

	"github.com/stretchr/testify/require"
)

type RegistrationTestContext struct {
	env Environment
}

func requireContext(t *ldtest.T) RegistrationTestContext {
	if c, ok := t.Context().(RegistrationTestContext); ok {
		return c
	}
	panic("RegistrationTestContext was not included in the global test configuration!" +
		" This is a basic mistake in the initialization logic.")
}

// OpenForm starts a browser session for the current attempt and loads the registration form in
// it. The session is closed when the attempt ends, saving artifacts if the attempt failed.
func OpenForm(t *ldtest.T) *Form {
	env := requireContext(t).env
	require.NotNil(t, env.Sessions, "no browser is available")

	session, err := env.Sessions.NewSession(t.ID().String(), t.Attempt(), t.DebugLogger())
	require.NoError(t, err)
	t.Defer(func() {
		if err := session.Close(t.Failed()); err != nil {
			t.Debug("error closing browser session: %s", err)
		}
	})

	f := &Form{page: regpage.New(session.Page, env.ExpectTimeout)}
	require.NoError(t, f.page.Navigate())
	return f
}

// RequireUserRecord returns the named test data. A missing record fails the test without retrying
// it, since a retry would find the same data.
func RequireUserRecord(t *ldtest.T, name fixtures.ScenarioName) fixtures.UserRecord {
	r, err := requireContext(t).env.Fixtures.Get(name)
	if err != nil {
		t.Abort(err)
	}
	t.Debug("test data %q: %+v", name, r)
	return r
}
