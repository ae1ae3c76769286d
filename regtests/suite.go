package regtests

import (
	"time"

	"github.com/launchdarkly/registration-contract-tests/browser"
	"github.com/launchdarkly/registration-contract-tests/fixtures"
	"github.com/launchdarkly/registration-contract-tests/framework"
	"github.com/launchdarkly/registration-contract-tests/framework/ldtest"
)

// SessionFactory opens an isolated browser session for one attempt of a scenario.
// *browser.Launcher implements it.
type SessionFactory interface {
	NewSession(testName string, attempt int, logger framework.Logger) (*browser.Session, error)
}

// FixtureSource provides test data by scenario name. *fixtures.Store implements it.
type FixtureSource interface {
	Get(name fixtures.ScenarioName) (fixtures.UserRecord, error)
}

// Environment is everything the scenarios need from outside the suite. Sessions may be nil when
// the suite is only being listed.
type Environment struct {
	Sessions      SessionFactory
	Fixtures      FixtureSource
	ExpectTimeout time.Duration
}

// RunTestSuite runs every scenario that the configured filter selects.
func RunTestSuite(env Environment, config ldtest.Config) ldtest.Results {
	config.Context = RegistrationTestContext{env: env}
	return ldtest.Run(config, func(t *ldtest.T) {
		t.Run("Formulario de Registro - Casos Principales", DoMainTests)
		t.Run("Formulario de Registro - Validaciones Adicionales", DoAdditionalValidationTests)
		t.Run("Formulario de Registro - Pruebas de Accesibilidad", DoAccessibilityTests)
	})
}

// ReferencedScenarios lists every fixture the suite uses. The fixture data is checked against it
// before any browser is started.
func ReferencedScenarios() []fixtures.ScenarioName {
	return []fixtures.ScenarioName{
		fixtures.ValidUser,
		fixtures.InvalidEmail,
		fixtures.PasswordMismatch,
		fixtures.NonNumericAge,
		fixtures.NegativeAge,
		fixtures.DuplicateEmail,
		fixtures.InvalidName,
		fixtures.ShortPassword,
		fixtures.KeyboardNavigation,
	}
}
