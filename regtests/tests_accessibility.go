package regtests

import (
	"errors"

	"github.com/launchdarkly/registration-contract-tests/fixtures"
	"github.com/launchdarkly/registration-contract-tests/framework/ldtest"

	"github.com/stretchr/testify/require"
)

// DoAccessibilityTests verifies that the form can be completed without a mouse.
func DoAccessibilityTests(t *ldtest.T) {
	t.RunScenario("debe permitir completar el formulario usando solo el teclado", func(t *ldtest.T) {
		user := RequireUserRecord(t, fixtures.KeyboardNavigation)
		if !user.Age.IsDefined() {
			t.Abort(errors.New("keyboard navigation test data must include an age"))
		}

		form := OpenForm(t)
		order := form.FocusOrder()
		values := []string{
			user.FullName,
			user.Email,
			user.Age.StringValue(),
			user.Password,
			user.ConfirmPassword,
		}
		require.Len(t, order, len(values)+1)

		for i, value := range values {
			form.TabTo(t, order[i])
			form.Type(t, value)
		}
		form.TabTo(t, order[len(values)])
		form.PressEnter(t)

		form.RequireSuccess(t, user.FullName)
	})
}
