package regtests

import (
	"github.com/launchdarkly/registration-contract-tests/fixtures"
	"github.com/launchdarkly/registration-contract-tests/framework/ldtest"
	"github.com/launchdarkly/registration-contract-tests/regpage"
)

// DoMainTests covers a successful registration and the two most common rejections.
func DoMainTests(t *ldtest.T) {
	t.RunScenario("debe registrar un usuario exitosamente con datos válidos", func(t *ldtest.T) {
		user := RequireUserRecord(t, fixtures.ValidUser)
		form := OpenForm(t)
		form.SubmitRecord(t, user)
		form.RequireSuccess(t, user.FullName)
	})

	t.RunScenario("debe mostrar error con email inválido", func(t *ldtest.T) {
		user := RequireUserRecord(t, fixtures.InvalidEmail)
		form := OpenForm(t)
		form.SubmitRecord(t, user)
		form.RequireFieldError(t, regpage.FieldEmail, MessageInvalidEmail)
	})

	t.RunScenario("debe mostrar error cuando las contraseñas no coinciden", func(t *ldtest.T) {
		user := RequireUserRecord(t, fixtures.PasswordMismatch)
		form := OpenForm(t)
		form.SubmitRecord(t, user)
		form.RequireFieldError(t, regpage.FieldConfirmPassword, MessagePasswordMismatch)
	})
}
