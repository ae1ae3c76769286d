package regtests

import (
	"github.com/launchdarkly/registration-contract-tests/fixtures"
	"github.com/launchdarkly/registration-contract-tests/framework/ldtest"
	"github.com/launchdarkly/registration-contract-tests/regpage"
)

// DoAdditionalValidationTests covers the rest of the form's validation rules, one per scenario.
func DoAdditionalValidationTests(t *ldtest.T) {
	t.RunScenario("debe mostrar errores cuando todos los campos obligatorios están vacíos", func(t *ldtest.T) {
		form := OpenForm(t)
		form.Submit(t)
		// Age is optional, so it has no error.
		form.RequireFieldErrorsShown(t,
			regpage.FieldFullName,
			regpage.FieldEmail,
			regpage.FieldPassword,
			regpage.FieldConfirmPassword,
		)
	})

	t.RunScenario("debe mostrar error cuando la edad no es un número", func(t *ldtest.T) {
		user := RequireUserRecord(t, fixtures.NonNumericAge)
		form := OpenForm(t)
		form.SubmitRecord(t, user)
		form.RequireFieldError(t, regpage.FieldAge, MessageAgeNotANumber)
	})

	t.RunScenario("debe mostrar error cuando la edad es negativa", func(t *ldtest.T) {
		user := RequireUserRecord(t, fixtures.NegativeAge)
		form := OpenForm(t)
		form.SubmitRecord(t, user)
		form.RequireFieldError(t, regpage.FieldAge, MessageAgeNotANumber)
	})

	t.RunScenario("debe mostrar error cuando el email ya está registrado", func(t *ldtest.T) {
		user := RequireUserRecord(t, fixtures.DuplicateEmail)
		form := OpenForm(t)
		form.SubmitRecord(t, user)
		form.RequireFieldError(t, regpage.FieldEmail, MessageDuplicateEmail)
	})

	t.RunScenario("debe mostrar error cuando el nombre contiene caracteres no permitidos", func(t *ldtest.T) {
		user := RequireUserRecord(t, fixtures.InvalidName)
		form := OpenForm(t)
		form.SubmitRecord(t, user)
		form.RequireFieldError(t, regpage.FieldFullName, MessageInvalidName)
	})

	t.RunScenario("debe mostrar error cuando la contraseña tiene menos de 6 caracteres", func(t *ldtest.T) {
		user := RequireUserRecord(t, fixtures.ShortPassword)
		form := OpenForm(t)
		form.SubmitRecord(t, user)
		form.RequireFieldError(t, regpage.FieldPassword, MessagePasswordTooShort)
	})
}
