package regtests

import (
	"errors"

	"github.com/launchdarkly/registration-contract-tests/fixtures"
	"github.com/launchdarkly/registration-contract-tests/framework/ldtest"
	"github.com/launchdarkly/registration-contract-tests/regpage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Validation messages shown by the application.
const (
	MessageInvalidEmail     = "El email no es válido"
	MessagePasswordMismatch = "Las contraseñas no coinciden"
	MessageAgeNotANumber    = "La edad debe ser un número"
	MessageDuplicateEmail   = "Este email ya está registrado"
	MessageInvalidName      = "El nombre solo puede contener letras y espacios"
	MessagePasswordTooShort = "La contraseña debe tener al menos 6 caracteres"
)

// Form is the registration form open in a scenario's page. Every method fails the test on error.
type Form struct {
	page *regpage.RegistrationPage
}

func (f *Form) Fill(t *ldtest.T, data regpage.FormData) {
	require.NoError(t, f.page.FillForm(data))
}

func (f *Form) FillWith(t *ldtest.T, record fixtures.UserRecord) {
	f.Fill(t, regpage.FormDataFrom(record))
}

func (f *Form) Submit(t *ldtest.T) {
	require.NoError(t, f.page.Submit())
}

// SubmitRecord fills in every field of a record and submits it, the way a user with a mouse would.
func (f *Form) SubmitRecord(t *ldtest.T, record fixtures.UserRecord) {
	f.FillWith(t, record)
	f.Submit(t)
}

func (f *Form) RequireSuccess(t *ldtest.T, name string) {
	requireText(t, f.page.VerifySuccessMessage(name))
}

func (f *Form) RequireFieldError(t *ldtest.T, fieldID, expectedText string) {
	requireText(t, f.page.VerifyErrorMessage(fieldID, expectedText))
}

// RequireFieldErrorsShown checks every field, so that a failure lists all the missing errors.
func (f *Form) RequireFieldErrorsShown(t *ldtest.T, fieldIDs ...string) {
	for _, id := range fieldIDs {
		shown, err := f.page.HasFieldError(id)
		require.NoError(t, err)
		assert.True(t, shown, "expected an error to be shown for %q", id)
	}
	if t.Failed() {
		t.FailNow()
	}
}

// FocusOrder is the order in which the Tab key should visit the form's controls.
func (f *Form) FocusOrder() []regpage.Control {
	return f.page.FocusOrder()
}

// TabTo presses Tab and requires the control to receive focus.
func (f *Form) TabTo(t *ldtest.T, c regpage.Control) {
	require.NoError(t, f.page.PressKey("Tab"))
	require.NoError(t, f.page.ExpectFocused(c))
}

func (f *Form) Type(t *ldtest.T, text string) {
	require.NoError(t, f.page.TypeText(text))
}

func (f *Form) PressEnter(t *ldtest.T) {
	require.NoError(t, f.page.PressKey("Enter"))
}

// A wrong text is reported as a diff, so that a small copy change is easy to spot.
func requireText(t *ldtest.T, err error) {
	var mismatch *regpage.TextMismatchError
	if errors.As(err, &mismatch) {
		assert.Equal(t, mismatch.Expected, mismatch.Actual, "text of %s", mismatch.Element)
		t.FailNow()
	}
	require.NoError(t, err)
}
