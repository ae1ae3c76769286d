// Package regpage provides named operations on the registration form, so that scenarios never
// deal with the page's markup directly.
//
// Form controls are found by their accessible label or role. The only structural selectors are
// the ones the application defines as its contract: the success region, and each field's error
// region, which is named "<fieldId>-error" and has the class "show" while it is active.
package regpage

import (
	"errors"
	"fmt"
	"time"

	"github.com/launchdarkly/registration-contract-tests/fixtures"

	"github.com/playwright-community/playwright-go"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Field identifiers used in the application's error region names.
const (
	FieldFullName        = "fullname"
	FieldEmail           = "email"
	FieldAge             = "age"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

const (
	labelFullName        = "Nombre completo"
	labelEmail           = "Correo electrónico"
	labelAge             = "Edad"
	labelPassword        = "Contraseña"
	labelConfirmPassword = "Repetir contraseña"
	submitButtonName     = "Enviar formulario de registro"
	successMessageID     = "successMessage"
	errorVisibleClass    = "show"
)

// SuccessText is the message the application shows after registering the named user.
func SuccessText(name string) string {
	return fmt.Sprintf("Registro exitoso. Bienvenido/a, %s!", name)
}

// FormData is a possibly partial submission. Undefined fields are not touched when filling the
// form, which is how scenarios leave a field empty.
type FormData struct {
	FullName        ldvalue.OptionalString
	Email           ldvalue.OptionalString
	Age             ldvalue.OptionalString
	Password        ldvalue.OptionalString
	ConfirmPassword ldvalue.OptionalString
}

// FormDataFrom fills every field from a fixture record. The age is included only if the record
// has one.
func FormDataFrom(r fixtures.UserRecord) FormData {
	return FormData{
		FullName:        ldvalue.NewOptionalString(r.FullName),
		Email:           ldvalue.NewOptionalString(r.Email),
		Age:             r.Age,
		Password:        ldvalue.NewOptionalString(r.Password),
		ConfirmPassword: ldvalue.NewOptionalString(r.ConfirmPassword),
	}
}

// Control is a named focusable element of the form.
type Control struct {
	Name    string
	Locator playwright.Locator
}

// TextMismatchError means an element had the wrong text when an assertion gave up waiting.
type TextMismatchError struct {
	Element  string
	Expected string
	Actual   string
	Err      error
}

func (e *TextMismatchError) Error() string {
	return fmt.Sprintf("%s: expected text %q but was %q", e.Element, e.Expected, e.Actual)
}

func (e *TextMismatchError) Unwrap() error {
	return e.Err
}

// RegistrationPage holds locators for the form's elements. Locators are lazy, so creating one
// does not touch the page.
type RegistrationPage struct {
	page   playwright.Page
	expect playwright.PlaywrightAssertions

	FullName        playwright.Locator
	Email           playwright.Locator
	Age             playwright.Locator
	Password        playwright.Locator
	ConfirmPassword playwright.Locator
	SubmitButton    playwright.Locator
	SuccessMessage  playwright.Locator
}

// New creates the façade for a page. Assertions wait up to expectTimeout for their condition.
func New(page playwright.Page, expectTimeout time.Duration) *RegistrationPage {
	return newWithAssertions(page,
		playwright.NewPlaywrightAssertions(float64(expectTimeout.Milliseconds())))
}

func newWithAssertions(page playwright.Page, expect playwright.PlaywrightAssertions) *RegistrationPage {
	return &RegistrationPage{
		page:            page,
		expect:          expect,
		FullName:        page.GetByLabel(labelFullName),
		Email:           page.GetByLabel(labelEmail),
		Age:             page.GetByLabel(labelAge),
		Password:        page.GetByLabel(labelPassword, playwright.PageGetByLabelOptions{Exact: playwright.Bool(true)}),
		ConfirmPassword: page.GetByLabel(labelConfirmPassword),
		SubmitButton:    page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: submitButtonName}),
		SuccessMessage:  page.Locator("#" + successMessageID),
	}
}

// Navigate loads the form. The path is resolved against the browser context's base URL.
func (p *RegistrationPage) Navigate() error {
	if _, err := p.page.Goto("/"); err != nil {
		return fmt.Errorf("navigate to form: %w", err)
	}
	return nil
}

// FillForm sets each defined field, in the order the fields appear on the form.
func (p *RegistrationPage) FillForm(data FormData) error {
	for _, f := range []struct {
		name    string
		value   ldvalue.OptionalString
		locator playwright.Locator
	}{
		{labelFullName, data.FullName, p.FullName},
		{labelEmail, data.Email, p.Email},
		{labelAge, data.Age, p.Age},
		{labelPassword, data.Password, p.Password},
		{labelConfirmPassword, data.ConfirmPassword, p.ConfirmPassword},
	} {
		if !f.value.IsDefined() {
			continue
		}
		if err := f.locator.Fill(f.value.StringValue()); err != nil {
			return fmt.Errorf("fill %q: %w", f.name, err)
		}
	}
	return nil
}

// Submit clicks the submit button.
func (p *RegistrationPage) Submit() error {
	if err := p.SubmitButton.Click(); err != nil {
		return fmt.Errorf("click %q: %w", submitButtonName, err)
	}
	return nil
}

// ErrorRegion returns the error element for a field.
func (p *RegistrationPage) ErrorRegion(fieldID string) playwright.Locator {
	return p.page.Locator("#" + fieldID + "-error")
}

// HasFieldError reports whether a field's error is currently shown. It does not wait.
func (p *RegistrationPage) HasFieldError(fieldID string) (bool, error) {
	visible, err := p.page.Locator("#" + fieldID + "-error." + errorVisibleClass).IsVisible()
	if err != nil {
		return false, fmt.Errorf("check error state of %q: %w", fieldID, err)
	}
	return visible, nil
}

// VerifySuccessMessage waits for the success region to appear with the welcome text for name.
func (p *RegistrationPage) VerifySuccessMessage(name string) error {
	return p.verifyText(p.SuccessMessage, successMessageID, SuccessText(name), false)
}

// VerifyErrorMessage waits for a field's error to appear with exactly the expected text.
func (p *RegistrationPage) VerifyErrorMessage(fieldID, expectedText string) error {
	return p.verifyText(p.ErrorRegion(fieldID), fieldID+"-error", expectedText, true)
}

func (p *RegistrationPage) verifyText(locator playwright.Locator, element, expected string, exact bool) error {
	assertions := p.expect.Locator(locator)
	if err := assertions.ToBeVisible(); err != nil {
		return fmt.Errorf("%s is not visible: %w", element, err)
	}
	var err error
	if exact {
		err = assertions.ToHaveText(expected)
	} else {
		err = assertions.ToContainText(expected)
	}
	if err == nil {
		return nil
	}
	actual, textErr := locator.TextContent()
	if textErr != nil {
		return fmt.Errorf("%s has the wrong text: %w", element, errors.Join(err, textErr))
	}
	return &TextMismatchError{Element: element, Expected: expected, Actual: actual, Err: err}
}

// FocusOrder returns the controls in the order that the Tab key should visit them.
func (p *RegistrationPage) FocusOrder() []Control {
	return []Control{
		{labelFullName, p.FullName},
		{labelEmail, p.Email},
		{labelAge, p.Age},
		{labelPassword, p.Password},
		{labelConfirmPassword, p.ConfirmPassword},
		{submitButtonName, p.SubmitButton},
	}
}

// ExpectFocused waits for a control to have keyboard focus.
func (p *RegistrationPage) ExpectFocused(c Control) error {
	if err := p.expect.Locator(c.Locator).ToBeFocused(); err != nil {
		return fmt.Errorf("%q does not have focus: %w", c.Name, err)
	}
	return nil
}

// PressKey sends one key press to whatever has focus.
func (p *RegistrationPage) PressKey(key string) error {
	if err := p.page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("press %s: %w", key, err)
	}
	return nil
}

// TypeText types into whatever has focus, one key at a time.
func (p *RegistrationPage) TypeText(text string) error {
	if err := p.page.Keyboard().Type(text); err != nil {
		return fmt.Errorf("type %q: %w", text, err)
	}
	return nil
}
