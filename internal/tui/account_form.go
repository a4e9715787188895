package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/hay-kot/shopcart/internal/core/validate"
	"github.com/hay-kot/shopcart/internal/styles"
)

// FormKind selects which account form is shown.
type FormKind int

const (
	FormSignIn FormKind = iota
	FormRegister
)

func (k FormKind) String() string {
	if k == FormRegister {
		return "Create Account"
	}
	return "Sign In"
}

// AccountForm wraps a huh.Form for signing in or registering.
type AccountForm struct {
	kind     FormKind
	form     *huh.Form
	name     string
	email    string
	password string
}

// AccountFormResult contains the submitted fields.
type AccountFormResult struct {
	Kind     FormKind
	Name     string
	Email    string
	Password string
}

// NewAccountForm builds a sign-in or registration form. email pre-fills the
// email field.
func NewAccountForm(kind FormKind, email string) *AccountForm {
	f := &AccountForm{kind: kind, email: email}

	fields := make([]huh.Field, 0, 3)
	if kind == FormRegister {
		fields = append(fields, huh.NewInput().
			Title("Name").
			Value(&f.name).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("name is required")
				}
				return nil
			}))
	}

	fields = append(fields,
		huh.NewInput().
			Title("Email").
			Value(&f.email).
			Validate(validate.Email),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&f.password).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("password is required")
				}
				if len(s) > validate.MaxPasswordBytes {
					return errors.New("password is too long")
				}
				return nil
			}),
	)

	f.form = huh.NewForm(
		huh.NewGroup(fields...).Title(kind.String()),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)

	return f
}

// Kind returns which form this is.
func (f *AccountForm) Kind() FormKind {
	return f.kind
}

// Form returns the underlying huh.Form for tea.Model integration.
func (f *AccountForm) Form() *huh.Form {
	return f.form
}

// Result returns the form result. Only valid once the form has completed.
func (f *AccountForm) Result() AccountFormResult {
	return AccountFormResult{
		Kind:     f.kind,
		Name:     strings.TrimSpace(f.name),
		Email:    strings.TrimSpace(f.email),
		Password: f.password,
	}
}

// View renders the form.
func (f *AccountForm) View() string {
	return f.form.View()
}
