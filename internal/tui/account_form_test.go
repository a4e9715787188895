package tui

import (
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
)

func TestNewAccountForm(t *testing.T) {
	signIn := NewAccountForm(FormSignIn, "ada@x.com")
	assert.Equal(t, FormSignIn, signIn.Kind())
	assert.NotNil(t, signIn.Form())
	assert.Equal(t, huh.StateNormal, signIn.Form().State)
	assert.Equal(t, "ada@x.com", signIn.Result().Email)

	register := NewAccountForm(FormRegister, "")
	assert.Equal(t, FormRegister, register.Kind())
	assert.Equal(t, "Create Account", register.Kind().String())
}

func TestAccountForm_ResultTrimsFields(t *testing.T) {
	f := NewAccountForm(FormRegister, "")
	f.name = "  Ada Lovelace "
	f.email = " ada@x.com "
	f.password = " keep spaces "

	res := f.Result()
	assert.Equal(t, "Ada Lovelace", res.Name)
	assert.Equal(t, "ada@x.com", res.Email)
	assert.Equal(t, " keep spaces ", res.Password)
}
