// Package validate checks user supplied input before it leaves the client.
package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/hay-kot/criterio"
)

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

var (
	errRequired = errors.New("is required")
	errTooLong  = fmt.Errorf("must be at most %d bytes", MaxPasswordBytes)
)

// Registration validates the fields of a sign-up form.
func Registration(name, email, password string) error {
	var errs criterio.FieldErrorsBuilder

	if strings.TrimSpace(name) == "" {
		errs = errs.Append("name", errRequired)
	}
	if err := Email(email); err != nil {
		errs = errs.Append("email", err)
	}
	if err := checkPassword(password); err != nil {
		errs = errs.Append("password", err)
	}

	return errs.ToError()
}

// Login validates the fields of a sign-in form.
func Login(email, password string) error {
	var errs criterio.FieldErrorsBuilder

	if err := Email(email); err != nil {
		errs = errs.Append("email", err)
	}
	if password == "" {
		errs = errs.Append("password", errRequired)
	}

	return errs.ToError()
}

// Email checks that email is a single bare address.
func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errRequired
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%q is not a valid email address", email)
	}
	return nil
}

// ProductID validates a product identifier passed on the command line.
func ProductID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("product id is required")
	}
	return nil
}

func checkPassword(password string) error {
	switch {
	case password == "":
		return errRequired
	case len(password) > MaxPasswordBytes:
		return errTooLong
	}
	return nil
}
