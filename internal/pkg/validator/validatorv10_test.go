package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginInput struct {
	Email    string `validate:"notblank,max=254"`
	Password string `validate:"notblank"`
	DeviceID string
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	assert.NoError(t, v.Validate(loginInput{Email: "a@x.com", Password: "p1"}))

	err = v.Validate(loginInput{Email: "  ", Password: ""})
	require.Error(t, err)

	var verr V10ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{
		"email":    "Email is a required field",
		"password": "Password is a required field",
	}, verr.Values())
	assert.Contains(t, verr.Error(), "email")
}

func TestV10ValidationError_Empty(t *testing.T) {
	assert.Equal(t, "validation error", V10ValidationError{}.Error())
}
