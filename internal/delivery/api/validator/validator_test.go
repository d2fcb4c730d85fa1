package validator

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestCustomValidator(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&signupRequest{Email: "a@x.io", Name: "Alice", Password: "secret123"}))

	err := v.Validate(&signupRequest{Email: "not-an-email", Name: "Al", Password: ""})
	require.Error(t, err)

	assert.Equal(t, map[string]string{
		"email":    "must be a valid email address",
		"name":     "must be at least 3 characters",
		"password": "is required",
	}, Describe(err))
}

type passwordRequest struct {
	Password string `json:"password" validate:"required,maxbytes=72"`
}

func TestCustomValidator_MaxBytes(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "72 ascii bytes", password: strings.Repeat("a", 72)},
		{name: "36 two-byte runes", password: strings.Repeat("é", 36)},
		{name: "73 ascii bytes", password: strings.Repeat("a", 73), wantErr: true},
		{name: "72 two-byte runes", password: strings.Repeat("é", 72), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&passwordRequest{Password: tt.password})
			if !tt.wantErr {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, map[string]string{"password": "must be at most 72 bytes"}, Describe(err))
		})
	}
}

func TestDescribe_NonValidationError(t *testing.T) {
	assert.Nil(t, Describe(errors.New("boom")))
}
