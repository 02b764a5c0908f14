package validators

import (
	"errors"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alice@example.com", true},
		{"a.b+c@sub.example.org", true},
		{"alice@example", false},
		{"alice example.com", false},
		{"@example.com", false},
		{"alice@ex ample.com", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsEmail(tt.in), tt.in)
	}
}

func TestSignupRequestMessages(t *testing.T) {
	v := NewValidator()
	valid := models.SignupRequest{FullName: "Alice", Username: "alice", Email: "alice@example.com", Password: "secret1"}

	tests := []struct {
		name   string
		mutate func(r *models.SignupRequest)
		want   string
	}{
		{name: "valid", mutate: func(r *models.SignupRequest) {}},
		{name: "bad email", mutate: func(r *models.SignupRequest) { r.Email = "nope" }, want: "Email is not valid"},
		{name: "missing email", mutate: func(r *models.SignupRequest) { r.Email = "" }, want: "Email is not valid"},
		{name: "short password is left to the handler", mutate: func(r *models.SignupRequest) { r.Password = "12345" }},
		{name: "missing full name", mutate: func(r *models.SignupRequest) { r.FullName = "" }, want: "Full name is required"},
		{name: "missing username", mutate: func(r *models.SignupRequest) { r.Username = "" }, want: "Username is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := v.Validate(req)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.want, Message(err))
		})
	}
}

func TestUpdateRequestAllowsEmptyFields(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(models.UpdateUserRequest{}))

	err := v.Validate(models.UpdateUserRequest{Email: "broken"})
	require.Error(t, err)
	assert.Equal(t, "Email is not valid", Message(err))
}

func TestMessagePassesThroughOtherErrors(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
