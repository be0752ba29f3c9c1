package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fields(errs []FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
		want []string
	}{
		{"valid", RegisterRequest{Name: "A", Email: "a@x.com", Password: "secret1"}, []string{}},
		{"missing name", RegisterRequest{Name: "  ", Email: "a@x.com", Password: "secret1"}, []string{"name"}},
		{"bad email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1"}, []string{"email"}},
		{"dotless domain", RegisterRequest{Name: "A", Email: "a@x", Password: "secret1"}, []string{"email"}},
		{"trailing dot domain", RegisterRequest{Name: "A", Email: "a@x.", Password: "secret1"}, []string{"email"}},
		{"subdomain email", RegisterRequest{Name: "A", Email: "a@mail.x.co", Password: "secret1"}, []string{}},
		{"display-name email", RegisterRequest{Name: "A", Email: "A <a@x.com>", Password: "secret1"}, []string{"email"}},
		{"short password", RegisterRequest{Name: "A", Email: "a@x.com", Password: "12345"}, []string{"password"}},
		{"long password", RegisterRequest{Name: "A", Email: "a@x.com", Password: strings.Repeat("p", 73)}, []string{"password"}},
		{"everything wrong", RegisterRequest{}, []string{"name", "email", "password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields(tt.req.Validate()))
		})
	}
}

func TestRegisterRequest_Normalize(t *testing.T) {
	req := RegisterRequest{Name: "  Ada ", Email: " Ada@Example.COM "}
	req.Normalize()
	assert.Equal(t, "Ada", req.Name)
	assert.Equal(t, "ada@example.com", req.Email)
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.Empty(t, LoginRequest{Email: "a@x.com", Password: "x"}.Validate())
	assert.Equal(t, []string{"email", "password"}, fields(LoginRequest{Email: "nope"}.Validate()))
}

func TestRegisterRequest_ValidationMessages(t *testing.T) {
	errs := RegisterRequest{}.Validate()
	assert.Equal(t, "Name is required", errs[0].Msg)
	assert.Equal(t, "Please include a valid email", errs[1].Msg)
	assert.Equal(t, "Please enter a password with 6 or more characters", errs[2].Msg)
}
