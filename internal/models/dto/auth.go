package dto

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Password length bounds. bcrypt ignores input past 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by register and login on success.
type TokenResponse struct {
	Token string `json:"token"`
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field string `json:"param"`
	Msg   string `json:"msg"`
}

// MessageResponse carries a client-facing message and optional field errors.
type MessageResponse struct {
	Msg    string       `json:"msg"`
	Errors []FieldError `json:"errors,omitempty"`
}

// Normalize trims the name and lower-cases the email.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

// Validate returns the field errors for the request, or nil.
func (r RegisterRequest) Validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Msg: "Name is required"})
	}
	if !validEmail(r.Email) {
		errs = append(errs, FieldError{Field: "email", Msg: "Please include a valid email"})
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLength || !utf8.ValidString(r.Password) {
		errs = append(errs, FieldError{Field: "password", Msg: "Please enter a password with 6 or more characters"})
	} else if len(r.Password) > MaxPasswordBytes {
		errs = append(errs, FieldError{Field: "password", Msg: "Password must be at most 72 bytes"})
	}
	return errs
}

// Normalize lower-cases the email.
func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

// Validate returns the field errors for the request, or nil.
func (r LoginRequest) Validate() []FieldError {
	var errs []FieldError
	if !validEmail(r.Email) {
		errs = append(errs, FieldError{Field: "email", Msg: "Please include a valid email"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Msg: "Password is required"})
	}
	return errs
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// ParseAddress accepts "Name <a@b>"; only bare addresses are allowed here.
	if addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
