package controller

import (
	"errors"
	"testing"

	"recipe-box/web/service"
)

func TestSafeNextPath(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		expected bool
	}{
		{"empty", "", false},
		{"relative without slash", "home", false},
		{"plain path", "/home", true},
		{"path with query", "/recipe/42?from=search", true},
		{"base path prefixed", "/box/home", true},
		{"protocol relative", "//evil.example.com/phish", false},
		{"backslash variant", "/\\evil.example.com", false},
		{"absolute http", "http://evil.example.com/", false},
		{"absolute https", "https://evil.example.com/", false},
		{"scheme without slashes", "javascript:alert(1)", false},
		{"triple slash", "///evil.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := safeNextPath(tt.target)
			if result != tt.expected {
				t.Errorf("safeNextPath(%q) = %v, expected %v", tt.target, result, tt.expected)
			}
		})
	}
}

func TestRegisterErrorKey(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"fields required", service.ErrFieldsRequired, "pages.register.toasts.fieldsRequired"},
		{"password mismatch", service.ErrPasswordMismatch, "pages.register.toasts.passwordMismatch"},
		{"password too short", service.ErrPasswordTooShort, "pages.register.toasts.passwordTooShort"},
		{"username taken", service.ErrUsernameTaken, "pages.register.toasts.usernameTaken"},
		{"email taken", service.ErrEmailTaken, "pages.register.toasts.emailTaken"},
		{"unexpected error", errors.New("database is locked"), "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if key := registerErrorKey(tt.err); key != tt.expected {
				t.Errorf("registerErrorKey() = %q, expected %q", key, tt.expected)
			}
		})
	}
}
