package handler

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestMustRegister_PanicsOnBadTag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic for an empty tag")
		}
	}()
	mustRegister(validator.New(), "", notWeak)
}

func TestNewValidator_RegistersPasswordRules(t *testing.T) {
	type passwords struct {
		Weak string `json:"weak" validate:"notweak"`
		Long string `json:"long" validate:"bcryptlen"`
	}
	err := NewValidator().Validate(&passwords{Weak: "Password", Long: strings.Repeat("x", 73)})
	ve, ok := err.(*ValidationError)
	if !ok || len(ve.Fields) != 2 {
		t.Fatalf("expected both custom rules to fire, got %v", err)
	}
}

func TestValidator_UsesJSONFieldNames(t *testing.T) {
	err := NewValidator().Validate(&registerRequest{Email: "a@example.com", Password: "hunter22", FullName: strings.Repeat("x", 101)})
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Fields[0].Field != "full_name" {
		t.Fatalf("expected json field name, got %q", ve.Fields[0].Field)
	}
	if ve.Fields[0].Message != "full_name must be at most 100 characters" {
		t.Fatalf("unexpected message %q", ve.Fields[0].Message)
	}
}

func TestValidator_Password(t *testing.T) {
	v := NewValidator()
	cases := map[string]bool{
		"hunter22":              true,
		"abcdef":                true,
		"abcde":                 false,
		"password":              false,
		"PASSWORD":              false,
		strings.Repeat("x", 72): true,
		strings.Repeat("x", 73): false,
		// 24 three-byte runes: 72 bytes.
		strings.Repeat("€", 24): true,
		strings.Repeat("€", 25): false,
	}
	for pw, valid := range cases {
		err := v.Validate(&registerRequest{Email: "a@example.com", Password: pw})
		if (err == nil) != valid {
			t.Fatalf("password %q: valid=%v, err=%v", pw, valid, err)
		}
	}
}

func TestValidator_UpdateTicketOptionalFields(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(&updateTicketRequest{}); err != nil {
		t.Fatalf("empty update should validate: %v", err)
	}
	empty := ""
	if err := v.Validate(&updateTicketRequest{Title: &empty}); err == nil {
		t.Fatalf("an explicit empty title must be rejected")
	}
}
