package util

import (
	"strings"
	"testing"
	"time"
)

func TestValidateEmail(t *testing.T) {
	cases := map[string]bool{
		"john.doe@example.com":        true,
		"":                            false,
		"not-an-email":                false,
		"John <john.doe@example.com>": false,
	}
	for input, ok := range cases {
		err := ValidateEmail(input)
		if ok && err != nil {
			t.Fatalf("%q: unexpected error %v", input, err)
		}
		if !ok && err == nil {
			t.Fatalf("%q: expected error", input)
		}
	}
}

func TestMinLength(t *testing.T) {
	if err := MinLength("  a ", "nome", 2); err == nil {
		t.Fatal("expected error for short value")
	}
	if err := MinLength("São", "nome", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewApplicationID(t *testing.T) {
	now := time.UnixMilli(1720000000123)
	id := NewApplicationID("PACUIT-INDIV", now)
	if id != "PACUIT-INDIV-1720000000123" {
		t.Fatalf("unexpected id %s", id)
	}
	if !strings.HasPrefix(NewApplicationID("PACUIT2025", time.Now()), "PACUIT2025-") {
		t.Fatal("prefix missing")
	}
}
