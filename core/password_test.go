package core

import (
	"strings"
	"testing"
)

func TestGeneratePasswordLengthAndCharset(t *testing.T) {
	password, err := GeneratePassword(12)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(password) != 12 {
		t.Fatalf("expected 12 chars, got %d", len(password))
	}
	for _, ch := range password {
		if !strings.ContainsRune(passwordCharset, ch) {
			t.Fatalf("unexpected character %q", ch)
		}
	}
}

func TestGeneratePasswordDefaultsLength(t *testing.T) {
	password, err := GeneratePassword(0)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(password) != defaultPasswordLength {
		t.Fatalf("expected default length %d, got %d", defaultPasswordLength, len(password))
	}
}

func TestGeneratePasswordVaries(t *testing.T) {
	first, err := GeneratePassword(24)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := GeneratePassword(24)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if first == second {
		t.Fatal("expected different passwords across calls")
	}
}
