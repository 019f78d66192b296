package credential

import (
	"strings"
	"testing"
	"unicode"
)

func TestStarterPasswordShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		pw, err := StarterPassword()
		if err != nil {
			t.Fatalf("StarterPassword failed: %v", err)
		}
		if len(pw) != 8 {
			t.Fatalf("expected length 8, got %q", pw)
		}
		var upper, digit int
		for _, r := range pw {
			switch {
			case unicode.IsUpper(r):
				upper++
			case unicode.IsDigit(r):
				digit++
			default:
				t.Fatalf("unexpected character %q in %q", r, pw)
			}
		}
		if upper != 4 || digit != 4 {
			t.Fatalf("expected 4 letters and 4 digits, got %q", pw)
		}
	}
}

func TestStarterPasswordIsShuffled(t *testing.T) {
	// Without shuffling every password would start with a letter.
	for i := 0; i < 200; i++ {
		pw, err := StarterPassword()
		if err != nil {
			t.Fatalf("StarterPassword failed: %v", err)
		}
		if unicode.IsDigit(rune(pw[0])) {
			return
		}
	}
	t.Error("no password started with a digit in 200 attempts")
}

func TestInvitationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := InvitationCode()
		if err != nil {
			t.Fatalf("InvitationCode failed: %v", err)
		}
		if len(code) != InvitationCodeLength {
			t.Fatalf("expected length %d, got %q", InvitationCodeLength, code)
		}
		if strings.Trim(code, codeAlphabet) != "" {
			t.Fatalf("code %q contains characters outside the alphabet", code)
		}
		seen[code] = true
	}
	if len(seen) < 95 {
		t.Errorf("expected mostly unique codes, got %d distinct of 100", len(seen))
	}
}

func TestHashAndMatches(t *testing.T) {
	hash, err := Hash("AB12CD34")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "AB12CD34" {
		t.Fatal("hash must not equal the plain password")
	}
	if !Matches(hash, "AB12CD34") {
		t.Error("expected password to match its hash")
	}
	if Matches(hash, "ab12cd34") {
		t.Error("expected a different password not to match")
	}
	if Matches("", "anything") {
		t.Error("expected empty hash never to match")
	}
}

func TestValidateNew(t *testing.T) {
	if err := ValidateNew("12345"); err != ErrPasswordTooWeak {
		t.Errorf("expected ErrPasswordTooWeak, got %v", err)
	}
	if err := ValidateNew("123456"); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
