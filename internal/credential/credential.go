// Package credential generates and verifies the one-time credentials trainers
// hand out to clients.
package credential

import (
	"crypto/rand"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	letters      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
	codeAlphabet = letters + digits

	starterLetters = 4
	starterDigits  = 4

	// InvitationCodeLength is the length of generated invitation codes.
	InvitationCodeLength = 6

	// MinPasswordLength applies to passwords chosen by users.
	MinPasswordLength = 6
)

var (
	ErrHashingFailed   = errors.New("failed to hash password")
	ErrPasswordTooWeak = errors.New("password must be at least 6 characters")
)

// StarterPassword returns 4 uppercase letters and 4 digits in random order,
// e.g. "7KQ2M9XA". The space is 26^4 * 10^4 before shuffling and no character
// class is pinned to a position.
func StarterPassword() (string, error) {
	buf := make([]byte, 0, starterLetters+starterDigits)
	for i := 0; i < starterLetters; i++ {
		c, err := pick(letters)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for i := 0; i < starterDigits; i++ {
		c, err := pick(digits)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	if err := shuffle(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// InvitationCode returns a 6-character uppercase alphanumeric code.
func InvitationCode() (string, error) {
	buf := make([]byte, InvitationCodeLength)
	for i := range buf {
		c, err := pick(codeAlphabet)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}
	return string(buf), nil
}

// Hash returns the bcrypt hash of password.
func Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", ErrHashingFailed
	}
	return string(hashed), nil
}

// Matches reports whether password matches the bcrypt hash.
func Matches(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateNew checks a user-chosen password.
func ValidateNew(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooWeak
	}
	return nil
}

func pick(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}

// shuffle is a Fisher-Yates shuffle driven by crypto/rand.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
