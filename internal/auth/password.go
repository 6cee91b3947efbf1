package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"pulseboard.org/internal/obs"
)

// bcryptCost matches the reference deployment's work factor.
const bcryptCost = 12

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with a stored hash.
// It never returns an error: any internal failure is logged and treated as
// a mismatch, so callers have a single "bad credentials" branch.
func VerifyPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		obs.LogError("password verify failed", map[string]any{"cause": err.Error()})
	}
	return false
}

const passwordSpecials = "@$!%*?&"

// PasswordStrength scores a password 0..7 and returns improvement hints.
// Mirrors the strength meter shown on the registration form.
func PasswordStrength(password string) (int, []string) {
	var feedback []string
	score := 0

	if len(password) >= 8 {
		score++
	} else {
		feedback = append(feedback, "Use at least 8 characters")
	}
	if len(password) >= 12 {
		score++
	}
	if strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		score++
	} else {
		feedback = append(feedback, "Add lowercase letters")
	}
	if strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		score++
	} else {
		feedback = append(feedback, "Add uppercase letters")
	}
	if strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		score++
	} else {
		feedback = append(feedback, "Add numbers")
	}
	if strings.ContainsAny(password, passwordSpecials) {
		score++
	} else {
		feedback = append(feedback, "Add special characters (@$!%*?&)")
	}
	if len(password) >= 16 {
		score++
	}
	return score, feedback
}
