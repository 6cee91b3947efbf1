package auth

import (
	"regexp"
	"strings"
)

// ValidationResult reports field validation outcomes without panicking or
// returning errors; handlers surface Errors directly to the form.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the address has a plausible mailbox shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidName reports whether the display name length is within 2..50.
func ValidName(name string) bool {
	n := len(strings.TrimSpace(name))
	return n >= 2 && n <= 50
}

// ValidatePassword applies the registration password policy.
func ValidatePassword(password string) ValidationResult {
	var errs []string

	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		errs = append(errs, "Password must contain at least one number")
	}
	if !strings.ContainsAny(password, passwordSpecials) {
		errs = append(errs, "Password must contain at least one special character (@$!%*?&)")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateLogin checks the login form. The password rule here is looser than
// registration on purpose: existing accounts may predate the current policy.
func ValidateLogin(email, password string) ValidationResult {
	var errs []string

	if email == "" {
		errs = append(errs, "Email is required")
	} else if !ValidEmail(email) {
		errs = append(errs, "Please enter a valid email address")
	}

	if password == "" {
		errs = append(errs, "Password is required")
	} else if len(password) < 6 {
		errs = append(errs, "Password must be at least 6 characters long")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidateRegistration checks the registration form.
func ValidateRegistration(in RegisterInput) ValidationResult {
	var errs []string

	if !ValidName(in.Name) {
		errs = append(errs, "Name must be at least 2 characters long")
	}

	if in.Email == "" {
		errs = append(errs, "Email is required")
	} else if !ValidEmail(in.Email) {
		errs = append(errs, "Please enter a valid email address")
	}

	if in.Password == "" {
		errs = append(errs, "Password is required")
	} else if pw := ValidatePassword(in.Password); !pw.Valid {
		errs = append(errs, pw.Errors...)
	}

	if in.ConfirmPassword == "" {
		errs = append(errs, "Password confirmation is required")
	} else if in.Password != in.ConfirmPassword {
		errs = append(errs, "Passwords do not match")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// SanitizeInput trims whitespace and strips angle brackets from form input.
func SanitizeInput(input string) string {
	return strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(input))
}
