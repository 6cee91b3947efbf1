package auth

import "testing"

func TestValidatePassword(t *testing.T) {
	if v := ValidatePassword("Passw0rd!"); !v.Valid {
		t.Fatalf("expected valid, got errors: %v", v.Errors)
	}

	cases := map[string]string{
		"short1!A":   "", // boundary: exactly 8 chars, all classes
		"passw0rd!":  "uppercase",
		"PASSW0RD!":  "lowercase",
		"Password!":  "number",
		"Passw0rdxx": "special",
		"P0w!":       "8 characters",
	}
	for password, fragment := range cases {
		v := ValidatePassword(password)
		if fragment == "" {
			if !v.Valid {
				t.Fatalf("expected %q valid, got %v", password, v.Errors)
			}
			continue
		}
		if v.Valid {
			t.Fatalf("expected %q invalid (%s)", password, fragment)
		}
	}
}

func TestValidateLogin(t *testing.T) {
	if v := ValidateLogin("jane@x.com", "secret1"); !v.Valid {
		t.Fatalf("expected valid login data, got %v", v.Errors)
	}
	if v := ValidateLogin("", "secret1"); v.Valid || v.Errors[0] != "Email is required" {
		t.Fatalf("unexpected result: %+v", v)
	}
	if v := ValidateLogin("not-an-email", "secret1"); v.Valid {
		t.Fatal("expected invalid email to fail")
	}
	if v := ValidateLogin("jane@x.com", "short"); v.Valid {
		t.Fatal("expected short password to fail")
	}
}

func TestValidateRegistration(t *testing.T) {
	valid := RegisterInput{
		Name:            "Jane",
		Email:           "jane@x.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
	}
	if v := ValidateRegistration(valid); !v.Valid {
		t.Fatalf("expected valid registration, got %v", v.Errors)
	}

	mismatch := valid
	mismatch.ConfirmPassword = "Passw0rd?"
	if v := ValidateRegistration(mismatch); v.Valid {
		t.Fatal("expected mismatched passwords to fail")
	}

	shortName := valid
	shortName.Name = "J"
	if v := ValidateRegistration(shortName); v.Valid {
		t.Fatal("expected short name to fail")
	}

	missingConfirm := valid
	missingConfirm.ConfirmPassword = ""
	if v := ValidateRegistration(missingConfirm); v.Valid {
		t.Fatal("expected missing confirmation to fail")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  <b>Jane</b>  "); got != "bJane/b" {
		t.Fatalf("unexpected sanitized value: %q", got)
	}
}
