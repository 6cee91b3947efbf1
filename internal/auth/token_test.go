package auth

import (
	"strings"
	"testing"
	"time"
)

func testUser() User {
	return User{
		ID:    "01J5ZX3B9GT0EXAMPLE0USER1",
		Email: "jane@x.com",
		Name:  "Jane",
		Role:  RoleUser,
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, expiresAt, err := codec.Sign(testUser(), time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiration, got %v", expiresAt)
	}

	claims := codec.Verify(token)
	if claims == nil {
		t.Fatal("Verify returned nil for a fresh token")
	}
	if claims.Subject != "01J5ZX3B9GT0EXAMPLE0USER1" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Email != "jane@x.com" || claims.Name != "Jane" || claims.Role != RoleUser {
		t.Fatalf("claims were not preserved: %+v", claims)
	}

	sess := claims.Session()
	if sess.User.ID != claims.Subject || sess.ExpiresAt.IsZero() {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestCodecRejectsEmptySecret(t *testing.T) {
	if _, err := NewCodec("   "); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestCodecRejectsExpiredToken(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	issued := time.Now().Add(-2 * time.Hour)
	codec.WithClock(func() time.Time { return issued })

	token, _, err := codec.Sign(testUser(), time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	codec.WithClock(time.Now)
	if claims := codec.Verify(token); claims != nil {
		t.Fatalf("expected nil for expired token, got %+v", claims)
	}
}

func TestCodecRejectsTamperedSignature(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	token, _, err := codec.Sign(testUser(), time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", token)
	}
	// Swap 'A'<->'Q' so the decoded bytes always change: the two differ in a
	// high bit, which survives base64 trailing-bit truncation at the end of
	// the segment.
	sig := []byte(parts[2])
	for i := range sig {
		flipped := make([]byte, len(sig))
		copy(flipped, sig)
		if flipped[i] == 'Q' {
			flipped[i] = 'A'
		} else {
			flipped[i] = 'Q'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(flipped)
		if tampered == token {
			continue
		}
		if claims := codec.Verify(tampered); claims != nil {
			t.Fatalf("tampered signature at byte %d verified", i)
		}
	}
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	signer, _ := NewCodec("secret-a")
	verifier, _ := NewCodec("secret-b")

	token, _, err := signer.Sign(testUser(), time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if claims := verifier.Verify(token); claims != nil {
		t.Fatal("token signed with a different secret verified")
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec, _ := NewCodec("test-secret")
	for _, raw := range []string{"", "  ", "not-a-token", "a.b", "a.b.c.d"} {
		if claims := codec.Verify(raw); claims != nil {
			t.Fatalf("garbage input %q verified", raw)
		}
	}
}
