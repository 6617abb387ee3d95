package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()

	secret, err := NewSigningSecret()
	if err != nil {
		t.Fatalf("NewSigningSecret failed: %v", err)
	}
	return NewTokenManager(secret, ttl)
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, err := m.Issue("admin")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	subject, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if subject != "admin" {
		t.Errorf("subject = %q, want %q", subject, "admin")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := newTestManager(t, -time.Minute)

	token, err := m.Issue("admin")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify on expired token = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, err := m.Issue("admin")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip a character in the signature segment.
	i := strings.LastIndex(token, ".") + 1
	sig := []byte(token[i:])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := token[:i] + string(sig)

	if _, err := m.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify on tampered token = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTokenFromOtherSecret(t *testing.T) {
	m1 := newTestManager(t, time.Hour)
	m2 := newTestManager(t, time.Hour)

	token, err := m1.Issue("admin")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := m2.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify with different secret = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := newTestManager(t, time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}
