package core

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, "elfwalk-test", time.Minute)
	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	id, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected player 42, got %d", id)
	}
}

func TestTokenUniquePerIssue(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, "elfwalk-test", time.Minute)
	a, _ := issuer.Issue(1)
	b, _ := issuer.Issue(1)
	if a == b {
		t.Fatal("expected distinct tokens for separate issues")
	}
}

func TestTokenRejected(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer := NewTokenIssuer(testSecret, "elfwalk-test", time.Minute)
	issuer.now = func() time.Time { return base }
	token, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expired := NewTokenIssuer(testSecret, "elfwalk-test", time.Minute)
	expired.now = func() time.Time { return base.Add(2 * time.Minute) }

	tamper := []byte(token)
	last := len(tamper) - 2
	if tamper[last] == 'A' {
		tamper[last] = 'B'
	} else {
		tamper[last] = 'A'
	}

	tests := []struct {
		name     string
		verifier *TokenIssuer
		token    string
	}{
		{"expired", expired, token},
		{"wrong secret", NewTokenIssuer("fedcba9876543210fedcba9876543210", "elfwalk-test", time.Minute), token},
		{"wrong issuer", NewTokenIssuer(testSecret, "other", time.Minute), token},
		{"tampered", NewTokenIssuer(testSecret, "elfwalk-test", time.Minute), string(tamper)},
		{"garbage", NewTokenIssuer(testSecret, "elfwalk-test", time.Minute), "not-a-token"},
		{"empty", NewTokenIssuer(testSecret, "elfwalk-test", time.Minute), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.name != "expired" {
				tt.verifier.now = func() time.Time { return base }
			}
			_, err := tt.verifier.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
