package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testJWTSecret = "todotracker_test_jwt_secret_key_1234567890"

func newTestCodec(t *testing.T) *JWTCodec {
	t.Helper()
	codec, err := NewJWTCodec(testJWTSecret, 0)
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	return codec
}

func TestIssueAndVerify(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestIssueSetsSevenDayExpiry(t *testing.T) {
	codec := newTestCodec(t)
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	codec.now = func() time.Time { return issuedAt }

	token, err := codec.Issue(7)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if got := claims.ExpiresAt.Time.Sub(issuedAt); got != 7*24*time.Hour {
		t.Fatalf("expected 7 day expiry, got %s", got)
	}
	if claims.Subject != "7" || claims.Issuer != jwtIssuer {
		t.Fatalf("unexpected subject/issuer %q/%q", claims.Subject, claims.Issuer)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	codec := newTestCodec(t)
	codec.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, err := codec.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	codec.now = time.Now
	if _, err := codec.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	other, err := NewJWTCodec(strings.Repeat("x", 40), 0)
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	token, err := other.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := newTestCodec(t).Verify(token); !errors.Is(err, ErrTokenBadSignature) {
		t.Fatalf("expected ErrTokenBadSignature, got %v", err)
	}
}

func TestVerifyRejectsMissingAndMalformed(t *testing.T) {
	codec := newTestCodec(t)

	if _, err := codec.Verify("  "); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
	if _, err := codec.Verify("not-a-jwt"); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    jwtIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := newTestCodec(t).Verify(token); err == nil {
		t.Fatalf("expected unsigned token to be rejected")
	}
}

func TestNewJWTCodecRejectsShortSecret(t *testing.T) {
	if _, err := NewJWTCodec("short", time.Hour); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}

func TestBcryptHasher(t *testing.T) {
	hasher := BcryptHasher{Cost: 4}

	hash, err := hasher.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secret1" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !hasher.Compare(hash, "secret1") {
		t.Fatalf("expected matching password")
	}
	if hasher.Compare(hash, "secret2") {
		t.Fatalf("expected mismatching password")
	}
}
