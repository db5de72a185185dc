package security

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	errs "ChatApp/tools/errs"
)

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))

	token, exp, err := Generate(opts, "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expireAt must be in the future: %v", exp)
	}

	userID, err := Verify(opts, token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "u1" {
		t.Fatalf("want u1, got %q", userID)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	token, _, err := Generate(DefaultOptions([]byte("secret-a")), "u1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, err = Verify(DefaultOptions([]byte("secret-b")), token)
	if err == nil {
		t.Fatalf("wrong secret must fail")
	}
	if !errs.ErrTokenInvalid.Is(err) {
		t.Fatalf("want TokenInvalid, got %v", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))

	// Generate 会把非正的 TTL 矫正为默认值，过期令牌只能手工签
	past := time.Now().Add(-time.Hour)
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "u1",
		"iat": past.Add(-time.Hour).Unix(),
		"exp": past.Unix(),
	})
	token, err := tok.SignedString(opts.Secret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = Verify(opts, token)
	if err == nil {
		t.Fatalf("expired token must fail")
	}
	if !errs.ErrTokenExpired.Is(err) {
		t.Fatalf("want TokenExpired, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	opts := DefaultOptions([]byte("test-secret"))
	if _, err := Verify(opts, "not-a-jwt"); err == nil {
		t.Fatalf("garbage token must fail")
	}
}

func TestUnsupportedAlg(t *testing.T) {
	opts := Options{Secret: []byte("x"), Alg: "RS256"}
	if _, _, err := Generate(opts, "u1"); err == nil {
		t.Fatalf("RS256 must be rejected")
	}
}
