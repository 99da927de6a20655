package remote_test

import (
	"context"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/remote"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/dgrijalva/jwt-go"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
		"sub": "device-1",
	})
	s, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestCheckTokenExpiryAcceptsLiveJwt(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	if err := remote.CheckTokenExpiry(token); err != nil {
		t.Fatalf("live token rejected: %v", err)
	}
}

func TestCheckTokenExpiryRejectsExpiredJwt(t *testing.T) {
	token := signedToken(t, time.Now().Add(-time.Hour))
	if err := remote.CheckTokenExpiry(token); err != utils.ErrorTokenExpired {
		t.Fatalf("expected ErrorTokenExpired, got %v", err)
	}
}

func TestCheckTokenExpiryPassesOpaqueTokens(t *testing.T) {
	if err := remote.CheckTokenExpiry("not-a-jwt"); err != nil {
		t.Fatalf("opaque token must pass through, got %v", err)
	}
}

func TestStaticTokenFailsFastOnExpiry(t *testing.T) {
	source := remote.StaticToken(signedToken(t, time.Now().Add(-time.Minute)))
	if _, err := source.Token(context.Background()); err != utils.ErrorTokenExpired {
		t.Fatalf("expected ErrorTokenExpired, got %v", err)
	}
}
