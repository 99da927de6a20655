package remote

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/utils"
	"github.com/dgrijalva/jwt-go"
)

// TokenSource supplies the bearer credential for remote calls. The session
// layer owns issuing and refreshing tokens; this layer only consumes them.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed credential, mainly for tests and the agent CLI.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) {
	if err := CheckTokenExpiry(string(s)); err != nil {
		return "", err
	}
	return string(s), nil
}

// CheckTokenExpiry inspects the JWT exp claim without verifying the
// signature (the server verifies; we only want to fail fast locally
// instead of burning queue retries on a dead credential).
func CheckTokenExpiry(token string) error {
	parser := jwt.Parser{SkipClaimsValidation: true}
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// Opaque tokens are passed through untouched.
		return nil
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil
	}
	if time.Now().After(time.Unix(int64(exp), 0)) {
		return utils.ErrorTokenExpired
	}
	return nil
}
