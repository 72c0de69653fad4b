package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
)

// ErrMissingToken is returned when no ID token was supplied.
var ErrMissingToken = errors.New("firebase: id token is required")

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Identity is the authenticated user behind an ID token.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// VerifyUser checks an ID token, with or without a "Bearer " prefix, and
// returns who it belongs to. The UID is what a Store binds to.
func VerifyUser(ctx context.Context, v TokenVerifier, raw string) (Identity, error) {
	token := strings.TrimSpace(raw)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	verified, err := v.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("firebase: verify id token: %w", err)
	}

	id := Identity{UID: verified.UID}
	if email, ok := verified.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := verified.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}
