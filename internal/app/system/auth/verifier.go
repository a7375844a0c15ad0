// Package auth verifies bearer credentials and carries the caller's identity
// through the request context.
package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/dalemusser/bookcourier/internal/app/system/normalize"
)

var (
	// ErrInvalidToken is returned when the identity provider rejects a token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrNoEmail is returned when a valid token carries no email claim.
	ErrNoEmail = errors.New("token has no email claim")
)

// Verifier checks a bearer token with the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// tokenVerifier is the subset of the Firebase auth client used here.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens with the Admin SDK.
type FirebaseVerifier struct {
	client tokenVerifier
}

// NewFirebaseVerifier initializes the Firebase Admin SDK.
// With an empty credentialsPath, Application Default Credentials are used.
func NewFirebaseVerifier(ctx context.Context, credentialsPath, projectID string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}
	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify validates the ID token and returns the caller's identity.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromClaims(tok.UID, tok.Claims)
}

func identityFromClaims(uid string, claims map[string]interface{}) (Identity, error) {
	email, _ := claims["email"].(string)
	email = normalize.Email(email)
	if email == "" {
		return Identity{}, ErrNoEmail
	}
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	return Identity{
		UID:     uid,
		Email:   email,
		Name:    name,
		Picture: picture,
	}, nil
}
