package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

var (
	// ErrGoogleNotConfigured is returned when no OAuth client id is set.
	ErrGoogleNotConfigured = errors.New("google sign-in not configured")
	// ErrInvalidCredential is returned when the ID token fails verification.
	ErrInvalidCredential = errors.New("invalid google credential")
)

// Identity is the verified subject of an identity-provider credential.
type Identity struct {
	Email         string
	Name          string
	EmailVerified bool
}

// IdentityVerifier verifies a third-party sign-in credential.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleVerifier validates Google ID tokens against a client id.
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

// NewGoogleVerifier creates a verifier for clientID. An empty clientID
// yields a verifier that always reports ErrGoogleNotConfigured.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify checks the credential's signature, audience and expiry.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	if v.clientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	payload, err := v.validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	identity := &Identity{}
	if email, ok := payload.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		identity.Name = name
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok {
		identity.EmailVerified = verified
	}
	return identity, nil
}
