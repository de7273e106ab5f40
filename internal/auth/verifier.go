package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// Verifier validates a bearer token and derives the calling principal.
// Token signing and key management belong to the identity provider; this
// interface is the whole surface the service sees.
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// GoogleVerifier validates Google-issued ID tokens (including Firebase
// Authentication tokens) against a fixed audience.
type GoogleVerifier struct {
	validator *idtoken.Validator
	audience  string
}

// NewGoogleVerifier creates a verifier for tokens minted for the given
// audience (the Firebase/GCP project ID).
func NewGoogleVerifier(ctx context.Context, audience string) (*GoogleVerifier, error) {
	validator, err := idtoken.NewValidator(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGoogleVerifier: creating validator: %w", err)
	}
	return &GoogleVerifier{
		validator: validator,
		audience:  audience,
	}, nil
}

// Verify checks the token signature, expiry and audience, and extracts the
// email claim. Any failure collapses into a single error: the caller never
// learns whether the token was malformed, expired or forged.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	payload, err := v.validator.Validate(ctx, token, v.audience)
	if err != nil {
		return Principal{}, fmt.Errorf("Verify: token rejected: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return Principal{}, fmt.Errorf("Verify: token carries no email claim")
	}

	return Principal{
		Email:   email,
		Subject: payload.Subject,
	}, nil
}
