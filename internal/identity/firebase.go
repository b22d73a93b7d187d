package identity

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// FirebaseVerifier validates Firebase ID tokens. Both email/password and
// anonymous sign-in flows end in an ID token, so a single verifier
// covers the credential service.
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier wraps an existing Firebase auth client.
func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

// Verify checks the token signature and returns the principal id.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("verifying id token: %w", err)
	}
	return decoded.UID, nil
}
