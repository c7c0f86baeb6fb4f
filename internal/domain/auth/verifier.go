package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthError is a credential rejection. Handlers translate it into a
// generic 401 so nothing about the account leaks.
type AuthError struct{}

func (e *AuthError) Error() string { return "invalid credentials" }

// CredentialVerifier is the external credential-check collaborator.
// Verify returns an opaque user identifier on success.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (string, error)
}

// StaticVerifier checks credentials against a single configured admin
// account. The password is stored as a bcrypt hash, never plaintext.
type StaticVerifier struct {
	email        string
	passwordHash []byte
	userID       string
}

// NewStaticVerifier builds a verifier for the configured admin. The
// returned user id is a stable UUID derived from the email, so it is
// opaque but consistent across restarts.
func NewStaticVerifier(email, passwordHash string) *StaticVerifier {
	return &StaticVerifier{
		email:        strings.ToLower(email),
		passwordHash: []byte(passwordHash),
		userID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte("epaos:admin:"+strings.ToLower(email))).String(),
	}
}

func (v *StaticVerifier) Verify(_ context.Context, email, password string) (string, error) {
	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(email)), []byte(v.email)) == 1
	passErr := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password))
	if !emailOK || passErr != nil {
		return "", &AuthError{}
	}
	return v.userID, nil
}
