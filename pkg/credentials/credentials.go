// Package credentials is the credential-check collaborator: hashing and
// verification live here so domain services never touch bcrypt directly.
package credentials

import "golang.org/x/crypto/bcrypt"

// Verifier checks a plaintext secret against a stored hash.
type Verifier interface {
	Verify(plain, storedHash string) bool
}

// BcryptVerifier implements Verifier with bcrypt.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(plain, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}

// Hash produces a bcrypt hash at the default cost. Only seeding and account
// management paths call this; request paths only verify.
func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
