// Package id generates the random identifiers and secrets handed out by the server.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// TokenLength is the size of an anti-forgery token in characters.
// NanoID's 64 symbol alphabet gives 6 bits per character, 192 bits in total.
const TokenLength = 32

// Token returns a URL-safe random secret suitable for an anti-forgery token.
// Returns an error if the system has insufficient entropy.
func Token() (string, error) {
	t, err := gonanoid.New(TokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return t, nil
}

// SessionID returns a random v4 UUID identifying one login session.
func SessionID() string {
	return uuid.NewString()
}
