// Package auth provides password hashing, session cookies and the
// authorization guards that protect mutations.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PASETO v4 requires a 256-bit (32-byte) symmetric key.
	keyLength    = 32
	keyHexLength = keyLength * 2

	keyFileName = "session.key"
)

// LoadOrGenerateKey loads the session key from <basePath>/session.key,
// creating the file with a fresh random key on first start.
func LoadOrGenerateKey(basePath string) ([]byte, error) {
	keyPath := filepath.Join(basePath, keyFileName)

	//#nosec G304 -- key path is derived from the configured metadata path
	keyBytes, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		return decodeKey(strings.TrimSpace(string(keyBytes)))
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read session key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}

	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create metadata directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("failed to save session key: %w", err)
	}

	return key, nil
}

func decodeKey(keyHex string) ([]byte, error) {
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("invalid session key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid session key format: not valid hex: %w", err)
	}
	return key, nil
}
