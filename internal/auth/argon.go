package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordParams tunes argon2id. The encoded hash records the parameters it
// was made with, so changing them never invalidates stored hashes.
type PasswordParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltLength  int
	KeyLength   uint32
}

// DefaultPasswordParams are the parameters used for new accounts.
var DefaultPasswordParams = PasswordParams{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// maxPasswordLength stops oversized inputs from tying up the hasher.
const maxPasswordLength = 1024

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password cannot be empty")

// HashPassword creates an argon2id hash of the password with DefaultPasswordParams.
func HashPassword(password string) (string, error) {
	return HashPasswordWith(password, DefaultPasswordParams)
}

// HashPasswordWith hashes with explicit parameters. The result has the form
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>.
func HashPasswordWith(password string, p PasswordParams) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordLength {
		return "", errors.New("password exceeds maximum length")
	}

	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.Memory,
		p.Iterations,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword reports whether password matches the encoded hash.
// A malformed hash verifies as false rather than returning details.
func VerifyPassword(encodedHash, password string) bool {
	if len(password) > maxPasswordLength {
		return false
	}

	salt, hash, p, err := decodeHash(encodedHash)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}

// dummyHash is verified against when a username is unknown so both login
// failure paths cost the same.
var dummyHash = func() string {
	h, err := HashPassword("larder-timing-equaliser")
	if err != nil {
		panic(err)
	}
	return h
}()

// VerifyNothing burns one password verification. Use it when no user matched.
func VerifyNothing(password string) {
	_ = VerifyPassword(dummyHash, password)
}

func decodeHash(encodedHash string) (salt, hash []byte, p PasswordParams, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, p, errors.New("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return nil, nil, p, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, p, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return nil, nil, p, fmt.Errorf("incompatible version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return nil, nil, p, fmt.Errorf("invalid parameters: %w", err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, p, fmt.Errorf("invalid salt encoding: %w", err)
	}
	if hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, p, fmt.Errorf("invalid hash encoding: %w", err)
	}

	//nolint:gosec // key length is 32 bytes in practice
	p.KeyLength = uint32(len(hash))
	p.SaltLength = len(salt)
	return salt, hash, p, nil
}
