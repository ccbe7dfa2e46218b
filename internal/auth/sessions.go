package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

const (
	sessionIssuer   = "larder-server"
	sessionAudience = "larder-web"

	claimUserID   = "uid"
	claimUsername = "username"
	claimCSRF     = "csrf"
)

// ErrInvalidSession is returned by Decode for tokens that fail to decrypt,
// are expired, or were issued for another audience.
var ErrInvalidSession = errors.New("invalid session")

// SessionCodec seals sessions into PASETO v4.local tokens and opens them again.
// The token is the whole session; nothing is kept server side.
type SessionCodec struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
	now      func() time.Time
}

// NewSessionCodec creates a codec from a 32-byte key.
func NewSessionCodec(key []byte, duration time.Duration) (*SessionCodec, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("session key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	if duration <= 0 {
		return nil, fmt.Errorf("session duration must be positive, got %s", duration)
	}
	k, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}
	return &SessionCodec{key: k, duration: duration, now: time.Now}, nil
}

// Duration returns the lifetime given to encoded sessions.
func (c *SessionCodec) Duration() time.Duration {
	return c.duration
}

// Encode seals s and returns the token with its expiry.
func (c *SessionCodec) Encode(s *Session) (string, time.Time, error) {
	now := c.now()
	expires := now.Add(c.duration)

	token := paseto.NewToken()
	token.SetIssuer(sessionIssuer)
	token.SetAudience(sessionAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)
	token.SetJti(s.id)

	if uid, ok := s.UserID(); ok {
		if err := token.Set(claimUserID, uid); err != nil {
			return "", time.Time{}, fmt.Errorf("set user claim: %w", err)
		}
		token.SetString(claimUsername, s.username)
	}
	if s.csrfToken != "" {
		token.SetString(claimCSRF, s.csrfToken)
	}

	return token.V4Encrypt(c.key, nil), expires, nil
}

// Decode opens a token produced by Encode. The returned session is clean.
func (c *SessionCodec) Decode(tokenString string) (*Session, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(sessionAudience))
	parser.AddRule(paseto.IssuedBy(sessionIssuer))
	parser.AddRule(paseto.ValidAt(c.now()))

	token, err := parser.ParseV4Local(c.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	sid, err := token.GetJti()
	if err != nil || sid == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrInvalidSession)
	}
	s := &Session{id: sid}

	var uid int64
	if err := token.Get(claimUserID, &uid); err == nil && uid > 0 {
		s.userID = uid
		s.username, _ = token.GetString(claimUsername)
	}
	if csrf, err := token.GetString(claimCSRF); err == nil {
		s.csrfToken = csrf
	}
	return s, nil
}
