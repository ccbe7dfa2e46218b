package auth

import (
	"context"

	"github.com/larderapp/larder-server/internal/domain"
	"github.com/larderapp/larder-server/internal/id"
)

// Session is the request-scoped identity state. It is either anonymous or
// bound to one user, and may carry an anti-forgery token in either state.
//
// Handlers mutate it through Login, Logout and CSRFToken. The HTTP layer
// persists it again only when Dirty reports a change.
type Session struct {
	id        string
	userID    int64
	username  string
	csrfToken string
	dirty     bool
}

// NewSession returns an empty anonymous session.
func NewSession() *Session {
	return &Session{id: id.SessionID()}
}

// ID returns the session identifier. It changes on every login.
func (s *Session) ID() string {
	return s.id
}

// UserID returns the bound user, if any.
func (s *Session) UserID() (int64, bool) {
	if s == nil || s.userID == 0 {
		return 0, false
	}
	return s.userID, true
}

// Username returns the bound username, or "" when anonymous.
func (s *Session) Username() string {
	if s == nil {
		return ""
	}
	return s.username
}

// IsAuthenticated reports whether a user is bound to the session.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.UserID()
	return ok
}

// CSRFToken returns the session's anti-forgery token, issuing one on first use.
func (s *Session) CSRFToken() (string, error) {
	if s.csrfToken != "" {
		return s.csrfToken, nil
	}
	t, err := id.Token()
	if err != nil {
		return "", err
	}
	s.csrfToken = t
	s.dirty = true
	return t, nil
}

// PeekCSRFToken returns the current token without issuing one.
func (s *Session) PeekCSRFToken() string {
	if s == nil {
		return ""
	}
	return s.csrfToken
}

// Login binds user to the session. The session id and anti-forgery token are
// both replaced so a token observed before login is useless afterwards.
func (s *Session) Login(user *domain.User) error {
	t, err := id.Token()
	if err != nil {
		return err
	}
	s.id = id.SessionID()
	s.userID = user.ID
	s.username = user.Username
	s.csrfToken = t
	s.dirty = true
	return nil
}

// Logout clears the identity and the anti-forgery token.
func (s *Session) Logout() {
	s.id = id.SessionID()
	s.userID = 0
	s.username = ""
	s.csrfToken = ""
	s.dirty = true
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool {
	return s.dirty
}

type sessionKey struct{}

// WithSession stores the session in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session stored in ctx, or nil.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
