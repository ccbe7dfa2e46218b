package api

import (
	"context"
	"net/http"

	"github.com/larderapp/larder-server/internal/auth"
)

// sessionMiddleware decodes the session cookie into a request-scoped
// auth.Session and writes it back only when a handler changed it. A missing,
// expired or forged cookie yields a fresh anonymous session.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.loadSession(r)

		sw := &sessionWriter{ResponseWriter: w}
		sw.beforeWrite = func() { s.saveSession(r.Context(), w, sess) }

		next.ServeHTTP(sw, r.WithContext(auth.WithSession(r.Context(), sess)))

		// Handlers that wrote nothing still get their session saved.
		sw.flush()
	})
}

func (s *Server) loadSession(r *http.Request) *auth.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return auth.NewSession()
	}

	sess, err := s.sessions.Decode(cookie.Value)
	if err != nil {
		s.requestLogger(r.Context()).WithError(err).Debug("discarding session cookie", "remote_addr", r.RemoteAddr)
		return auth.NewSession()
	}
	return sess
}

func (s *Server) saveSession(ctx context.Context, w http.ResponseWriter, sess *auth.Session) {
	if !sess.Dirty() {
		return
	}

	token, expires, err := s.sessions.Encode(sess)
	if err != nil {
		s.requestLogger(ctx).WithError(err).Error("failed to encode session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(s.sessions.Duration().Seconds()),
		HttpOnly: true,
		Secure:   s.config.Auth.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionWriter runs beforeWrite once, just before the status line goes out,
// so a Set-Cookie header can still be added after the handler has run.
type sessionWriter struct {
	http.ResponseWriter
	beforeWrite func()
	written     bool
}

func (w *sessionWriter) flush() {
	if !w.written {
		w.written = true
		w.beforeWrite()
	}
}

func (w *sessionWriter) WriteHeader(status int) {
	w.flush()
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// session returns the request session. The middleware always installs one;
// the fallback only matters for handlers mounted without it.
func session(ctx context.Context) *auth.Session {
	if sess := auth.SessionFrom(ctx); sess != nil {
		return sess
	}
	return auth.NewSession()
}

// requireUser returns the authenticated user id or UNAUTHENTICATED.
func requireUser(ctx context.Context) (int64, error) {
	return auth.RequireAuthenticated(session(ctx))
}

// viewerID returns the authenticated user id, or 0 for anonymous viewers.
func viewerID(ctx context.Context) int64 {
	uid, _ := session(ctx).UserID()
	return uid
}

// verifyCSRF checks the submitted anti-forgery token against the session's.
func verifyCSRF(ctx context.Context, submitted string) error {
	return auth.VerifyAntiForgeryToken(submitted, session(ctx).PeekCSRFToken())
}

// csrfToken returns the session's anti-forgery token, issuing one if needed.
func csrfToken(ctx context.Context) (string, error) {
	return session(ctx).CSRFToken()
}
