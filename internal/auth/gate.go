package auth

import (
	"crypto/subtle"

	"github.com/larderapp/larder-server/internal/domain"
	domainerrors "github.com/larderapp/larder-server/internal/errors"
)

// RequireAuthenticated returns the bound user id or ErrUnauthenticated.
// Callers must stop on error; no guard here redirects or passes silently.
func RequireAuthenticated(s *Session) (int64, error) {
	uid, ok := s.UserID()
	if !ok {
		return 0, domainerrors.ErrUnauthenticated
	}
	return uid, nil
}

// RequireOwnership fails with Forbidden unless userID owns recipe.
func RequireOwnership(recipe *domain.Recipe, userID int64) error {
	if recipe == nil || !recipe.OwnedBy(userID) {
		return domainerrors.Forbidden("you do not own this recipe")
	}
	return nil
}

// RequireReviewer fails with Forbidden unless userID wrote review.
func RequireReviewer(review *domain.Review, userID int64) error {
	if review == nil || !review.WrittenBy(userID) {
		return domainerrors.Forbidden("you did not write this review")
	}
	return nil
}

// VerifyAntiForgeryToken fails with InvalidToken when either token is empty
// or they differ. The comparison runs in constant time.
func VerifyAntiForgeryToken(submitted, sessionToken string) error {
	switch {
	case sessionToken == "":
		return domainerrors.InvalidToken("no anti-forgery token was issued for this session")
	case submitted == "":
		return domainerrors.InvalidToken("anti-forgery token missing")
	case subtle.ConstantTimeCompare([]byte(submitted), []byte(sessionToken)) != 1:
		return domainerrors.InvalidToken("anti-forgery token mismatch")
	}
	return nil
}
