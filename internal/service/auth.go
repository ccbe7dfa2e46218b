package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/larderapp/larder-server/internal/auth"
	"github.com/larderapp/larder-server/internal/domain"
	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/metrics"
	"github.com/larderapp/larder-server/internal/store"
)

// RegisterRequest contains the account registration form.
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,notblank,max=50"`
	Password        string `json:"password" validate:"required,min=8,max=1024"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService moves a session between anonymous and authenticated.
type AuthService struct {
	store      store.Store
	hashParams auth.PasswordParams
	logger     *slog.Logger
}

// NewAuthService creates an authentication service.
func NewAuthService(store store.Store, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:      store,
		hashParams: auth.DefaultPasswordParams,
		logger:     logOrDiscard(logger),
	}
}

// Register creates an account. A taken username is reported as
// ALREADY_EXISTS with a user-facing message, never as a storage error.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPasswordWith(req.Password, s.hashParams)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "hash password")
	}

	user := &domain.User{Username: req.Username, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("username taken").
				WithDetails(map[string]string{"username": "is already taken"})
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.UsersRegistered.Inc()
	requestLog(ctx, s.logger).Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks credentials and binds the user to sess. Unknown usernames and
// wrong passwords fail identically and take the same time.
func (s *AuthService) Login(ctx context.Context, sess *auth.Session, req LoginRequest) (*domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		auth.VerifyNothing(req.Password)
		metrics.RecordLogin(false)
		return nil, domainerrors.ErrInvalidCredentials
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		metrics.RecordLogin(false)
		requestLog(ctx, s.logger).Info("login failed", "username", req.Username)
		return nil, domainerrors.ErrInvalidCredentials
	}

	if err := sess.Login(user); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	metrics.RecordLogin(true)
	requestLog(ctx, s.logger).Info("user logged in", "user_id", user.ID)
	return user, nil
}

// Logout clears the identity and anti-forgery token of sess.
func (s *AuthService) Logout(sess *auth.Session) {
	if uid, ok := sess.UserID(); ok {
		s.logger.Info("user logged out", "user_id", uid)
	}
	sess.Logout()
}
