package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/larderapp/larder-server/internal/color"
	"github.com/larderapp/larder-server/internal/domain"
	"github.com/larderapp/larder-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLogin",
		Method:      http.MethodGet,
		Path:        "/login",
		Summary:     "Session state",
		Description: "Returns the current session and an anti-forgery token for the login form",
		Tags:        []string{"Authentication"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/login",
		Summary:     "User login",
		Description: "Binds the session to a user. The anti-forgery token is rotated on success.",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.rateLimited("/login")},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodGet,
		Path:        "/logout",
		Summary:     "Logout",
		Description: "Clears the session identity and its anti-forgery token",
		Tags:        []string{"Authentication"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRegister",
		Method:      http.MethodGet,
		Path:        "/register",
		Summary:     "Registration form",
		Description: "Returns an anti-forgery token and the account limits",
		Tags:        []string{"Authentication"},
	}, s.handleGetRegister)

	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/register",
		Summary:       "Register new user",
		Description:   "Creates an account. The new user logs in separately.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimited("/register")},
	}, s.handleRegister)
}

// === DTOs ===

// SessionResponse describes the caller's session.
type SessionResponse struct {
	Authenticated bool   `json:"authenticated" doc:"Whether a user is logged in"`
	UserID        int64  `json:"user_id,omitempty" doc:"Logged in user ID"`
	Username      string `json:"username,omitempty" doc:"Logged in username"`
	CSRFToken     string `json:"csrf_token" doc:"Anti-forgery token to send in the X-CSRF-Token header"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// LoginRequest is the request body for user login.
type LoginRequest struct {
	Username string `json:"username" doc:"Username"`
	Password string `json:"password" doc:"Password"`
}

// LoginInput wraps the login request with the anti-forgery header.
type LoginInput struct {
	CSRFToken string `header:"X-CSRF-Token" doc:"Anti-forgery token"`
	Body      LoginRequest
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username        string `json:"username" doc:"Unique username, 1 to 50 characters"`
	Password        string `json:"password" doc:"Password, at least 8 characters"`
	ConfirmPassword string `json:"confirm_password" doc:"Must equal password"`
}

// RegisterInput wraps the register request with the anti-forgery header.
type RegisterInput struct {
	CSRFToken string `header:"X-CSRF-Token" doc:"Anti-forgery token"`
	Body      RegisterRequest
}

// RegisterFormResponse carries what a registration form needs.
type RegisterFormResponse struct {
	CSRFToken         string `json:"csrf_token" doc:"Anti-forgery token"`
	MaxUsernameLength int    `json:"max_username_length" doc:"Longest allowed username"`
	MinPasswordLength int    `json:"min_password_length" doc:"Shortest allowed password"`
}

// RegisterFormOutput wraps the registration form for Huma.
type RegisterFormOutput struct {
	Body RegisterFormResponse
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          int64     `json:"id" doc:"User ID"`
	Username    string    `json:"username" doc:"Username"`
	CreatedAt   time.Time `json:"created_at" doc:"Registration timestamp"`
	AvatarColor string    `json:"avatar_color" doc:"Stable hex colour for the user's avatar"`
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body UserResponse
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		CreatedAt:   u.CreatedAt,
		AvatarColor: color.Avatar(u.Username),
	}
}

// === Handlers ===

func (s *Server) handleGetSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	return s.sessionOutput(ctx)
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*SessionOutput, error) {
	if err := verifyCSRF(ctx, input.CSRFToken); err != nil {
		return nil, err
	}

	_, err := s.services.Auth.Login(ctx, session(ctx), service.LoginRequest{
		Username: input.Body.Username,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return s.sessionOutput(ctx)
}

func (s *Server) handleLogout(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	s.services.Auth.Logout(session(ctx))
	return s.sessionOutput(ctx)
}

func (s *Server) handleGetRegister(ctx context.Context, _ *struct{}) (*RegisterFormOutput, error) {
	token, err := csrfToken(ctx)
	if err != nil {
		return nil, err
	}
	return &RegisterFormOutput{Body: RegisterFormResponse{
		CSRFToken:         token,
		MaxUsernameLength: domain.MaxUsernameLength,
		MinPasswordLength: domain.MinPasswordLength,
	}}, nil
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*UserOutput, error) {
	if err := verifyCSRF(ctx, input.CSRFToken); err != nil {
		return nil, err
	}

	user, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Username:        input.Body.Username,
		Password:        input.Body.Password,
		ConfirmPassword: input.Body.ConfirmPassword,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: toUserResponse(user)}, nil
}

// sessionOutput describes the session in ctx, issuing a token if it has none.
func (s *Server) sessionOutput(ctx context.Context) (*SessionOutput, error) {
	sess := session(ctx)
	token, err := sess.CSRFToken()
	if err != nil {
		return nil, err
	}

	uid, _ := sess.UserID()
	return &SessionOutput{Body: SessionResponse{
		Authenticated: sess.IsAuthenticated(),
		UserID:        uid,
		Username:      sess.Username(),
		CSRFToken:     token,
	}}, nil
}
