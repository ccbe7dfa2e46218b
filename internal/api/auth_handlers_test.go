package api

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderapp/larder-server/internal/color"
	"github.com/larderapp/larder-server/internal/config"
)

func TestGetSession_Anonymous(t *testing.T) {
	ts := setupTestServer(t)
	c := ts.client(t)

	res := c.get("/login")
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, 1, res.env.V)

	var sess SessionResponse
	res.decode(t, &sess)
	assert.False(t, sess.Authenticated)
	assert.NotEmpty(t, sess.CSRFToken)

	cookie := res.header.Get("Set-Cookie")
	assert.Contains(t, cookie, sessionCookieName+"=")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Lax")

	// The same token comes back while the session lives.
	var again SessionResponse
	c.get("/login").decode(t, &again)
	assert.Equal(t, sess.CSRFToken, again.CSRFToken)
}

func TestRegister_Flow(t *testing.T) {
	ts := setupTestServer(t)
	c := ts.client(t)

	var form RegisterFormResponse
	c.get("/register").decode(t, &form)
	assert.NotEmpty(t, form.CSRFToken)
	assert.Equal(t, 50, form.MaxUsernameLength)
	assert.Equal(t, 8, form.MinPasswordLength)

	res := c.post("/register", RegisterRequest{Username: "  alice ", Password: testPassword, ConfirmPassword: testPassword})
	require.Equal(t, http.StatusCreated, res.status, string(res.raw))

	var user UserResponse
	res.decode(t, &user)
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.ID)
	assert.Equal(t, color.Avatar("alice"), user.AvatarColor)

	// Registering does not sign in.
	var sess SessionResponse
	c.get("/login").decode(t, &sess)
	assert.False(t, sess.Authenticated)

	c.login("alice")
	c.get("/login").decode(t, &sess)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, user.ID, sess.UserID)
}

func TestRegister_Rejections(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "alice")
	c := ts.client(t)
	c.get("/register")

	tests := []struct {
		name   string
		req    RegisterRequest
		status int
		code   string
	}{
		{"taken username", RegisterRequest{"alice", testPassword, testPassword}, http.StatusConflict, "ALREADY_EXISTS"},
		{"blank username", RegisterRequest{"   ", testPassword, testPassword}, http.StatusBadRequest, "VALIDATION"},
		{"long username", RegisterRequest{strings.Repeat("u", 51), testPassword, testPassword}, http.StatusBadRequest, "VALIDATION"},
		{"short password", RegisterRequest{"bob", "short", "short"}, http.StatusBadRequest, "VALIDATION"},
		{"mismatched confirmation", RegisterRequest{"bob", testPassword, testPassword + "x"}, http.StatusBadRequest, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.post("/register", tt.req)
			assert.Equal(t, tt.status, res.status)
			assert.False(t, res.env.Success)
			assert.Equal(t, tt.code, res.env.Code)
		})
	}
}

func TestLogin_RequiresAntiForgeryToken(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "alice")
	c := ts.client(t)

	// No token issued yet.
	res := c.post("/login", LoginRequest{Username: "alice", Password: testPassword})
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "INVALID_TOKEN", res.env.Code)

	c.get("/login")
	c.csrf = "forged"
	res = c.post("/login", LoginRequest{Username: "alice", Password: testPassword})
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "INVALID_TOKEN", res.env.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "alice")
	c := ts.client(t)
	c.get("/login")

	for _, req := range []LoginRequest{
		{Username: "alice", Password: "wrong-password"},
		{Username: "nobody", Password: testPassword},
	} {
		res := c.post("/login", req)
		assert.Equal(t, http.StatusUnauthorized, res.status)
		assert.Equal(t, "INVALID_CREDENTIALS", res.env.Code)
	}
}

func TestLogin_RotatesTokenAndLogoutClears(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.createUser(t, "alice")
	c := ts.client(t)

	var before SessionResponse
	c.get("/login").decode(t, &before)

	res := c.post("/login", LoginRequest{Username: "alice", Password: testPassword})
	require.Equal(t, http.StatusOK, res.status)
	var after SessionResponse
	res.decode(t, &after)
	assert.True(t, after.Authenticated)
	assert.Equal(t, alice.ID, after.UserID)
	assert.Equal(t, "alice", after.Username)
	assert.NotEqual(t, before.CSRFToken, after.CSRFToken)

	var out SessionResponse
	c.get("/logout").decode(t, &out)
	assert.False(t, out.Authenticated)
	assert.NotEqual(t, after.CSRFToken, out.CSRFToken)

	c.get("/login").decode(t, &out)
	assert.False(t, out.Authenticated)
}

func TestSession_ForgedCookieIsAnonymous(t *testing.T) {
	ts := setupTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.http.URL+"/login", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "v4.local.garbage"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Set-Cookie"), sessionCookieName+"=")
}

func TestLogin_RateLimited(t *testing.T) {
	ts := setupTestServer(t, func(cfg *config.Config) {
		cfg.Auth.LoginRate = 0.001
		cfg.Auth.LoginBurst = 2
	})
	c := ts.client(t)
	c.get("/login")

	for range 2 {
		res := c.post("/login", LoginRequest{Username: "nobody", Password: testPassword})
		assert.Equal(t, http.StatusUnauthorized, res.status)
	}

	res := c.post("/login", LoginRequest{Username: "nobody", Password: testPassword})
	require.Equal(t, http.StatusTooManyRequests, res.status)
	assert.Equal(t, "RATE_LIMITED", res.env.Code)

	retry, err := strconv.Atoi(res.header.Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retry, 1)

	// Registration shares the limiter.
	res = c.post("/register", RegisterRequest{"bob", testPassword, testPassword})
	assert.Equal(t, http.StatusTooManyRequests, res.status)
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "10.0.0.1", clientIP("10.0.0.1:5555"))
	assert.Equal(t, "::1", clientIP("[::1]:80"))
	assert.Equal(t, "unix", clientIP("unix"))
}
