package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/store"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestJSON_OK(t *testing.T) {
	w := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	JSON(w, http.StatusOK, OK(map[string]string{"message": "test"}), logger)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	env := decode(t, w)
	assert.Equal(t, Version, env.V)
	assert.True(t, env.Success)
	assert.NotNil(t, env.Data)
	assert.Empty(t, env.Error)
}

func TestBadRequest_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	BadRequest(w, "invalid recipe id", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Equal(t, "invalid recipe id", env.Error)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"domain error keeps status", domainerrors.Forbidden("nope"), http.StatusForbidden, "FORBIDDEN"},
		{"wrapped domain error", errors.Join(errors.New("ctx"), domainerrors.ErrInvalidToken), http.StatusForbidden, "INVALID_TOKEN"},
		{"store not found", store.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unknown error hides detail", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, nil)

			assert.Equal(t, tt.wantCode, w.Code)
			env := decode(t, w)
			assert.Equal(t, tt.wantErr, env.Code)
			assert.NotContains(t, env.Message, "disk on fire")
		})
	}
}

func TestCodeForStatus(t *testing.T) {
	assert.Equal(t, "VALIDATION", CodeForStatus(http.StatusUnprocessableEntity))
	assert.Equal(t, "RATE_LIMITED", CodeForStatus(http.StatusTooManyRequests))
	assert.Equal(t, "INTERNAL", CodeForStatus(http.StatusTeapot))
}
