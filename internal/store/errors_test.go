package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/larderapp/larder-server/internal/store"
)

func TestError_Error(t *testing.T) {
	assert.Equal(t, "resource not found", store.ErrNotFound.Error())

	cause := errors.New("no such row")
	err := store.ErrNotFound.WithCause(cause)
	assert.Contains(t, err.Error(), "resource not found")
	assert.Contains(t, err.Error(), "no such row")
	assert.Equal(t, cause, err.Unwrap())
}

func TestError_IsSurvivesWithCause(t *testing.T) {
	err := fmt.Errorf("create user: %w", store.ErrAlreadyExists.WithCause(errors.New("UNIQUE constraint failed")))

	assert.True(t, errors.Is(err, store.ErrAlreadyExists))
	assert.False(t, errors.Is(err, store.ErrNotFound))
	assert.False(t, errors.Is(err, store.ErrInUse))
}

func TestSearchFilter_IsEmpty(t *testing.T) {
	assert.True(t, store.SearchFilter{}.IsEmpty())
	assert.False(t, store.SearchFilter{Text: "pie"}.IsEmpty())
	assert.False(t, store.SearchFilter{Tags: []string{"dessert"}}.IsEmpty())
}
