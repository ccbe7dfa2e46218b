package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/larderapp/larder-server/internal/auth"
	"github.com/larderapp/larder-server/internal/config"
	"github.com/larderapp/larder-server/internal/domain"
	"github.com/larderapp/larder-server/internal/search"
	"github.com/larderapp/larder-server/internal/store"
	"github.com/larderapp/larder-server/internal/store/sqlite"
)

var fastHash = auth.PasswordParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type testEnv struct {
	store   *sqlite.Store
	index   *search.RecipeIndex
	auth    *AuthService
	recipes *RecipeService
	reviews *ReviewService
	tags    *TagService
	search  *SearchService
	users   *UserService
	limits  config.LimitsConfig
}

// setupTest wires every service against a temporary database and an
// in-memory search index.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewMemoryIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return newTestEnv(t, s, index)
}

func newTestEnv(t *testing.T, s store.Store, index *search.RecipeIndex) *testEnv {
	t.Helper()

	limits := config.Defaults(t.TempDir()).Limits
	limits.PageSize = 2
	limits.ReviewPageSize = 2

	searchSvc := NewSearchService(s, index, limits.PageSize, nil)
	authSvc := NewAuthService(s, nil)
	authSvc.hashParams = fastHash

	env := &testEnv{
		index:   index,
		auth:    authSvc,
		recipes: NewRecipeService(s, searchSvc, limits, nil),
		reviews: NewReviewService(s, nil),
		tags:    NewTagService(s, limits.PageSize, nil),
		search:  searchSvc,
		users:   NewUserService(s, nil),
		limits:  limits,
	}
	if sq, ok := s.(*sqlite.Store); ok {
		env.store = sq
	}
	return env
}

func (e *testEnv) register(t *testing.T, username string) *domain.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), RegisterRequest{
		Username:        username,
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) addRecipe(t *testing.T, owner *domain.User, name string, tags ...string) *domain.Recipe {
	t.Helper()
	r, err := e.recipes.Create(context.Background(), owner.ID, RecipeInput{
		Name:    name,
		Content: name + " method",
		Tags:    tags,
	})
	require.NoError(t, err)
	return r
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func ptr[T any](v T) *T { return &v }
