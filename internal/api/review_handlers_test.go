package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderapp/larder-server/internal/domain"
)

func ptr[T any](v T) *T { return &v }

// reviewFixture is a recipe by chef with a logged in critic.
func reviewFixture(t *testing.T) (*testServer, *testClient, *testClient, *domain.Recipe) {
	t.Helper()
	ts := setupTestServer(t)
	ts.createUser(t, "chef")
	ts.createUser(t, "critic")

	owner := ts.client(t)
	owner.login("chef")
	pie := owner.addRecipe("Apple Pie", "dessert")

	critic := ts.client(t)
	critic.login("critic")
	return ts, owner, critic, pie
}

func TestAddReview(t *testing.T) {
	_, _, critic, pie := reviewFixture(t)

	res := critic.post(fmt.Sprintf("/add_review/%d", pie.ID), ReviewRequest{Rating: 4, Comment: ptr("  Lovely crust ")})
	require.Equal(t, http.StatusCreated, res.status, string(res.raw))

	var review domain.Review
	res.decode(t, &review)
	assert.Equal(t, 4, review.Rating)
	require.NotNil(t, review.Comment)
	assert.Equal(t, "Lovely crust", *review.Comment)
	assert.Equal(t, "critic", review.Username)

	var detail RecipeDetailResponse
	critic.get(fmt.Sprintf("/recipe/%d", pie.ID)).decode(t, &detail)
	assert.False(t, detail.CanReview)
	require.NotNil(t, detail.ViewerReview)
	assert.Equal(t, review.ID, detail.ViewerReview.ID)
	assert.Equal(t, 1, detail.Rating.Count)
	require.NotNil(t, detail.Rating.Average)
	assert.InDelta(t, 4.0, *detail.Rating.Average, 0.001)
}

func TestAddReview_Rules(t *testing.T) {
	ts, owner, critic, pie := reviewFixture(t)
	path := fmt.Sprintf("/add_review/%d", pie.ID)

	res := owner.post(path, ReviewRequest{Rating: 5})
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "SELF_REVIEW", res.env.Code)

	require.Equal(t, http.StatusCreated, critic.post(path, ReviewRequest{Rating: 3}).status)
	res = critic.post(path, ReviewRequest{Rating: 1})
	assert.Equal(t, http.StatusConflict, res.status)
	assert.Equal(t, "DUPLICATE_REVIEW", res.env.Code)

	res = critic.post("/add_review/9999", ReviewRequest{Rating: 3})
	assert.Equal(t, http.StatusNotFound, res.status)

	for _, rating := range []int{0, 6} {
		res = critic.post(path, ReviewRequest{Rating: rating})
		assert.Equal(t, http.StatusBadRequest, res.status, "rating %d", rating)
		assert.Equal(t, "VALIDATION", res.env.Code)
	}

	anon := ts.client(t)
	anon.get("/login")
	res = anon.post(path, ReviewRequest{Rating: 3})
	assert.Equal(t, http.StatusUnauthorized, res.status)

	critic.csrf = "stale"
	res = critic.post(path, ReviewRequest{Rating: 3})
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "INVALID_TOKEN", res.env.Code)
}

func TestEditReview(t *testing.T) {
	ts, owner, critic, pie := reviewFixture(t)

	var review domain.Review
	critic.post(fmt.Sprintf("/add_review/%d", pie.ID), ReviewRequest{Rating: 3, Comment: ptr("Fine")}).decode(t, &review)
	path := fmt.Sprintf("/edit_review/%d", review.ID)

	var same EditReviewResponse
	critic.post(path, ReviewRequest{Rating: 3, Comment: ptr("Fine")}).decode(t, &same)
	assert.False(t, same.Changed)
	assert.True(t, same.Review.ModifiedAt.Equal(review.ModifiedAt))

	var changed EditReviewResponse
	critic.post(path, ReviewRequest{Rating: 5}).decode(t, &changed)
	assert.True(t, changed.Changed)
	assert.Equal(t, 5, changed.Review.Rating)
	assert.Nil(t, changed.Review.Comment)

	res := owner.post(path, ReviewRequest{Rating: 1})
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "FORBIDDEN", res.env.Code)

	assert.Equal(t, http.StatusNotFound, critic.post("/edit_review/9999", ReviewRequest{Rating: 2}).status)

	ts.createUser(t, "stranger")
	stranger := ts.client(t)
	stranger.login("stranger")
	assert.Equal(t, http.StatusForbidden, stranger.post(path, ReviewRequest{Rating: 1}).status)
}

func TestDeleteReview(t *testing.T) {
	_, owner, critic, pie := reviewFixture(t)

	var review domain.Review
	critic.post(fmt.Sprintf("/add_review/%d", pie.ID), ReviewRequest{Rating: 2}).decode(t, &review)
	path := fmt.Sprintf("/delete_review/%d", review.ID)

	assert.Equal(t, http.StatusForbidden, owner.post(path, nil).status)

	res := critic.post(path, nil)
	require.Equal(t, http.StatusOK, res.status, string(res.raw))
	var deleted DeleteReviewResponse
	res.decode(t, &deleted)
	assert.Equal(t, review.ID, deleted.ID)
	assert.Equal(t, pie.ID, deleted.RecipeID)

	assert.Equal(t, http.StatusNotFound, critic.post(path, nil).status)

	// The slot is free again.
	assert.Equal(t, http.StatusCreated, critic.post(fmt.Sprintf("/add_review/%d", pie.ID), ReviewRequest{Rating: 4}).status)
}

func TestRecipeReviews_Paginate(t *testing.T) {
	ts, _, _, pie := reviewFixture(t)

	for _, name := range []string{"a", "b", "c"} {
		ts.createUser(t, name)
		c := ts.client(t)
		c.login(name)
		require.Equal(t, http.StatusCreated, c.post(fmt.Sprintf("/add_review/%d", pie.ID), ReviewRequest{Rating: 4}).status)
	}

	var detail RecipeDetailResponse
	ts.client(t).get(fmt.Sprintf("/recipe/%d/2", pie.ID)).decode(t, &detail)
	assert.Equal(t, 2, detail.Reviews.Page)
	assert.Equal(t, 3, detail.Reviews.Total)
	assert.Len(t, detail.Reviews.Items, 1)
	assert.Equal(t, 3, detail.Rating.Count)
}
