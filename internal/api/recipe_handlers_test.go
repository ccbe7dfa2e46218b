package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larderapp/larder-server/internal/domain"
)

func TestAddRecipe_RequiresLogin(t *testing.T) {
	ts := setupTestServer(t)
	c := ts.client(t)
	c.get("/login")

	res := c.post("/add_recipe", RecipeRequest{Name: "Soup"})
	assert.Equal(t, http.StatusUnauthorized, res.status)
	assert.Equal(t, "UNAUTHENTICATED", res.env.Code)

	res = c.get("/add_recipe")
	assert.Equal(t, http.StatusUnauthorized, res.status)
}

func TestAddRecipe_RequiresAntiForgeryToken(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "chef")
	c := ts.client(t)
	c.login("chef")

	c.csrf = ""
	res := c.post("/add_recipe", RecipeRequest{Name: "Soup"})
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "INVALID_TOKEN", res.env.Code)

	var list domain.Page[*domain.RecipeSummary]
	c.get("/").decode(t, &list)
	assert.Zero(t, list.Total)
}

func TestAddRecipe_FormAndCreate(t *testing.T) {
	ts := setupTestServer(t)
	chef := ts.createUser(t, "chef")
	c := ts.client(t)
	c.login("chef")

	var form RecipeFormResponse
	c.get("/add_recipe").decode(t, &form)
	assert.NotEmpty(t, form.CSRFToken)
	assert.Nil(t, form.Recipe)
	assert.Equal(t, domain.MaxRecipeNameLength, form.Limits.MaxNameLength)
	assert.Equal(t, ts.config.Limits.MaxImageSize, form.Limits.MaxImageBytes)

	res := c.post("/add_recipe", RecipeRequest{
		Name:    "  Apple Pie ",
		Content: "Bake it.",
		Tags:    []string{"Dessert"},
		TagList: "fruit, dessert , ",
	})
	require.Equal(t, http.StatusCreated, res.status, string(res.raw))

	var recipe domain.Recipe
	res.decode(t, &recipe)
	assert.Equal(t, "Apple Pie", recipe.Name)
	assert.Equal(t, chef.ID, recipe.UserID)
	assert.Equal(t, []string{"dessert", "fruit"}, recipe.Tags)
}

func TestAddRecipe_ValidationDetails(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "chef")
	c := ts.client(t)
	c.login("chef")

	res := c.post("/add_recipe", RecipeRequest{Name: "  ", Tags: []string{strings.Repeat("t", domain.MaxTagNameLength+1)}})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION", res.env.Code)
	assert.NotEmpty(t, res.env.Details)
}

func TestRecipeList_Paginates(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "chef")
	c := ts.client(t)
	c.login("chef")
	for _, name := range []string{"Carrot Cake", "apple pie", "Banana Bread"} {
		c.addRecipe(name)
	}

	anon := ts.client(t)

	var first domain.Page[*domain.RecipeSummary]
	anon.get("/").decode(t, &first)
	assert.Equal(t, 3, first.Total)
	assert.Equal(t, 2, first.PageCount)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "apple pie", first.Items[0].Name)
	assert.Equal(t, "Banana Bread", first.Items[1].Name)

	var last domain.Page[*domain.RecipeSummary]
	anon.get("/99").decode(t, &last)
	assert.Equal(t, 2, last.Page)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "Carrot Cake", last.Items[0].Name)

	res := anon.get("/not-a-number")
	assert.Equal(t, http.StatusUnprocessableEntity, res.status)
	assert.Equal(t, "VALIDATION", res.env.Code)
}

func TestGetRecipe_DetailForViewers(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "chef")
	ts.createUser(t, "critic")

	owner := ts.client(t)
	owner.login("chef")
	pie := owner.addRecipe("Apple Pie", "dessert")

	var asOwner RecipeDetailResponse
	owner.get(fmt.Sprintf("/recipe/%d", pie.ID)).decode(t, &asOwner)
	assert.True(t, asOwner.CanEdit)
	assert.False(t, asOwner.CanReview)
	assert.NotEmpty(t, asOwner.CSRFToken)
	require.Len(t, asOwner.Tags, 1)
	assert.Equal(t, 1, asOwner.Tags[0].RecipeCount)
	assert.Nil(t, asOwner.Rating.Average)

	critic := ts.client(t)
	critic.login("critic")
	var asCritic RecipeDetailResponse
	critic.get(fmt.Sprintf("/recipe/%d", pie.ID)).decode(t, &asCritic)
	assert.False(t, asCritic.CanEdit)
	assert.True(t, asCritic.CanReview)

	var asAnon RecipeDetailResponse
	ts.client(t).get(fmt.Sprintf("/recipe/%d", pie.ID)).decode(t, &asAnon)
	assert.False(t, asAnon.CanEdit)
	assert.False(t, asAnon.CanReview)
	assert.Empty(t, asAnon.CSRFToken)

	res := ts.client(t).get("/recipe/9999")
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, "NOT_FOUND", res.env.Code)
}

func TestEditRecipe_Ownership(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "chef")
	ts.createUser(t, "rival")

	owner := ts.client(t)
	owner.login("chef")
	pie := owner.addRecipe("Apple Pie", "dessert", "fruit")
	path := fmt.Sprintf("/edit/%d", pie.ID)

	rival := ts.client(t)
	rival.login("rival")
	res := rival.get(path)
	assert.Equal(t, http.StatusForbidden, res.status)
	res = rival.post(path, RecipeRequest{Name: "Stolen Pie"})
	assert.Equal(t, http.StatusForbidden, res.status)
	assert.Equal(t, "FORBIDDEN", res.env.Code)

	var form RecipeFormResponse
	owner.get(path).decode(t, &form)
	require.NotNil(t, form.Recipe)
	assert.Equal(t, "Apple Pie", form.Recipe.Name)

	res = owner.post(path, RecipeRequest{Name: "Pear Pie", Content: "Bake pears.", Tags: []string{"dessert"}})
	require.Equal(t, http.StatusOK, res.status, string(res.raw))
	var updated domain.Recipe
	res.decode(t, &updated)
	assert.Equal(t, "Pear Pie", updated.Name)
	assert.Equal(t, []string{"dessert"}, updated.Tags)

	// The fruit tag lost its only recipe.
	assert.Equal(t, http.StatusNotFound, owner.get("/tag/fruit").status)

	res = owner.post("/edit/9999", RecipeRequest{Name: "Ghost"})
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestRemoveRecipe(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "chef")
	ts.createUser(t, "critic")

	owner := ts.client(t)
	owner.login("chef")
	pie := owner.addRecipe("Apple Pie", "dessert")

	critic := ts.client(t)
	critic.login("critic")
	critic.get(fmt.Sprintf("/recipe/%d", pie.ID))
	res := critic.post(fmt.Sprintf("/add_review/%d", pie.ID), ReviewRequest{Rating: 4})
	require.Equal(t, http.StatusCreated, res.status, string(res.raw))

	path := fmt.Sprintf("/remove/%d", pie.ID)
	res = critic.post(path, nil)
	assert.Equal(t, http.StatusForbidden, res.status)

	var confirm RecipeFormResponse
	owner.get(path).decode(t, &confirm)
	assert.Equal(t, pie.ID, confirm.Recipe.ID)

	res = owner.post(path, nil)
	require.Equal(t, http.StatusOK, res.status, string(res.raw))
	var deleted DeletedResponse
	res.decode(t, &deleted)
	assert.Equal(t, pie.ID, deleted.ID)

	assert.Equal(t, http.StatusNotFound, owner.get(fmt.Sprintf("/recipe/%d", pie.ID)).status)
	assert.Equal(t, http.StatusNotFound, owner.get("/tag/dessert").status)
	assert.Equal(t, http.StatusNotFound, owner.post(path, nil).status)
}

func TestRecipeImage_UploadServeRemove(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "chef")
	c := ts.client(t)
	c.login("chef")

	png := testPNG(t)
	res := c.post("/add_recipe", RecipeRequest{Name: "Pie", Image: png})
	require.Equal(t, http.StatusCreated, res.status, string(res.raw))
	var pie domain.Recipe
	res.decode(t, &pie)
	assert.Equal(t, "png", pie.ImageType)
	assert.NotEmpty(t, pie.ImageBlurHash)

	img := ts.client(t).get(fmt.Sprintf("/image/%d", pie.ID))
	require.Equal(t, http.StatusOK, img.status)
	assert.Equal(t, "image/png", img.header.Get("Content-Type"))
	assert.Equal(t, imageCacheControl, img.header.Get("Cache-Control"))
	assert.Equal(t, png, img.raw)

	res = c.post(fmt.Sprintf("/edit/%d", pie.ID), RecipeRequest{Name: "Pie", RemoveImage: true})
	require.Equal(t, http.StatusOK, res.status, string(res.raw))

	gone := ts.client(t).get(fmt.Sprintf("/image/%d", pie.ID))
	assert.Equal(t, http.StatusNotFound, gone.status)
	assert.Equal(t, "NOT_FOUND", gone.env.Code)
	assert.False(t, gone.env.Success)

	bad := ts.client(t).get("/image/abc")
	assert.Equal(t, http.StatusBadRequest, bad.status)
}

func TestRecipeImage_RejectsNonImage(t *testing.T) {
	ts := setupTestServer(t)
	ts.createUser(t, "chef")
	c := ts.client(t)
	c.login("chef")

	res := c.post("/add_recipe", RecipeRequest{Name: "Pie", Image: []byte("definitely not an image")})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "VALIDATION", res.env.Code)
}
