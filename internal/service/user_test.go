package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/larderapp/larder-server/internal/errors"
)

func TestUserService_Profile(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	chef := env.register(t, "chef")
	critic := env.register(t, "critic")
	pie := env.addRecipe(t, chef, "Pie")
	env.addRecipe(t, chef, "Cake")
	_, err := env.reviews.Add(ctx, critic.ID, pie.ID, ReviewInput{Rating: 5})
	require.NoError(t, err)

	profile, err := env.users.Profile(ctx, chef.ID)
	require.NoError(t, err)
	assert.Equal(t, "chef", profile.User.Username)
	assert.Equal(t, []string{"Cake", "Pie"}, summaryNames(profile.Recipes))
	assert.Empty(t, profile.Reviews)

	criticProfile, err := env.users.Profile(ctx, critic.ID)
	require.NoError(t, err)
	assert.Empty(t, criticProfile.Recipes)
	require.Len(t, criticProfile.Reviews, 1)
	assert.Equal(t, "Pie", criticProfile.Reviews[0].RecipeName)

	_, err = env.users.Profile(ctx, 999)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserService_List(t *testing.T) {
	env := setupTest(t)
	for i := range 3 {
		env.register(t, fmt.Sprintf("user%d", i))
	}

	page, err := env.users.List(context.Background(), 9, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "user2", page.Items[0].Username)
}
