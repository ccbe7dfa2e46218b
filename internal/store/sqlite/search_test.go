package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/larderapp/larder-server/internal/domain"
	"github.com/larderapp/larder-server/internal/store"
)

func names(rs []*domain.RecipeSummary) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name
	}
	return out
}

func equalNames(got []*domain.RecipeSummary, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].Name != want[i] {
			return false
		}
	}
	return true
}

func seedSearch(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	owner := makeTestUser(t, s, "chef")

	makeTestRecipe(t, s, owner, "Apple Pie", "dessert", "fruit")
	makeTestRecipe(t, s, owner, "Banana Bread", "fruit")
	makeTestRecipe(t, s, owner, "Cheese Toast")
	return s
}

func TestSearchRecipes(t *testing.T) {
	s := seedSearch(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter store.SearchFilter
		want   []string
	}{
		{"empty filter returns everything", store.SearchFilter{}, []string{"Apple Pie", "Banana Bread", "Cheese Toast"}},
		{"single tag", store.SearchFilter{Tags: []string{"dessert"}}, []string{"Apple Pie"}},
		{"tags are OR and distinct", store.SearchFilter{Tags: []string{"dessert", "fruit"}}, []string{"Apple Pie", "Banana Bread"}},
		{"unknown tag", store.SearchFilter{Tags: []string{"savory"}}, []string{}},
		{"text is case-insensitive", store.SearchFilter{Text: "BREAD"}, []string{"Banana Bread"}},
		{"text matches content", store.SearchFilter{Text: "toast instructions"}, []string{"Cheese Toast"}},
		{"text AND tags", store.SearchFilter{Text: "pie", Tags: []string{"fruit"}}, []string{"Apple Pie"}},
		{"text AND tags with no overlap", store.SearchFilter{Text: "cheese", Tags: []string{"fruit"}}, []string{}},
		{"wildcards are literal", store.SearchFilter{Text: "%"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchRecipes(ctx, tt.filter, 1, 10)
			if err != nil {
				t.Fatalf("SearchRecipes: %v", err)
			}
			if !equalNames(got, tt.want...) {
				t.Errorf("got %v, want %v", names(got), tt.want)
			}

			n, err := s.CountSearchRecipes(ctx, tt.filter)
			if err != nil {
				t.Fatalf("CountSearchRecipes: %v", err)
			}
			if n != len(tt.want) {
				t.Errorf("count: got %d, want %d", n, len(tt.want))
			}
		})
	}
}

func TestSearchRecipes_UnicodeCaseFolding(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := makeTestUser(t, s, "chef")
	makeTestRecipe(t, s, owner, "Äidin Omenapiirakka")
	makeTestRecipe(t, s, owner, "Crème Brûlée")
	makeTestRecipe(t, s, owner, "Straße Pretzel")

	tests := []struct {
		text string
		want []string
	}{
		{"äidin", []string{"Äidin Omenapiirakka"}},
		{"ÄIDIN", []string{"Äidin Omenapiirakka"}},
		{"OMENAPIIRAKKA INSTRUCTIONS", []string{"Äidin Omenapiirakka"}},
		{"crème", []string{"Crème Brûlée"}},
		{"CRÈME BRÛLÉE", []string{"Crème Brûlée"}},
		{"strasse", []string{"Straße Pretzel"}},
		{"%", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := s.SearchRecipes(ctx, store.SearchFilter{Text: tt.text}, 1, 10)
			if err != nil {
				t.Fatalf("SearchRecipes: %v", err)
			}
			if !equalNames(got, tt.want...) {
				t.Errorf("got %v, want %v", names(got), tt.want)
			}
			n, err := s.CountSearchRecipes(ctx, store.SearchFilter{Text: tt.text})
			if err != nil || n != len(tt.want) {
				t.Errorf("count: got (%d, %v), want %d", n, err, len(tt.want))
			}
		})
	}
}

func TestSearchRecipes_OrdersByFoldedName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := makeTestUser(t, s, "chef")
	// Byte order puts "Ä" before "ä"; folding must not.
	makeTestRecipe(t, s, owner, "Äidin Piirakka")
	makeTestRecipe(t, s, owner, "äidin omenat")
	makeTestRecipe(t, s, owner, "Zucchini")

	got, err := s.SearchRecipes(ctx, store.SearchFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("SearchRecipes: %v", err)
	}
	if !equalNames(got, "Zucchini", "äidin omenat", "Äidin Piirakka") {
		t.Errorf("got %v", names(got))
	}

	mine, err := s.ListRecipesByUser(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListRecipesByUser: %v", err)
	}
	if !equalNames(mine, "Zucchini", "äidin omenat", "Äidin Piirakka") {
		t.Errorf("by user: got %v", names(mine))
	}
}

func TestSearchRecipes_Aggregates(t *testing.T) {
	s := seedSearch(t)
	ctx := context.Background()

	pie, err := s.SearchRecipes(ctx, store.SearchFilter{Text: "apple"}, 1, 10)
	if err != nil || len(pie) != 1 {
		t.Fatalf("SearchRecipes: (%v, %v)", pie, err)
	}
	if pie[0].AverageRating != nil || pie[0].ReviewCount != 0 {
		t.Errorf("no reviews: got avg=%v count=%d", pie[0].AverageRating, pie[0].ReviewCount)
	}

	for i, rating := range []int{5, 2} {
		critic := makeTestUser(t, s, fmt.Sprintf("critic%d", i))
		if err := s.CreateReview(ctx, &domain.Review{RecipeID: pie[0].ID, UserID: critic.ID, Rating: rating}); err != nil {
			t.Fatalf("CreateReview: %v", err)
		}
	}

	pie, _ = s.SearchRecipes(ctx, store.SearchFilter{Tags: []string{"dessert", "fruit"}}, 1, 10)
	if pie[0].ReviewCount != 2 || pie[0].AverageRating == nil || *pie[0].AverageRating != 3.5 {
		t.Errorf("aggregates: count=%d avg=%v", pie[0].ReviewCount, pie[0].AverageRating)
	}
}

func TestSearchRecipes_PaginationAndTies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := makeTestUser(t, s, "chef")

	var ids []int64
	for range 5 {
		ids = append(ids, makeTestRecipe(t, s, owner, "Same Name", "dup").ID)
	}

	page2, err := s.SearchRecipes(ctx, store.SearchFilter{Tags: []string{"dup"}}, 2, 2)
	if err != nil {
		t.Fatalf("SearchRecipes: %v", err)
	}
	if len(page2) != 2 || page2[0].ID != ids[2] || page2[1].ID != ids[3] {
		t.Errorf("ties should break on id: got %+v", page2)
	}

	last, _ := s.SearchRecipes(ctx, store.SearchFilter{Tags: []string{"dup"}}, 3, 2)
	if len(last) != 1 {
		t.Errorf("last page: got %d rows, want 1", len(last))
	}

	beyond, _ := s.SearchRecipes(ctx, store.SearchFilter{}, 9, 2)
	if len(beyond) != 0 {
		t.Errorf("beyond range: got %d rows", len(beyond))
	}

	// Non-positive page and size never produce a negative offset.
	clamped, err := s.SearchRecipes(ctx, store.SearchFilter{}, -3, 0)
	if err != nil || len(clamped) != 1 || clamped[0].ID != ids[0] {
		t.Errorf("clamped window: (%v, %v)", clamped, err)
	}
}

func TestSearchPredicate_BindsTagsAsOneArgument(t *testing.T) {
	where, args, err := searchPredicate(store.SearchFilter{Text: "a", Tags: []string{"x", "y", "z"}})
	if err != nil {
		t.Fatalf("searchPredicate: %v", err)
	}
	if len(args) != 3 {
		t.Fatalf("args: got %d, want 3 (two folded needles and one tag array)", len(args))
	}
	if args[2] != `["x","y","z"]` {
		t.Errorf("tag argument: got %v", args[2])
	}
	if where == "" {
		t.Error("expected a WHERE clause")
	}

	where, args, _ = searchPredicate(store.SearchFilter{})
	if where != "" || args != nil {
		t.Errorf("empty filter: got %q %v", where, args)
	}
}
