// Package main provides a tool to seed the database with sample recipes.
//
// It registers a handful of cooks, gives each of them tagged recipes and has
// the others review them, going through the services so tags, ratings and the
// search index stay consistent.
//
// Usage:
//
//	go run ./cmd/seed --data ~/.larder
//	go run ./cmd/seed --data ~/.larder --users 8 --recipes 5
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/larderapp/larder-server/internal/config"
	"github.com/larderapp/larder-server/internal/domain"
	domainerrors "github.com/larderapp/larder-server/internal/errors"
	"github.com/larderapp/larder-server/internal/search"
	"github.com/larderapp/larder-server/internal/service"
	"github.com/larderapp/larder-server/internal/store/sqlite"
)

const seedPassword = "password123"

var (
	dataDir      = flag.String("data", "", "Data directory holding larder.db and the search index (default ~/.larder)")
	userCount    = flag.Int("users", 5, "Number of cooks to create")
	recipeCount  = flag.Int("recipes", 4, "Recipes per cook")
	reviewChance = flag.Float64("review-chance", 0.6, "Chance that a cook reviews another cook's recipe")
	seed         = flag.Int64("seed", 0, "Random seed (default: current time)")
)

var cooks = []string{"ada", "basil", "clementine", "dill", "elderflower", "fennel", "ginger", "hazel", "juniper", "kale"}

var dishes = []struct {
	name string
	tags []string
}{
	{"Apple Pie", []string{"dessert", "fruit", "baking"}},
	{"Banana Bread", []string{"baking", "fruit"}},
	{"Cheese Toast", []string{"quick", "snack"}},
	{"Dal Tadka", []string{"vegetarian", "indian"}},
	{"Egg Fried Rice", []string{"quick", "chinese"}},
	{"French Onion Soup", []string{"soup", "french"}},
	{"Gazpacho", []string{"soup", "vegan", "summer"}},
	{"Hummus", []string{"vegan", "snack"}},
	{"Irish Stew", []string{"winter", "meat"}},
	{"Jambalaya", []string{"spicy", "rice"}},
	{"Key Lime Pie", []string{"dessert", "baking"}},
	{"Lentil Soup", []string{"soup", "vegetarian", "winter"}},
	{"Mushroom Risotto", []string{"vegetarian", "rice", "italian"}},
	{"Nasi Goreng", []string{"rice", "spicy"}},
	{"Oatmeal Cookies", []string{"baking", "dessert"}},
	{"Pad Thai", []string{"thai", "quick"}},
}

var comments = []string{
	"Made this twice already.",
	"A bit too salty for me.",
	"Kids loved it.",
	"Doubled the garlic, no regrets.",
	"Took longer than expected but worth it.",
	"",
}

func main() {
	flag.Parse()

	base := *dataDir
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		base = filepath.Join(home, ".larder")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	cfg := config.Defaults(base)
	fmt.Printf("Opening database at: %s\n", cfg.Metadata.DatabasePath())

	s, err := sqlite.Open(cfg.Metadata.DatabasePath(), nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	index, err := search.NewSearchIndex(search.Options{DataPath: cfg.Metadata.SearchIndexPath()})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	searchSvc := service.NewSearchService(s, index, cfg.Limits.PageSize, nil)
	authSvc := service.NewAuthService(s, nil)
	recipeSvc := service.NewRecipeService(s, searchSvc, cfg.Limits, nil)
	reviewSvc := service.NewReviewService(s, nil)

	ctx := context.Background()
	n := *seed
	if n == 0 {
		n = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(n))

	users := createCooks(ctx, authSvc, s, min(*userCount, len(cooks)))
	if len(users) == 0 {
		log.Fatal("No cooks available, nothing to seed")
	}

	var recipes []*domain.Recipe
	for _, user := range users {
		fmt.Printf("\nSeeding recipes for %s (%d)\n", user.Username, user.ID)
		for range *recipeCount {
			dish := dishes[rng.Intn(len(dishes))]
			r, err := recipeSvc.Create(ctx, user.ID, service.RecipeInput{
				Name:    dish.name,
				Content: fmt.Sprintf("%s the way %s makes it.\n\nGather the ingredients, cook with care, serve warm.", dish.name, user.Username),
				Tags:    dish.tags,
			})
			if err != nil {
				log.Printf("Failed to create %q: %v", dish.name, err)
				continue
			}
			fmt.Printf("  Added %s %v\n", r.Name, r.Tags)
			recipes = append(recipes, r)
		}
	}

	reviews := 0
	for _, r := range recipes {
		for _, user := range users {
			if user.ID == r.UserID || rng.Float64() > *reviewChance {
				continue
			}

			in := service.ReviewInput{Rating: 1 + rng.Intn(5)}
			if c := comments[rng.Intn(len(comments))]; c != "" {
				in.Comment = &c
			}

			_, err := reviewSvc.Add(ctx, user.ID, r.ID, in)
			switch domainerrors.CodeOf(err) {
			case domainerrors.CodeDuplicateReview, domainerrors.CodeSelfReview:
				continue
			}
			if err != nil {
				log.Printf("Failed to review %q as %s: %v", r.Name, user.Username, err)
				continue
			}
			reviews++
		}
	}

	fmt.Printf("\nSeeding complete: %d cooks, %d recipes, %d reviews (seed %d)\n", len(users), len(recipes), reviews, n)
	fmt.Printf("Every cook logs in with password %q\n", seedPassword)
}

// createCooks registers the first n cooks, reusing any that already exist.
func createCooks(ctx context.Context, authSvc *service.AuthService, s *sqlite.Store, n int) []*domain.User {
	users := make([]*domain.User, 0, n)
	for _, name := range cooks[:n] {
		u, err := authSvc.Register(ctx, service.RegisterRequest{
			Username:        name,
			Password:        seedPassword,
			ConfirmPassword: seedPassword,
		})
		if err != nil && domainerrors.CodeOf(err) == domainerrors.CodeAlreadyExists {
			u, err = s.GetUserByUsername(ctx, name)
		}
		if err != nil || u == nil {
			log.Printf("Failed to create cook %s: %v", name, err)
			continue
		}
		fmt.Printf("Cook ready: %s\n", u.Username)
		users = append(users, u)
	}
	return users
}
