// Package main prints a consistency report for a Larder data directory.
//
// Usage:
//
//	LARDER_DATA=~/.larder go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/larderapp/larder-server/internal/config"
	"github.com/larderapp/larder-server/internal/search"
	"github.com/larderapp/larder-server/internal/store/sqlite"
)

func main() {
	base := os.Getenv("LARDER_DATA")
	if base == "" {
		base = filepath.Join(os.ExpandEnv("$HOME"), ".larder")
	}
	cfg := config.Defaults(base)

	s, err := sqlite.Open(cfg.Metadata.DatabasePath(), nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	users, err := s.CountUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to count users: %v", err)
	}

	recipes, err := s.ListAllRecipes(ctx)
	if err != nil {
		log.Fatalf("Failed to list recipes: %v", err)
	}

	untagged, withImage := 0, 0
	for _, r := range recipes {
		if len(r.Tags) == 0 {
			untagged++
		}
		if r.ImageType != "" {
			withImage++
		}
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}

	orphans := 0
	for _, t := range tags {
		if t.RecipeCount == 0 {
			orphans++
			// Show first few orphans
			if orphans <= 5 {
				fmt.Printf("Orphaned tag: %q (id %d)\n", t.Name, t.ID)
			}
		}
	}
	if orphans > 0 {
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Users: %d\n", users)
	fmt.Printf("Recipes: %d\n", len(recipes))
	fmt.Printf("Recipes without tags: %d\n", untagged)
	fmt.Printf("Recipes with images: %d\n", withImage)
	fmt.Printf("Tags: %d\n", len(tags))
	fmt.Printf("Orphaned tags: %d\n", orphans)
	if len(recipes) > 0 {
		links := 0
		for _, t := range tags {
			links += t.RecipeCount
		}
		fmt.Printf("Average tags per recipe: %.1f\n", float64(links)/float64(len(recipes)))
	}

	index, err := search.NewSearchIndex(search.Options{DataPath: cfg.Metadata.SearchIndexPath()})
	if err != nil {
		fmt.Printf("Search index: unavailable (%v)\n", err)
		return
	}
	defer index.Close()

	docs, err := index.DocumentCount()
	if err != nil {
		fmt.Printf("Search index: unreadable (%v)\n", err)
		return
	}
	fmt.Printf("Indexed documents: %d\n", docs)
	if int(docs) != len(recipes) {
		fmt.Println("Search index is out of step with the database; remove the search directory and restart the server to rebuild it.")
	}
}
