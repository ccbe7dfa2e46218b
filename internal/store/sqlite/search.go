package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/larderapp/larder-server/internal/domain"
	"github.com/larderapp/larder-server/internal/store"
	"github.com/larderapp/larder-server/internal/util"
)

// summaryColumns must match the scan order in scanSummary.
const summaryColumns = `r.id, r.name, r.user_id, u.username, r.image_type IS NOT NULL,
	r.created_at, r.modified_at,
	(SELECT AVG(rv.rating) FROM reviews rv WHERE rv.recipe_id = r.id),
	(SELECT COUNT(*) FROM reviews rv WHERE rv.recipe_id = r.id)`

const summaryFrom = ` FROM recipes r JOIN users u ON u.id = r.user_id`

var emptyFilter = store.SearchFilter{}

func scanSummary(scanner interface{ Scan(dest ...any) error }) (*domain.RecipeSummary, error) {
	var (
		r          domain.RecipeSummary
		createdAt  string
		modifiedAt string
		avg        sql.NullFloat64
	)

	err := scanner.Scan(
		&r.ID,
		&r.Name,
		&r.UserID,
		&r.Username,
		&r.HasImage,
		&createdAt,
		&modifiedAt,
		&avg,
		&r.ReviewCount,
	)
	if err != nil {
		return nil, err
	}

	if avg.Valid {
		r.AverageRating = &avg.Float64
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse recipe created_at: %w", err)
	}
	if r.ModifiedAt, err = parseTime(modifiedAt); err != nil {
		return nil, fmt.Errorf("parse recipe modified_at: %w", err)
	}
	return &r, nil
}

func scanSummaries(rows *sql.Rows) ([]*domain.RecipeSummary, error) {
	out := []*domain.RecipeSummary{}
	for rows.Next() {
		r, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// orderByName sorts by folded name so ordering agrees with text matching.
const orderByName = ` ORDER BY fold(r.name) ASC, r.id ASC`

// searchPredicate builds the WHERE clause shared by SearchRecipes and
// CountSearchRecipes. Only fixed SQL fragments are concatenated; every user
// value is a bound argument and the tag set binds as one JSON array.
func searchPredicate(f store.SearchFilter) (string, []any, error) {
	if f.IsEmpty() {
		return "", nil, nil
	}

	var (
		clauses []string
		args    []any
	)

	if f.Text != "" {
		needle := util.Fold(f.Text)
		clauses = append(clauses, `(instr(fold(r.name), ?) > 0 OR instr(fold(r.content), ?) > 0)`)
		args = append(args, needle, needle)
	}

	if len(f.Tags) > 0 {
		tags, err := jsonArray(f.Tags)
		if err != nil {
			return "", nil, err
		}
		// EXISTS keeps a recipe matching several tags to a single row.
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.name IN (SELECT value FROM json_each(?)))`)
		args = append(args, tags)
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// SearchRecipes returns one page of recipes matching the filter.
// Text matches after Unicode case folding as a substring of name or content; tags
// match when the recipe carries at least one of them.
func (s *Store) SearchRecipes(ctx context.Context, f store.SearchFilter, page, pageSize int) ([]*domain.RecipeSummary, error) {
	where, args, err := searchPredicate(f)
	if err != nil {
		return nil, err
	}

	offset, limit := domain.Window(page, pageSize)
	args = append(args, limit, offset)

	rows, err := s.q.QueryContext(ctx,
		`SELECT `+summaryColumns+summaryFrom+where+
			orderByName+` LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// CountSearchRecipes counts recipes matching the filter.
func (s *Store) CountSearchRecipes(ctx context.Context, f store.SearchFilter) (int, error) {
	where, args, err := searchPredicate(f)
	if err != nil {
		return 0, err
	}
	n, err := s.count(ctx, `SELECT COUNT(*) FROM recipes r`+where, args...)
	if err != nil {
		return 0, fmt.Errorf("count search recipes: %w", err)
	}
	return n, nil
}
