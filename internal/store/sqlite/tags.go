package sqlite

import (
	"context"
	"fmt"

	"github.com/larderapp/larder-server/internal/domain"
)

// tagColumns must match the scan order in scanTag.
const tagColumns = `t.id, t.name,
	(SELECT COUNT(*) FROM recipe_tags rt WHERE rt.tag_id = t.id)`

func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	if err := scanner.Scan(&t.ID, &t.Name, &t.RecipeCount); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) queryTags(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// EnsureTag finds a tag by name or creates it.
// Returns (tag, created, error) where created is true if a new tag was made.
func (s *Store) EnsureTag(ctx context.Context, name string) (*domain.Tag, bool, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return nil, false, mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	t, err := s.GetTagByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if t == nil {
		return nil, false, fmt.Errorf("tag %q vanished after insert", name)
	}
	return t, n > 0, nil
}

// GetTagByName returns the tag or nil when absent.
func (s *Store) GetTagByName(ctx context.Context, name string) (*domain.Tag, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags t WHERE t.name = ?`, name)
	return absent(scanTag(row))
}

// ListTags returns all tags ordered by name.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	return s.queryTags(ctx, `SELECT `+tagColumns+` FROM tags t ORDER BY t.name ASC`)
}

// ListTagsPaginated returns one page of tags ordered by name.
func (s *Store) ListTagsPaginated(ctx context.Context, page, pageSize int) ([]*domain.Tag, error) {
	offset, limit := domain.Window(page, pageSize)
	return s.queryTags(ctx,
		`SELECT `+tagColumns+` FROM tags t ORDER BY t.name ASC LIMIT ? OFFSET ?`,
		limit, offset)
}

// CountTags returns the number of tags.
func (s *Store) CountTags(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM tags`)
}

// EnsureRecipeTag associates a tag with a recipe. An existing association is not an error.
func (s *Store) EnsureRecipeTag(ctx context.Context, recipeID, tagID int64) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)
		ON CONFLICT(recipe_id, tag_id) DO NOTHING`,
		recipeID, tagID)
	if err != nil {
		return false, mapWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RemoveRecipeTag drops one association. Missing associations are ignored.
func (s *Store) RemoveRecipeTag(ctx context.Context, recipeID, tagID int64) error {
	_, err := s.q.ExecContext(ctx,
		`DELETE FROM recipe_tags WHERE recipe_id = ? AND tag_id = ?`, recipeID, tagID)
	return err
}

// GetTagsForRecipe returns the recipe's tags ordered by name.
func (s *Store) GetTagsForRecipe(ctx context.Context, recipeID int64) ([]*domain.Tag, error) {
	return s.queryTags(ctx, `
		SELECT `+tagColumns+`
		FROM tags t JOIN recipe_tags link ON link.tag_id = t.id
		WHERE link.recipe_id = ?
		ORDER BY t.name ASC`,
		recipeID)
}

func (s *Store) tagNamesForRecipe(ctx context.Context, recipeID int64) ([]string, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT t.name FROM tags t JOIN recipe_tags rt ON rt.tag_id = t.id
		WHERE rt.recipe_id = ?
		ORDER BY t.name ASC`,
		recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// RemoveAllRecipeTags drops every association of the recipe and returns the
// IDs of the tags it used, so the caller can clear orphans.
func (s *Store) RemoveAllRecipeTags(ctx context.Context, recipeID int64) ([]int64, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT tag_id FROM recipe_tags WHERE recipe_id = ? ORDER BY tag_id`, recipeID)
	if err != nil {
		return nil, err
	}

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := s.q.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = ?`, recipeID); err != nil {
		return nil, fmt.Errorf("delete recipe_tags: %w", err)
	}
	return ids, nil
}

// DeleteOrphanTags deletes the given tags that no recipe references any more.
func (s *Store) DeleteOrphanTags(ctx context.Context, tagIDs []int64) (int, error) {
	if len(tagIDs) == 0 {
		return 0, nil
	}

	ids, err := jsonArray(tagIDs)
	if err != nil {
		return 0, err
	}

	res, err := s.q.ExecContext(ctx, `
		DELETE FROM tags
		WHERE id IN (SELECT value FROM json_each(?))
		AND NOT EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.tag_id = tags.id)`,
		ids)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
