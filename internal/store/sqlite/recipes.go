package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/larderapp/larder-server/internal/domain"
)

// recipeColumns must match the scan order in scanRecipe. Image bytes are
// loaded separately by GetRecipeImage.
const recipeColumns = `r.id, r.name, r.content, r.image_type, r.image_blurhash,
	r.user_id, u.username, r.created_at, r.modified_at`

const recipeFrom = ` FROM recipes r JOIN users u ON u.id = r.user_id`

func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var (
		r          domain.Recipe
		imageType  sql.NullString
		blurHash   sql.NullString
		createdAt  string
		modifiedAt string
	)

	err := scanner.Scan(
		&r.ID,
		&r.Name,
		&r.Content,
		&imageType,
		&blurHash,
		&r.UserID,
		&r.Username,
		&createdAt,
		&modifiedAt,
	)
	if err != nil {
		return nil, err
	}

	r.ImageType = imageType.String
	r.ImageBlurHash = blurHash.String

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse recipe created_at: %w", err)
	}
	if r.ModifiedAt, err = parseTime(modifiedAt); err != nil {
		return nil, fmt.Errorf("parse recipe modified_at: %w", err)
	}
	return &r, nil
}

// CreateRecipe inserts the recipe and assigns its ID and timestamps.
// Image data, when present, is written in the same statement.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	now := s.now()
	r.CreatedAt = now
	r.ModifiedAt = now

	var image any
	if len(r.Image) > 0 {
		image = r.Image
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO recipes (name, content, image, image_type, image_blurhash, user_id, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Name,
		r.Content,
		image,
		nullEmpty(r.ImageType),
		nullEmpty(r.ImageBlurHash),
		r.UserID,
		formatTime(r.CreatedAt),
		formatTime(r.ModifiedAt),
	)
	if err != nil {
		return mapWriteError(err)
	}

	r.ID, err = res.LastInsertId()
	return err
}

// GetRecipeByID returns the recipe with its tag names, or nil when absent.
func (s *Store) GetRecipeByID(ctx context.Context, id int64) (*domain.Recipe, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+recipeColumns+recipeFrom+` WHERE r.id = ?`, id)

	r, err := absent(scanRecipe(row))
	if err != nil || r == nil {
		return r, err
	}

	if r.Tags, err = s.tagNamesForRecipe(ctx, r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRecipeImage returns the stored image and its format tag.
// data is nil when the recipe does not exist or has no image.
func (s *Store) GetRecipeImage(ctx context.Context, id int64) ([]byte, string, error) {
	var (
		data   []byte
		format sql.NullString
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT image, image_type FROM recipes WHERE id = ?`, id).Scan(&data, &format)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 || !format.Valid {
		return nil, "", nil
	}
	return data, format.String, nil
}

// ListRecipesPaginated returns one page of all recipes ordered by name.
func (s *Store) ListRecipesPaginated(ctx context.Context, page, pageSize int) ([]*domain.RecipeSummary, error) {
	return s.SearchRecipes(ctx, emptyFilter, page, pageSize)
}

// CountRecipes returns the total number of recipes.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM recipes`)
}

// ListRecipesByUser returns every recipe owned by userID ordered by name.
func (s *Store) ListRecipesByUser(ctx context.Context, userID int64) ([]*domain.RecipeSummary, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+summaryColumns+summaryFrom+` WHERE r.user_id = ?`+orderByName,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSummaries(rows)
}

// ListAllRecipes loads every recipe with its tags.
func (s *Store) ListAllRecipes(ctx context.Context) ([]*domain.Recipe, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+recipeColumns+recipeFrom+` ORDER BY r.id ASC`)
	if err != nil {
		return nil, err
	}

	var (
		recipes []*domain.Recipe
		byID    = make(map[int64]*domain.Recipe)
	)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		r.Tags = []string{}
		recipes = append(recipes, r)
		byID[r.ID] = r
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tagRows, err := s.q.QueryContext(ctx, `
		SELECT rt.recipe_id, t.name
		FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
		ORDER BY t.name ASC`)
	if err != nil {
		return nil, err
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var (
			recipeID int64
			name     string
		)
		if err := tagRows.Scan(&recipeID, &name); err != nil {
			return nil, err
		}
		if r, ok := byID[recipeID]; ok {
			r.Tags = append(r.Tags, name)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, err
	}

	if recipes == nil {
		recipes = []*domain.Recipe{}
	}
	return recipes, nil
}

// UpdateRecipe writes name and content and refreshes ModifiedAt.
// Returns store.ErrNotFound if the recipe does not exist.
func (s *Store) UpdateRecipe(ctx context.Context, r *domain.Recipe) error {
	r.ModifiedAt = s.now()

	res, err := s.q.ExecContext(ctx, `
		UPDATE recipes SET name = ?, content = ?, modified_at = ?
		WHERE id = ?`,
		r.Name,
		r.Content,
		formatTime(r.ModifiedAt),
		r.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return requireAffected(res)
}

// UpdateRecipeImage replaces the image. Passing nil data removes it.
func (s *Store) UpdateRecipeImage(ctx context.Context, id int64, data []byte, format, blurHash string) error {
	var image any
	if len(data) > 0 {
		image = data
	} else {
		format, blurHash = "", ""
	}

	res, err := s.q.ExecContext(ctx, `
		UPDATE recipes SET image = ?, image_type = ?, image_blurhash = ?, modified_at = ?
		WHERE id = ?`,
		image,
		nullEmpty(format),
		nullEmpty(blurHash),
		formatTime(s.now()),
		id,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return requireAffected(res)
}

// DeleteRecipe removes the recipe row only.
// Returns store.ErrInUse while reviews or tag associations still reference it.
func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return mapWriteError(err)
	}
	return requireAffected(res)
}
