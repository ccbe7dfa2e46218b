package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/larderapp/larder-server/internal/domain"
)

// reviewColumns must match the scan order in scanReview.
const reviewColumns = `rv.id, rv.recipe_id, r.name, rv.user_id, u.username,
	rv.rating, rv.comment, rv.created_at, rv.modified_at`

const reviewFrom = ` FROM reviews rv
	JOIN users u ON u.id = rv.user_id
	JOIN recipes r ON r.id = rv.recipe_id`

func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var (
		rv         domain.Review
		comment    sql.NullString
		createdAt  string
		modifiedAt string
	)

	err := scanner.Scan(
		&rv.ID,
		&rv.RecipeID,
		&rv.RecipeName,
		&rv.UserID,
		&rv.Username,
		&rv.Rating,
		&comment,
		&createdAt,
		&modifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if comment.Valid {
		rv.Comment = &comment.String
	}
	if rv.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse review created_at: %w", err)
	}
	if rv.ModifiedAt, err = parseTime(modifiedAt); err != nil {
		return nil, fmt.Errorf("parse review modified_at: %w", err)
	}
	return &rv, nil
}

func (s *Store) queryReviews(ctx context.Context, query string, args ...any) ([]*domain.Review, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

// CreateReview inserts a review and assigns its ID and timestamps.
// Returns store.ErrAlreadyExists if the user already reviewed the recipe.
func (s *Store) CreateReview(ctx context.Context, rv *domain.Review) error {
	now := s.now()
	rv.CreatedAt = now
	rv.ModifiedAt = now

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO reviews (recipe_id, user_id, rating, comment, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rv.RecipeID,
		rv.UserID,
		rv.Rating,
		nullString(rv.Comment),
		formatTime(rv.CreatedAt),
		formatTime(rv.ModifiedAt),
	)
	if err != nil {
		return mapWriteError(err)
	}

	rv.ID, err = res.LastInsertId()
	return err
}

// GetReviewByID returns the review or nil when absent.
func (s *Store) GetReviewByID(ctx context.Context, id int64) (*domain.Review, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+reviewColumns+reviewFrom+` WHERE rv.id = ?`, id)
	return absent(scanReview(row))
}

// GetUserReviewForRecipe returns the user's review of the recipe or nil.
func (s *Store) GetUserReviewForRecipe(ctx context.Context, userID, recipeID int64) (*domain.Review, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+reviewColumns+reviewFrom+` WHERE rv.user_id = ? AND rv.recipe_id = ?`,
		userID, recipeID)
	return absent(scanReview(row))
}

// ListReviewsForRecipePaginated returns a page of reviews, newest first.
func (s *Store) ListReviewsForRecipePaginated(ctx context.Context, recipeID int64, page, pageSize int) ([]*domain.Review, error) {
	offset, limit := domain.Window(page, pageSize)
	return s.queryReviews(ctx,
		`SELECT `+reviewColumns+reviewFrom+`
		WHERE rv.recipe_id = ?
		ORDER BY rv.created_at DESC, rv.id DESC
		LIMIT ? OFFSET ?`,
		recipeID, limit, offset)
}

// CountReviewsForRecipe returns the number of reviews of a recipe.
func (s *Store) CountReviewsForRecipe(ctx context.Context, recipeID int64) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM reviews WHERE recipe_id = ?`, recipeID)
}

// ListReviewsByUser returns every review written by userID, newest first.
func (s *Store) ListReviewsByUser(ctx context.Context, userID int64) ([]*domain.Review, error) {
	return s.queryReviews(ctx,
		`SELECT `+reviewColumns+reviewFrom+`
		WHERE rv.user_id = ?
		ORDER BY rv.created_at DESC, rv.id DESC`,
		userID)
}

// GetRatingSummary returns the mean rating and review count of a recipe.
// Average is nil when there are no reviews.
func (s *Store) GetRatingSummary(ctx context.Context, recipeID int64) (domain.RatingSummary, error) {
	var (
		summary domain.RatingSummary
		avg     sql.NullFloat64
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT AVG(rating), COUNT(*) FROM reviews WHERE recipe_id = ?`, recipeID).
		Scan(&avg, &summary.Count)
	if err != nil {
		return summary, err
	}
	if avg.Valid {
		summary.Average = &avg.Float64
	}
	return summary, nil
}

// UpdateReview writes rating and comment and refreshes ModifiedAt.
// Returns store.ErrNotFound if the review does not exist.
func (s *Store) UpdateReview(ctx context.Context, rv *domain.Review) error {
	rv.ModifiedAt = s.now()

	res, err := s.q.ExecContext(ctx, `
		UPDATE reviews SET rating = ?, comment = ?, modified_at = ?
		WHERE id = ?`,
		rv.Rating,
		nullString(rv.Comment),
		formatTime(rv.ModifiedAt),
		rv.ID,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return requireAffected(res)
}

// DeleteReview removes a review. Returns store.ErrNotFound if it does not exist.
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteReviewsForRecipe removes every review of a recipe and returns how many went.
func (s *Store) DeleteReviewsForRecipe(ctx context.Context, recipeID int64) (int, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM reviews WHERE recipe_id = ?`, recipeID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
