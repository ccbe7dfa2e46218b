package sqlite

import (
	"context"
	"fmt"

	"github.com/larderapp/larder-server/internal/domain"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, username, password_hash, created_at`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
	)
	if err := scanner.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse user created_at: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a user and assigns its ID.
// Returns store.ErrAlreadyExists when the username is taken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, created_at)
		VALUES (?, ?, ?)`,
		u.Username,
		u.PasswordHash,
		formatTime(u.CreatedAt),
	)
	if err != nil {
		return mapWriteError(err)
	}

	u.ID, err = res.LastInsertId()
	return err
}

// GetUserByID returns the user or nil when absent.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return absent(scanUser(row))
}

// GetUserByUsername returns the user or nil when absent. The match is exact.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return absent(scanUser(row))
}

// ListUsersPaginated returns users ordered by username.
func (s *Store) ListUsersPaginated(ctx context.Context, page, pageSize int) ([]*domain.User, error) {
	offset, limit := domain.Window(page, pageSize)

	rows, err := s.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username ASC, id ASC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the number of registered users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users`)
}
