package repository

import (
	"context"
	"fmt"

	"github.com/teamtask/taskboard/internal/models"
)

// CreateUser inserts a new user row. A duplicate email or username surfaces
// as apperr.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, username, email, password_hash, phone_number, role)
			  VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Username, user.Email, user.PasswordHash,
		user.PhoneNumber, user.Role); err != nil {
		return translateError(op, err)
	}
	return nil
}

// GetUserByEmail returns a user by email address.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, password_hash, phone_number, role, created_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, email)
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.PasswordHash,
		&u.PhoneNumber, &u.Role, &u.CreatedAt); err != nil {
		return nil, translateError(op, err)
	}
	return u, nil
}

// GetUser returns a user by UID.
func (s *Storage) GetUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, password_hash, phone_number, role, created_at
			  FROM users
			  WHERE uid = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, uid)
	if err := row.Scan(&u.UID, &u.Username, &u.Email, &u.PasswordHash,
		&u.PhoneNumber, &u.Role, &u.CreatedAt); err != nil {
		return nil, translateError(op, err)
	}
	return u, nil
}

// ExistsUserWithEmail reports whether a user with the given email exists.
func (s *Storage) ExistsUserWithEmail(ctx context.Context, email string) (bool, error) {
	const op = "storage.ExistsUserWithEmail"
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ExistsUserWithUsername reports whether a user with the given username exists.
func (s *Storage) ExistsUserWithUsername(ctx context.Context, username string) (bool, error) {
	const op = "storage.ExistsUserWithUsername"
	var exists bool
	err := s.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, username, email, password_hash, phone_number, role, created_at
			  FROM users
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UID, &u.Username, &u.Email, &u.PasswordHash,
			&u.PhoneNumber, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetUserRefs resolves a set of UIDs to display references. Unknown UIDs are
// simply absent from the result; callers fall back to an empty username.
func (s *Storage) GetUserRefs(ctx context.Context, uids []string) (map[string]models.UserRef, error) {
	const op = "storage.GetUserRefs"
	result := make(map[string]models.UserRef, len(uids))
	if len(uids) == 0 {
		return result, nil
	}

	query := `SELECT uid, username FROM users WHERE uid = ANY($1)`
	rows, err := s.DB.QueryContext(ctx, query, uids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var ref models.UserRef
		if err := rows.Scan(&ref.UID, &ref.Username); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[ref.UID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserProfile overwrites the mutable profile fields of a user.
func (s *Storage) UpdateUserProfile(ctx context.Context, user models.User) (int, error) {
	const op = "storage.UpdateUserProfile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET phone_number = $1, password_hash = $2
			  WHERE uid = $3`
	result, err := s.DB.ExecContext(ctx, query, user.PhoneNumber, user.PasswordHash, user.UID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeleteUser removes a user row and returns the number of deleted rows.
// Task rows referencing the user keep their dangling UIDs: there is no
// cascade, listing such tasks must keep working.
func (s *Storage) DeleteUser(ctx context.Context, uid string) (int, error) {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM users WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
