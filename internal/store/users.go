package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/ecommerce-api/internal/apperr"
	"github.com/01moynul/ecommerce-api/internal/models"
)

var (
	errUserNotFound  = apperr.ErrNotFound.With("User not found", nil)
	errUsernameTaken = apperr.ErrConflict.With("Username already taken", nil)
)

const userColumns = "id, username, hashed_password, fname, lname, email"

// CreateUser inserts a new user. A taken username is a conflict; the unique
// key decides, so two racing registrations cannot both succeed.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (models.User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, hashed_password) VALUES (?, ?)",
		username, passwordHash)
	if err != nil {
		if isDuplicateEntry(err) {
			return models.User{}, errUsernameTaken.Wrap(err)
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("new user id: %w", err)
	}
	return models.User{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

// GetUser loads a user, including the password hash.
func (s *Store) GetUser(ctx context.Context, username string) (models.User, error) {
	return getUser(ctx, s.db, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

// GetUserByID loads a user by primary key. Tokens carry the id, so this is
// how a token is resolved to the account's current username.
func (s *Store) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errUserNotFound.Wrap(err)
		}
		return models.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateUser merges patch over the stored user and writes the result back,
// reading and writing in one transaction with the row locked. The patch must
// already be validated.
func (s *Store) UpdateUser(ctx context.Context, username string, patch models.UserPatch) (models.User, error) {
	var merged models.User
	err := s.withTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(tx *sql.Tx) error {
		existing, err := getUser(ctx, tx, "SELECT "+userColumns+" FROM users WHERE username = ? FOR UPDATE", username)
		if err != nil {
			return err
		}

		merged = patch.ApplyTo(existing)

		_, err = tx.ExecContext(ctx,
			"UPDATE users SET username = ?, fname = ?, lname = ?, email = ? WHERE id = ?",
			merged.Username, merged.FName, merged.LName, merged.Email, merged.ID)
		if err != nil {
			if isDuplicateEntry(err) {
				return errUsernameTaken.Wrap(err)
			}
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return merged, nil
}

// DeleteUser removes a user. Their cart rows and orders go with them through
// the ON DELETE CASCADE foreign keys.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE username = ?", username)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res, errUserNotFound)
}

func getUser(ctx context.Context, q Querier, query string, username string) (models.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, errUserNotFound.Wrap(err)
		}
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u                   models.User
		fname, lname, email sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &fname, &lname, &email); err != nil {
		return models.User{}, err
	}
	u.FName = nullableString(fname)
	u.LName = nullableString(lname)
	u.Email = nullableString(email)
	return u, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
