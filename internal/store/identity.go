package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"example.com/tweetfeed/internal/models"
)

// --- User operations ---

// CreateUser inserts a user. A credential already in use yields ErrConflict.
func (s *txStore) CreateUser(ctx context.Context, name, apiKey string) (models.User, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > MaxNameLength {
		return models.User{}, fmt.Errorf("%w: name must be 1-%d characters", ErrInvalid, MaxNameLength)
	}
	if apiKey == "" {
		return models.User{}, fmt.Errorf("%w: empty credential", ErrInvalid)
	}

	res, err := s.tx.ExecContext(ctx,
		`INSERT INTO users (name, api_key) VALUES (?, ?)`,
		name, apiKey,
	)
	if err != nil {
		logg.Error("store", "Failed to create user", err)
		return models.User{}, fmt.Errorf("create user: %w", mapConstraint(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	logg.Info("store", "User created successfully (name anonymized)")
	return models.User{ID: id, Name: name, APIKey: apiKey}, nil
}

// ResolveCredential returns the single user owning apiKey. No match, or more
// than one, is ErrUnauthorized.
func (s *txStore) ResolveCredential(ctx context.Context, apiKey string) (models.User, error) {
	if apiKey == "" {
		return models.User{}, ErrUnauthorized
	}

	rows, err := s.tx.QueryContext(ctx,
		`SELECT id, name, api_key FROM users WHERE api_key = ? LIMIT 2`,
		apiKey,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("resolve credential: %w", err)
	}
	defer rows.Close()

	var matches []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.APIKey); err != nil {
			return models.User{}, fmt.Errorf("resolve credential: %w", err)
		}
		matches = append(matches, u)
	}
	if err := rows.Err(); err != nil {
		return models.User{}, fmt.Errorf("resolve credential: %w", err)
	}

	if len(matches) != 1 {
		return models.User{}, ErrUnauthorized
	}
	return matches[0], nil
}

func (s *txStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.tx.QueryRowContext(ctx,
		`SELECT id, name, api_key FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Name, &u.APIKey)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
