package store

import (
	"context"
	"fmt"

	"example.com/tweetfeed/internal/models"
)

// --- Follow operations ---

func (s *txStore) Follow(ctx context.Context, followerID, followedID int64) (models.Follow, error) {
	if _, err := s.GetUser(ctx, followedID); err != nil {
		return models.Follow{}, err
	}
	if followerID == followedID {
		return models.Follow{}, fmt.Errorf("%w: users cannot follow themselves", ErrInvalid)
	}

	res, err := s.tx.ExecContext(ctx,
		`INSERT INTO follows (follower_id, followed_id) VALUES (?, ?)`,
		followerID, followedID,
	)
	if err != nil {
		return models.Follow{}, fmt.Errorf("follow: %w", mapConstraint(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Follow{}, fmt.Errorf("follow: %w", err)
	}

	logg.Info("store", "Follow relationship created (user IDs anonymized)")
	return models.Follow{ID: id, FollowerID: followerID, FollowedID: followedID}, nil
}

func (s *txStore) Unfollow(ctx context.Context, followerID, followedID int64) error {
	res, err := s.tx.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followed_id = ?`,
		followerID, followedID,
	)
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("follow edge: %w", ErrNotFound)
	}

	logg.Info("store", "Follow relationship removed (user IDs anonymized)")
	return nil
}

// ListFollowed ranks producers by their own follower count, descending, then
// by id so equal counts come back in a stable order. Feed composition scans
// producers in this order.
func (s *txStore) ListFollowed(ctx context.Context, userID int64) ([]models.User, error) {
	rows, err := s.tx.QueryContext(ctx, `
		SELECT u.id, u.name
		FROM follows f
		JOIN users u ON u.id = f.followed_id
		WHERE f.follower_id = ?
		ORDER BY (SELECT COUNT(*) FROM follows c WHERE c.followed_id = u.id) DESC, u.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list followed: %w", err)
	}

	users, err := scanUsers(rows)
	if err != nil {
		logg.Error("store", "Failed to list followed users", err)
		return nil, fmt.Errorf("list followed: %w", err)
	}
	return users, nil
}

func (s *txStore) ListFollowers(ctx context.Context, userID int64) ([]models.User, error) {
	rows, err := s.tx.QueryContext(ctx, `
		SELECT u.id, u.name
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followed_id = ?
		ORDER BY u.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}

	users, err := scanUsers(rows)
	if err != nil {
		logg.Error("store", "Failed to get followers", err)
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return users, nil
}
