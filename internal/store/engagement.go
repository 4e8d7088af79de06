package store

import (
	"context"
	"fmt"

	"example.com/tweetfeed/internal/models"
)

// --- Like operations ---

func (s *txStore) Like(ctx context.Context, userID, tweetID int64) (models.Like, error) {
	if _, err := s.GetTweet(ctx, tweetID); err != nil {
		return models.Like{}, err
	}

	res, err := s.tx.ExecContext(ctx,
		`INSERT INTO likes (user_id, tweet_id) VALUES (?, ?)`,
		userID, tweetID,
	)
	if err != nil {
		return models.Like{}, fmt.Errorf("like: %w", mapConstraint(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Like{}, fmt.Errorf("like: %w", err)
	}

	logg.Info("store", "Like created (IDs anonymized)")
	return models.Like{ID: id, UserID: userID, TweetID: tweetID}, nil
}

func (s *txStore) Unlike(ctx context.Context, userID, tweetID int64) error {
	res, err := s.tx.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = ? AND tweet_id = ?`,
		userID, tweetID,
	)
	if err != nil {
		return fmt.Errorf("unlike: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unlike: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("like edge: %w", ErrNotFound)
	}
	return nil
}

func (s *txStore) LikeCount(ctx context.Context, tweetID int64) (int, error) {
	var n int
	if err := s.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE tweet_id = ?`,
		tweetID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("like count: %w", err)
	}
	return n, nil
}
