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

// --- Media operations ---

func (s *txStore) CreateMedia(ctx context.Context, filename string) (models.Media, error) {
	if strings.TrimSpace(filename) == "" {
		return models.Media{}, fmt.Errorf("%w: empty filename", ErrInvalid)
	}

	res, err := s.tx.ExecContext(ctx, `INSERT INTO media (filename) VALUES (?)`, filename)
	if err != nil {
		logg.Error("store", "Failed to add media", err)
		return models.Media{}, fmt.Errorf("create media: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Media{}, fmt.Errorf("create media: %w", err)
	}
	return models.Media{ID: id, Filename: filename}, nil
}

// --- Tweet operations ---

// CreateTweet stores a tweet and attaches mediaIDs to it. Unknown media is
// ErrNotFound, media already attached to another tweet is ErrConflict; the
// caller's transaction rolls back the tweet in both cases.
func (s *txStore) CreateTweet(ctx context.Context, authorID int64, content string, mediaIDs []int64) (models.Tweet, error) {
	if n := utf8.RuneCountInString(content); strings.TrimSpace(content) == "" || n > MaxTweetLength {
		return models.Tweet{}, fmt.Errorf("%w: tweet must be 1-%d characters", ErrInvalid, MaxTweetLength)
	}

	created, err := s.nextTimestamp(ctx)
	if err != nil {
		return models.Tweet{}, err
	}

	res, err := s.tx.ExecContext(ctx,
		`INSERT INTO tweets (author_id, content, created_at) VALUES (?, ?, ?)`,
		authorID, content, created,
	)
	if err != nil {
		logg.Error("store", "Failed to add tweet", err)
		return models.Tweet{}, fmt.Errorf("create tweet: %w", mapConstraint(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Tweet{}, fmt.Errorf("create tweet: %w", err)
	}

	for _, mediaID := range mediaIDs {
		if err := s.attachMedia(ctx, mediaID, id); err != nil {
			return models.Tweet{}, err
		}
	}

	logg.Info("store", "Tweet added (content anonymized)")
	return models.Tweet{
		ID:       id,
		AuthorID: authorID,
		Content:  content,
		Created:  unixNanoTime(created),
	}, nil
}

// nextTimestamp returns the current time in unix nanoseconds, bumped past the
// newest stored tweet so that creation time never goes backwards with id.
func (s *txStore) nextTimestamp(ctx context.Context) (int64, error) {
	var newest int64
	if err := s.tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(created_at), 0) FROM tweets`,
	).Scan(&newest); err != nil {
		return 0, fmt.Errorf("read newest tweet time: %w", err)
	}

	now := s.now().UnixNano()
	if now <= newest {
		now = newest + 1
	}
	return now, nil
}

func (s *txStore) attachMedia(ctx context.Context, mediaID, tweetID int64) error {
	res, err := s.tx.ExecContext(ctx,
		`UPDATE media SET tweet_id = ? WHERE id = ? AND tweet_id IS NULL`,
		tweetID, mediaID,
	)
	if err != nil {
		return fmt.Errorf("attach media: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("attach media: %w", err)
	}
	if n == 1 {
		return nil
	}

	var current sql.NullInt64
	err = s.tx.QueryRowContext(ctx, `SELECT tweet_id FROM media WHERE id = ?`, mediaID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("media %d: %w", mediaID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("attach media: %w", err)
	}
	// Listed twice in the same request
	if current.Valid && current.Int64 == tweetID {
		return nil
	}
	return fmt.Errorf("media %d already attached: %w", mediaID, ErrConflict)
}

// DeleteTweet removes a tweet owned by requesterID. Its likes go with it and
// its media is detached.
func (s *txStore) DeleteTweet(ctx context.Context, tweetID, requesterID int64) error {
	t, err := s.GetTweet(ctx, tweetID)
	if err != nil {
		return err
	}
	if t.AuthorID != requesterID {
		return fmt.Errorf("tweet %d: %w", tweetID, ErrForbidden)
	}

	if _, err := s.tx.ExecContext(ctx, `DELETE FROM tweets WHERE id = ?`, tweetID); err != nil {
		logg.Error("store", "Failed to delete tweet", err)
		return fmt.Errorf("delete tweet: %w", err)
	}

	logg.Info("store", "Tweet deleted (IDs anonymized)")
	return nil
}

func (s *txStore) GetTweet(ctx context.Context, tweetID int64) (models.Tweet, error) {
	t, err := scanTweet(s.tx.QueryRowContext(ctx,
		`SELECT id, author_id, content, created_at FROM tweets WHERE id = ?`,
		tweetID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Tweet{}, fmt.Errorf("tweet %d: %w", tweetID, ErrNotFound)
	}
	if err != nil {
		return models.Tweet{}, fmt.Errorf("get tweet: %w", err)
	}
	return t, nil
}

// LatestByAuthor returns up to limit tweets by authorID, newest first.
// A non-positive limit means DefaultLatestLimit.
func (s *txStore) LatestByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Tweet, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}

	rows, err := s.tx.QueryContext(ctx, `
		SELECT id, author_id, content, created_at
		FROM tweets
		WHERE author_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		authorID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("latest tweets: %w", err)
	}
	defer rows.Close()

	var res []models.Tweet
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, fmt.Errorf("latest tweets: %w", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		logg.Error("store", "Failed to retrieve author tweets", err)
		return nil, fmt.Errorf("latest tweets: %w", err)
	}
	return res, nil
}

// Snapshot loads a tweet with its author, attachment filenames and likers.
func (s *txStore) Snapshot(ctx context.Context, tweetID int64) (models.TweetSnapshot, error) {
	t, err := s.GetTweet(ctx, tweetID)
	if err != nil {
		return models.TweetSnapshot{}, err
	}

	author, err := s.GetUser(ctx, t.AuthorID)
	if err != nil {
		return models.TweetSnapshot{}, err
	}

	attachments, err := s.attachmentsOf(ctx, tweetID)
	if err != nil {
		return models.TweetSnapshot{}, err
	}

	rows, err := s.tx.QueryContext(ctx, `
		SELECT u.id, u.name
		FROM likes l
		JOIN users u ON u.id = l.user_id
		WHERE l.tweet_id = ?
		ORDER BY l.id ASC`,
		tweetID,
	)
	if err != nil {
		return models.TweetSnapshot{}, fmt.Errorf("likers: %w", err)
	}
	likers, err := scanUsers(rows)
	if err != nil {
		return models.TweetSnapshot{}, fmt.Errorf("likers: %w", err)
	}

	return models.TweetSnapshot{
		Tweet:       t,
		Author:      author,
		Attachments: attachments,
		Likers:      likers,
	}, nil
}

func (s *txStore) attachmentsOf(ctx context.Context, tweetID int64) ([]string, error) {
	rows, err := s.tx.QueryContext(ctx,
		`SELECT filename FROM media WHERE tweet_id = ? ORDER BY id ASC`,
		tweetID,
	)
	if err != nil {
		return nil, fmt.Errorf("attachments: %w", err)
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("attachments: %w", err)
		}
		res = append(res, name)
	}
	return res, rows.Err()
}
