package feed

import (
	"context"
	"fmt"

	"example.com/tweetfeed/internal/logger"
	"example.com/tweetfeed/internal/models"
	"example.com/tweetfeed/internal/store"
	"example.com/tweetfeed/internal/view"
)

var logg = logger.New()

// PerProducer is how many of each producer's newest tweets a feed carries.
const PerProducer = store.DefaultLatestLimit

// Source is the slice of the store the composer reads from. store.Tx satisfies it.
type Source interface {
	ListFollowed(ctx context.Context, userID int64) ([]models.User, error)
	LatestByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Tweet, error)
	Snapshot(ctx context.Context, tweetID int64) (models.TweetSnapshot, error)
}

// Compose builds userID's feed. Producers are visited in the order
// ListFollowed ranks them (most followed first) and each contributes up to
// PerProducer tweets, newest first. Groups are concatenated and not merged by
// time.
func Compose(ctx context.Context, src Source, userID int64) ([]view.TweetDocument, error) {
	producers, err := src.ListFollowed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("compose feed: %w", err)
	}

	docs := make([]view.TweetDocument, 0, len(producers)*PerProducer)
	for _, p := range producers {
		tweets, err := src.LatestByAuthor(ctx, p.ID, PerProducer)
		if err != nil {
			return nil, fmt.Errorf("compose feed: %w", err)
		}

		for _, t := range tweets {
			snap, err := src.Snapshot(ctx, t.ID)
			if err != nil {
				return nil, fmt.Errorf("compose feed: %w", err)
			}
			docs = append(docs, view.Tweet(snap))
		}
	}

	logg.Debug("feed", fmt.Sprintf("Feed composed from %d producers", len(producers)))
	return docs, nil
}
