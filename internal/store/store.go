package store

import (
	"context"

	"example.com/tweetfeed/internal/logger"
	"example.com/tweetfeed/internal/models"
)

var logg = logger.New()

const (
	MaxTweetLength = 140
	MaxNameLength  = 50

	// DefaultLatestLimit is the per-author page size used by feed composition.
	DefaultLatestLimit = 5
)

// --- Interfaces ---

type IdentityStore interface {
	CreateUser(ctx context.Context, name, apiKey string) (models.User, error)
	ResolveCredential(ctx context.Context, apiKey string) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
}

type GraphStore interface {
	Follow(ctx context.Context, followerID, followedID int64) (models.Follow, error)
	Unfollow(ctx context.Context, followerID, followedID int64) error
	// ListFollowed returns the producers userID follows, most followed first.
	ListFollowed(ctx context.Context, userID int64) ([]models.User, error)
	ListFollowers(ctx context.Context, userID int64) ([]models.User, error)
}

type ContentStore interface {
	CreateMedia(ctx context.Context, filename string) (models.Media, error)
	CreateTweet(ctx context.Context, authorID int64, content string, mediaIDs []int64) (models.Tweet, error)
	DeleteTweet(ctx context.Context, tweetID, requesterID int64) error
	GetTweet(ctx context.Context, tweetID int64) (models.Tweet, error)
	LatestByAuthor(ctx context.Context, authorID int64, limit int) ([]models.Tweet, error)
	Snapshot(ctx context.Context, tweetID int64) (models.TweetSnapshot, error)
}

type EngagementStore interface {
	Like(ctx context.Context, userID, tweetID int64) (models.Like, error)
	Unlike(ctx context.Context, userID, tweetID int64) error
	LikeCount(ctx context.Context, tweetID int64) (int, error)
}

// Tx is the unit of work handed to WithTx callbacks.
type Tx interface {
	IdentityStore
	GraphStore
	ContentStore
	EngagementStore
}

type StoreInterface interface {
	// WithTx runs fn in one transaction. It commits when fn returns nil and
	// rolls back when fn returns an error or panics.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

// NotificationStore keeps the per-user notification timeline.
type NotificationStore interface {
	AddNotification(ctx context.Context, n models.Notification) error
	ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
	Close()
}
