package store

import (
	"context"

	"example.com/tweetfeed/internal/models"
	"github.com/gocql/gocql"
)

// --- Notification operations ---

// AddNotification appends n to its recipient's timeline. The clustering key is
// a time UUID built from n.Created, so timelines read back newest first.
func (s *CassandraStore) AddNotification(ctx context.Context, n models.Notification) error {
	if err := s.Session.Query(`
		INSERT INTO notifications_by_user (user_id, created_at, kind, actor_id, actor_name, tweet_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, gocql.UUIDFromTime(n.Created), n.Kind, n.ActorID, n.ActorName, n.TweetID,
	).WithContext(ctx).Exec(); err != nil {
		logg.Error("store", "Failed to add notification", err)
		return err
	}

	logg.Debug("store", "Notification added (IDs anonymized)")
	return nil
}

func (s *CassandraStore) ListNotifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	iter := s.Session.Query(`
		SELECT created_at, kind, actor_id, actor_name, tweet_id
		FROM notifications_by_user WHERE user_id = ? LIMIT ?`,
		userID, limit,
	).WithContext(ctx).Iter()

	var res []models.Notification
	var created gocql.UUID
	var kind, actorName string
	var actorID, tweetID int64

	for iter.Scan(&created, &kind, &actorID, &actorName, &tweetID) {
		res = append(res, models.Notification{
			UserID:    userID,
			Kind:      kind,
			ActorID:   actorID,
			ActorName: actorName,
			TweetID:   tweetID,
			Created:   created.Time().UTC(),
		})
	}

	if err := iter.Close(); err != nil {
		logg.Error("store", "Failed to retrieve notifications", err)
		return nil, err
	}
	return res, nil
}
