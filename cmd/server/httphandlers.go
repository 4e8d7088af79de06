package server

import (
	"net/http"
	"strconv"

	"example.com/tweetfeed/internal/feed"
	"example.com/tweetfeed/internal/metrics"
	"example.com/tweetfeed/internal/middleware"
	"example.com/tweetfeed/internal/models"
	"example.com/tweetfeed/internal/store"
	"example.com/tweetfeed/internal/validation"
	"example.com/tweetfeed/internal/view"
	"github.com/goccy/go-json"
)

const notificationsLimit = 50

// --- HTTP Handlers ---

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, nil)
}

// registerHandler creates a user and returns a freshly minted api key.
// Expects JSON body: {"name": "example"}
func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name" validate:"required,max=50"`
	}
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Info("http/users", "Invalid request body")
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := validation.Struct(body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	apiKey, err := s.issuer.Issue(body.Name)
	if err != nil {
		writeError(w, "http/users", err)
		return
	}

	var user models.User
	err = s.store.WithTx(r.Context(), func(tx store.Tx) error {
		user, err = tx.CreateUser(r.Context(), body.Name, apiKey)
		return err
	})
	if err != nil {
		writeError(w, "http/users", err)
		return
	}

	logg.Info("http/users", "User registered with user_id="+strconv.FormatInt(user.ID, 10))
	writeOK(w, http.StatusCreated, map[string]any{"user_id": user.ID, "api_key": apiKey})
}

// feedHandler returns the caller's feed: newest tweets of every followed
// producer, grouped by producer.
func (s *Server) feedHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var tweets []view.TweetDocument
	err := s.store.WithTx(r.Context(), func(tx store.Tx) error {
		var err error
		tweets, err = feed.Compose(r.Context(), tx, user.ID)
		return err
	})
	if err != nil {
		writeError(w, "http/feed", err)
		return
	}

	logg.Debug("http/feed", "Feed composed for user_id="+strconv.FormatInt(user.ID, 10))
	writeOK(w, http.StatusOK, map[string]any{"tweets": tweets})
}

// createTweetHandler stores a tweet and attaches the referenced media.
// Expects JSON body: {"tweet_data": "...", "tweet_media_ids": [1, 2]}
func (s *Server) createTweetHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text     string  `json:"tweet_data" validate:"required,max=140"`
		MediaIDs []int64 `json:"tweet_media_ids" validate:"omitempty,dive,gt=0"`
	}
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Info("http/tweets", "Invalid request body")
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := validation.Struct(body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	user, _ := middleware.UserFromContext(r.Context())

	var tweet models.Tweet
	err := s.store.WithTx(r.Context(), func(tx store.Tx) error {
		var err error
		tweet, err = tx.CreateTweet(r.Context(), user.ID, body.Text, body.MediaIDs)
		return err
	})
	if err != nil {
		writeError(w, "http/tweets", err)
		return
	}

	metrics.TweetsPosted.Inc()
	s.publish(models.Event{
		Type:      models.EventTweetCreated,
		ActorID:   user.ID,
		ActorName: user.Name,
		TweetID:   tweet.ID,
	})

	writeOK(w, http.StatusCreated, map[string]any{"tweet_id": tweet.ID})
}

func (s *Server) deleteTweetHandler(w http.ResponseWriter, r *http.Request) {
	tweetID, err := pathID(r)
	if err != nil {
		writeError(w, "http/tweets", err)
		return
	}
	user, _ := middleware.UserFromContext(r.Context())

	err = s.store.WithTx(r.Context(), func(tx store.Tx) error {
		return tx.DeleteTweet(r.Context(), tweetID, user.ID)
	})
	if err != nil {
		writeError(w, "http/tweets", err)
		return
	}

	metrics.TweetsDeleted.Inc()
	s.publish(models.Event{
		Type:      models.EventTweetDeleted,
		ActorID:   user.ID,
		ActorName: user.Name,
		TweetID:   tweetID,
	})

	writeOK(w, http.StatusOK, nil)
}

func (s *Server) likeHandler(w http.ResponseWriter, r *http.Request) {
	tweetID, err := pathID(r)
	if err != nil {
		writeError(w, "http/likes", err)
		return
	}
	user, _ := middleware.UserFromContext(r.Context())

	var tweet models.Tweet
	err = s.store.WithTx(r.Context(), func(tx store.Tx) error {
		if _, err := tx.Like(r.Context(), user.ID, tweetID); err != nil {
			return err
		}
		var err error
		tweet, err = tx.GetTweet(r.Context(), tweetID)
		return err
	})
	if err != nil {
		writeError(w, "http/likes", err)
		return
	}

	metrics.LikeChanges.WithLabelValues("add").Inc()
	s.publish(models.Event{
		Type:         models.EventTweetLiked,
		ActorID:      user.ID,
		ActorName:    user.Name,
		TweetID:      tweetID,
		TargetUserID: tweet.AuthorID,
	})

	writeOK(w, http.StatusOK, nil)
}

func (s *Server) unlikeHandler(w http.ResponseWriter, r *http.Request) {
	tweetID, err := pathID(r)
	if err != nil {
		writeError(w, "http/likes", err)
		return
	}
	user, _ := middleware.UserFromContext(r.Context())

	err = s.store.WithTx(r.Context(), func(tx store.Tx) error {
		return tx.Unlike(r.Context(), user.ID, tweetID)
	})
	if err != nil {
		writeError(w, "http/likes", err)
		return
	}

	metrics.LikeChanges.WithLabelValues("remove").Inc()
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) followHandler(w http.ResponseWriter, r *http.Request) {
	followedID, err := pathID(r)
	if err != nil {
		writeError(w, "http/follow", err)
		return
	}
	user, _ := middleware.UserFromContext(r.Context())

	err = s.store.WithTx(r.Context(), func(tx store.Tx) error {
		_, err := tx.Follow(r.Context(), user.ID, followedID)
		return err
	})
	if err != nil {
		writeError(w, "http/follow", err)
		return
	}

	metrics.FollowChanges.WithLabelValues("add").Inc()
	s.publish(models.Event{
		Type:         models.EventUserFollowed,
		ActorID:      user.ID,
		ActorName:    user.Name,
		TargetUserID: followedID,
	})

	logg.Info("http/follow", "User "+strconv.FormatInt(user.ID, 10)+" followed "+strconv.FormatInt(followedID, 10))
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) unfollowHandler(w http.ResponseWriter, r *http.Request) {
	followedID, err := pathID(r)
	if err != nil {
		writeError(w, "http/follow", err)
		return
	}
	user, _ := middleware.UserFromContext(r.Context())

	err = s.store.WithTx(r.Context(), func(tx store.Tx) error {
		return tx.Unfollow(r.Context(), user.ID, followedID)
	})
	if err != nil {
		writeError(w, "http/follow", err)
		return
	}

	metrics.FollowChanges.WithLabelValues("remove").Inc()
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	s.writeUser(w, r, user.ID)
}

func (s *Server) userHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r)
	if err != nil {
		writeError(w, "http/users", err)
		return
	}
	s.writeUser(w, r, userID)
}

// writeUser answers with the user document of userID.
func (s *Server) writeUser(w http.ResponseWriter, r *http.Request, userID int64) {
	var doc view.UserDocument
	err := s.store.WithTx(r.Context(), func(tx store.Tx) error {
		u, err := tx.GetUser(r.Context(), userID)
		if err != nil {
			return err
		}
		followers, err := tx.ListFollowers(r.Context(), userID)
		if err != nil {
			return err
		}
		following, err := tx.ListFollowed(r.Context(), userID)
		if err != nil {
			return err
		}
		doc = view.User(u, followers, following)
		return nil
	})
	if err != nil {
		writeError(w, "http/users", err)
		return
	}

	writeOK(w, http.StatusOK, map[string]any{"user": doc})
}

func (s *Server) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	ns, err := s.notifications.ListNotifications(r.Context(), user.ID, notificationsLimit)
	if err != nil {
		writeError(w, "http/notifications", err)
		return
	}

	writeOK(w, http.StatusOK, map[string]any{"notifications": view.Notifications(ns)})
}
