package models

import "time"

type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	APIKey string `json:"-"`
}

type Tweet struct {
	ID       int64     `json:"id"`
	AuthorID int64     `json:"author_id"`
	Content  string    `json:"content"`
	Created  time.Time `json:"created"`
}

type Media struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	TweetID  *int64 `json:"tweet_id,omitempty"`
}

// Follow is a directed edge: FollowerID watches FollowedID.
type Follow struct {
	ID         int64 `json:"id"`
	FollowerID int64 `json:"follower_id"`
	FollowedID int64 `json:"followed_id"`
}

type Like struct {
	ID      int64 `json:"id"`
	UserID  int64 `json:"user_id"`
	TweetID int64 `json:"tweet_id"`
}

// TweetSnapshot is a tweet together with everything its public document embeds.
type TweetSnapshot struct {
	Tweet       Tweet
	Author      User
	Attachments []string
	Likers      []User
}

// Event types published after a write commits.
const (
	EventTweetCreated = "tweet_created"
	EventTweetDeleted = "tweet_deleted"
	EventTweetLiked   = "tweet_liked"
	EventUserFollowed = "user_followed"
)

// Event describes a committed write. TargetUserID is the user the action was
// aimed at (tweet author for likes, followed user for follows).
type Event struct {
	Type         string    `json:"type"`
	ActorID      int64     `json:"actor_id"`
	ActorName    string    `json:"actor_name"`
	TweetID      int64     `json:"tweet_id,omitempty"`
	TargetUserID int64     `json:"target_user_id,omitempty"`
	Created      time.Time `json:"created"`
}

type Notification struct {
	UserID    int64     `json:"-"`
	Kind      string    `json:"kind"`
	ActorID   int64     `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	TweetID   int64     `json:"tweet_id,omitempty"`
	Created   time.Time `json:"created"`
}
