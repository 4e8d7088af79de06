// Package view builds the JSON documents returned by the API from store
// models. Documents embed related entities as snapshots.
package view

import "example.com/tweetfeed/internal/models"

type UserSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type LikerSummary struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

type TweetDocument struct {
	ID          int64          `json:"id"`
	Content     string         `json:"content"`
	Attachments []string       `json:"attachments"`
	Author      UserSummary    `json:"author"`
	Likes       []LikerSummary `json:"likes"`
}

type UserDocument struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Followers []UserSummary `json:"followers"`
	Following []UserSummary `json:"following"`
}

type NotificationDocument struct {
	Kind    string      `json:"kind"`
	Actor   UserSummary `json:"actor"`
	TweetID int64       `json:"tweet_id,omitempty"`
	Created string      `json:"created"`
}

func Summary(u models.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name}
}

// Summaries never returns nil so empty lists encode as [].
func Summaries(users []models.User) []UserSummary {
	res := make([]UserSummary, 0, len(users))
	for _, u := range users {
		res = append(res, Summary(u))
	}
	return res
}

func Tweet(s models.TweetSnapshot) TweetDocument {
	attachments := make([]string, 0, len(s.Attachments))
	attachments = append(attachments, s.Attachments...)

	likes := make([]LikerSummary, 0, len(s.Likers))
	for _, u := range s.Likers {
		likes = append(likes, LikerSummary{UserID: u.ID, Name: u.Name})
	}

	return TweetDocument{
		ID:          s.Tweet.ID,
		Content:     s.Tweet.Content,
		Attachments: attachments,
		Author:      Summary(s.Author),
		Likes:       likes,
	}
}

func User(u models.User, followers, following []models.User) UserDocument {
	return UserDocument{
		ID:        u.ID,
		Name:      u.Name,
		Followers: Summaries(followers),
		Following: Summaries(following),
	}
}

func Notifications(ns []models.Notification) []NotificationDocument {
	res := make([]NotificationDocument, 0, len(ns))
	for _, n := range ns {
		res = append(res, NotificationDocument{
			Kind:    n.Kind,
			Actor:   UserSummary{ID: n.ActorID, Name: n.ActorName},
			TweetID: n.TweetID,
			Created: n.Created.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	return res
}
