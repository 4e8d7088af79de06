package view

import (
	"encoding/json"
	"testing"
	"time"

	"example.com/tweetfeed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTweet_EmbedsAuthorMediaAndLikers(t *testing.T) {
	doc := Tweet(models.TweetSnapshot{
		Tweet:       models.Tweet{ID: 3, AuthorID: 2, Content: "Banana"},
		Author:      models.User{ID: 2, Name: "TweetUser", APIKey: "secret"},
		Attachments: []string{"uploads/b.png"},
		Likers:      []models.User{{ID: 1, Name: "TestUser"}},
	})

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 3,
		"content": "Banana",
		"attachments": ["uploads/b.png"],
		"author": {"id": 2, "name": "TweetUser"},
		"likes": [{"user_id": 1, "name": "TestUser"}]
	}`, string(raw))
}

func TestUser_EmptyListsEncodeAsArrays(t *testing.T) {
	raw, err := json.Marshal(User(models.User{ID: 1, Name: "solo"}, nil, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"solo","followers":[],"following":[]}`, string(raw))
}

func TestNotifications(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	docs := Notifications([]models.Notification{
		{UserID: 9, Kind: models.EventTweetLiked, ActorID: 1, ActorName: "fan", TweetID: 4, Created: at},
	})

	require.Len(t, docs, 1)
	assert.Equal(t, UserSummary{ID: 1, Name: "fan"}, docs[0].Actor)
	assert.Equal(t, "2024-05-01T12:00:00.000Z", docs[0].Created)
}
