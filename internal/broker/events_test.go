package appkafka

import (
	"testing"
	"time"

	"example.com/tweetfeed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_WritesKeyedEvent(t *testing.T) {
	mock := &MockKafka{}
	p := NewPublisher(mock)

	ev := models.Event{
		Type:      models.EventTweetCreated,
		ActorID:   2,
		ActorName: "TweetUser",
		TweetID:   7,
		Created:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, p.Publish(ev))

	require.Len(t, mock.WrittenMessages, 1)
	assert.Equal(t, models.EventTweetCreated, string(mock.WrittenMessages[0].Key))
	assert.Equal(t, []models.Event{ev}, mock.Events())
}

func TestPublisher_NilIsNoop(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.Publish(models.Event{Type: models.EventTweetLiked}))
	assert.NoError(t, NewPublisher(nil).Publish(models.Event{Type: models.EventTweetLiked}))
}

func TestPublisher_WriteFailure(t *testing.T) {
	p := NewPublisher(&MockKafkaFail{})
	assert.Error(t, p.Publish(models.Event{Type: models.EventUserFollowed}))
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte("{invalid-json}"))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"actor_id": 1}`))
	assert.ErrorContains(t, err, "missing type")
}
