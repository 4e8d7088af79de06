package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type tweetBody struct {
	Text     string  `json:"tweet_data" validate:"required,max=140"`
	MediaIDs []int64 `json:"tweet_media_ids" validate:"omitempty,dive,gt=0"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(tweetBody{Text: strings.Repeat("ü", 140)}))

	err := Struct(tweetBody{Text: strings.Repeat("a", 141)})
	assert.EqualError(t, err, "tweet_data must be at most 140 characters")

	err = Struct(tweetBody{})
	assert.EqualError(t, err, "tweet_data is required")

	err = Struct(tweetBody{Text: "ok", MediaIDs: []int64{1, 0}})
	assert.ErrorContains(t, err, "tweet_media_ids[1] must be greater than 0")
}
