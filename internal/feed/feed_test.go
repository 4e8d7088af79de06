package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"example.com/tweetfeed/internal/models"
	"example.com/tweetfeed/internal/store"
	"example.com/tweetfeed/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func contents(docs []view.TweetDocument) []string {
	res := make([]string, 0, len(docs))
	for _, d := range docs {
		res = append(res, d.Content)
	}
	return res
}

func TestCompose_NewestFirstWithinProducer(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	var reader, producer models.User
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if reader, err = tx.CreateUser(ctx, "TestUser", "qwe"); err != nil {
			return err
		}
		if producer, err = tx.CreateUser(ctx, "TweetUser", "tweet"); err != nil {
			return err
		}
		if _, err = tx.Follow(ctx, reader.ID, producer.ID); err != nil {
			return err
		}
		if _, err = tx.CreateTweet(ctx, producer.ID, "Strawberry", nil); err != nil {
			return err
		}
		_, err = tx.CreateTweet(ctx, producer.ID, "Banana", nil)
		return err
	}))

	var docs []view.TweetDocument
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		var err error
		docs, err = Compose(ctx, tx, reader.ID)
		return err
	}))

	assert.Equal(t, []string{"Banana", "Strawberry"}, contents(docs))
	assert.Equal(t, view.UserSummary{ID: producer.ID, Name: "TweetUser"}, docs[0].Author)
}

func TestCompose_GroupsByProducerPopularity(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		reader, _ := tx.CreateUser(ctx, "reader", "k-reader")
		small, _ := tx.CreateUser(ctx, "small", "k-small")
		big, _ := tx.CreateUser(ctx, "big", "k-big")
		fan, _ := tx.CreateUser(ctx, "fan", "k-fan")

		for _, f := range [][2]int64{{reader.ID, small.ID}, {reader.ID, big.ID}, {fan.ID, big.ID}} {
			if _, err := tx.Follow(ctx, f[0], f[1]); err != nil {
				return err
			}
		}

		// big posts first, small posts last: a global time sort would put small first
		for i := 1; i <= 7; i++ {
			if _, err := tx.CreateTweet(ctx, big.ID, fmt.Sprintf("big-%d", i), nil); err != nil {
				return err
			}
		}
		_, err := tx.CreateTweet(ctx, small.ID, "small-1", nil)
		return err
	}))

	var docs []view.TweetDocument
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		reader, err := tx.ResolveCredential(ctx, "k-reader")
		if err != nil {
			return err
		}
		docs, err = Compose(ctx, tx, reader.ID)
		return err
	}))

	assert.Equal(t, []string{"big-7", "big-6", "big-5", "big-4", "big-3", "small-1"}, contents(docs))
}

func TestCompose_NoFollowsIsEmpty(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.CreateUser(ctx, "alone", "k")
		if err != nil {
			return err
		}
		docs, err := Compose(ctx, tx, u.ID)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
		return err
	}))
}

type failingSource struct{ Source }

func (failingSource) ListFollowed(ctx context.Context, userID int64) ([]models.User, error) {
	return nil, errors.New("db down")
}

func TestCompose_PropagatesStoreErrors(t *testing.T) {
	_, err := Compose(context.Background(), failingSource{}, 1)
	assert.ErrorContains(t, err, "db down")
}
