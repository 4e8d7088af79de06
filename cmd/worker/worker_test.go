package worker

import (
	"context"
	"testing"
	"time"

	appkafka "example.com/tweetfeed/internal/broker"
	"example.com/tweetfeed/internal/models"
	"example.com/tweetfeed/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	st       *store.SQLiteStore
	notifs   *store.MockNotificationStore
	worker   *Worker
	author   models.User
	follower models.User
	other    models.User
}

// newFixture seeds author, follower and other, with follower following author.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	f := &fixture{st: st, notifs: store.NewMockNotifications()}
	ctx := context.Background()
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if f.author, err = tx.CreateUser(ctx, "author", "k1"); err != nil {
			return err
		}
		if f.follower, err = tx.CreateUser(ctx, "follower", "k2"); err != nil {
			return err
		}
		if f.other, err = tx.CreateUser(ctx, "other", "k3"); err != nil {
			return err
		}
		_, err = tx.Follow(ctx, f.follower.ID, f.author.ID)
		return err
	}))

	f.worker = New(st, f.notifs, &appkafka.MockKafka{}, 2, 4)
	return f
}

func encode(t *testing.T, ev models.Event) []byte {
	t.Helper()
	data, err := appkafka.EncodeEvent(ev)
	require.NoError(t, err)
	return data
}

// ---------- Positive tests ----------

func TestHandle_TweetCreatedFansOutToFollowers(t *testing.T) {
	f := newFixture(t)

	err := f.worker.handle(context.Background(), encode(t, models.Event{
		Type:      models.EventTweetCreated,
		ActorID:   f.author.ID,
		ActorName: f.author.Name,
		TweetID:   100,
		Created:   time.Now(),
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, f.notifs.Count(f.follower.ID))
	assert.Equal(t, 0, f.notifs.Count(f.other.ID))
	assert.Equal(t, 0, f.notifs.Count(f.author.ID))

	ns, err := f.notifs.ListNotifications(context.Background(), f.follower.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, models.EventTweetCreated, ns[0].Kind)
	assert.Equal(t, int64(100), ns[0].TweetID)
	assert.Equal(t, "author", ns[0].ActorName)
}

func TestHandle_LikeNotifiesAuthorUnlessSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.worker.handle(ctx, encode(t, models.Event{
		Type:         models.EventTweetLiked,
		ActorID:      f.other.ID,
		TweetID:      5,
		TargetUserID: f.author.ID,
	})))
	require.NoError(t, f.worker.handle(ctx, encode(t, models.Event{
		Type:         models.EventTweetLiked,
		ActorID:      f.author.ID,
		TweetID:      5,
		TargetUserID: f.author.ID,
	})))

	assert.Equal(t, 1, f.notifs.Count(f.author.ID))
}

func TestHandle_FollowNotifiesFollowedUser(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.worker.handle(context.Background(), encode(t, models.Event{
		Type:         models.EventUserFollowed,
		ActorID:      f.other.ID,
		TargetUserID: f.author.ID,
	})))

	assert.Equal(t, 1, f.notifs.Count(f.author.ID))
}

func TestHandle_TweetDeletedIgnored(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.worker.handle(context.Background(), encode(t, models.Event{
		Type:    models.EventTweetDeleted,
		ActorID: f.author.ID,
		TweetID: 1,
	})))

	assert.Equal(t, 0, f.notifs.Count(f.follower.ID))
}

// ---------- Negative tests ----------

func TestHandle_InvalidJSON(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.worker.handle(context.Background(), []byte("{invalid-json}")))
}

func TestHandle_StoreFailure(t *testing.T) {
	w := New(&store.MockStoreFail{}, store.NewMockNotifications(), &appkafka.MockKafka{}, 1, 1)

	err := w.handle(context.Background(), encode(t, models.Event{
		Type:    models.EventTweetCreated,
		ActorID: 1,
	}))
	assert.Error(t, err)
}

func TestHandle_NotificationStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.notifs.ShouldFail = true

	err := f.worker.handle(context.Background(), encode(t, models.Event{
		Type:    models.EventTweetCreated,
		ActorID: f.author.ID,
	}))
	assert.Error(t, err)
}

func TestReadLoop_KafkaReadErrorBacksOffUntilCancelled(t *testing.T) {
	f := newFixture(t)
	f.worker.reader = &appkafka.MockKafkaFail{}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		f.worker.readLoop(ctx, make(chan []byte, 1))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("readLoop did not stop after cancellation")
	}
}
