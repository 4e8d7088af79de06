package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"sync"
	"time"

	appkafka "example.com/tweetfeed/internal/broker"
	"example.com/tweetfeed/internal/logger"
	"example.com/tweetfeed/internal/metrics"
	"example.com/tweetfeed/internal/models"
	"example.com/tweetfeed/internal/store"
)

var logg = logger.New()

// fanoutLimit bounds concurrent notification writes for one event.
const fanoutLimit = 20

// Worker consumes domain events from Kafka and writes notifications to
// Cassandra concurrently.
type Worker struct {
	store         store.StoreInterface
	notifications store.NotificationStore
	reader        appkafka.KafkaReader
	workerCount   int
	jobQueueSize  int
}

// New creates a new concurrent Worker using pre-initialized dependencies.
func New(st store.StoreInterface, ns store.NotificationStore, reader appkafka.KafkaReader, workerCount, jobQueueSize int) *Worker {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if jobQueueSize <= 0 {
		jobQueueSize = workerCount * 10
	}
	return &Worker{
		store:         st,
		notifications: ns,
		reader:        reader,
		workerCount:   workerCount,
		jobQueueSize:  jobQueueSize,
	}
}

// Run starts message reading and concurrent processing. It returns after ctx
// is cancelled and every worker has drained.
func (w *Worker) Run(ctx context.Context) {
	logg.Info("worker", "Starting "+fmt.Sprint(w.workerCount)+" workers with queue size "+fmt.Sprint(w.jobQueueSize))

	jobs := make(chan []byte, w.jobQueueSize)
	var wg sync.WaitGroup

	for i := 0; i < w.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.processLoop(ctx, jobs)
		}()
	}

	w.readLoop(ctx, jobs)

	close(jobs)
	wg.Wait()
	logg.Info("worker", "All workers stopped gracefully")
}

// readLoop reads Kafka messages and pushes them into a job queue.
func (w *Worker) readLoop(ctx context.Context, jobs chan<- []byte) {
	var retry int
	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := w.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				backoff := time.Duration(math.Min(1000, math.Pow(2, float64(retry)))) * time.Millisecond
				logg.Error("worker", "Kafka read error, backing off", err)
				if !waitWithContext(ctx, backoff) {
					return
				}
				retry++
				continue
			}
			retry = 0

			if len(msg.Value) == 0 {
				continue
			}

			// Block until a worker is free so no message is dropped
			for enqueued := false; !enqueued; {
				select {
				case jobs <- msg.Value:
					enqueued = true
				case <-ctx.Done():
					return
				case <-time.After(100 * time.Millisecond):
					logg.Info("worker", "Queue full, waiting to enqueue Kafka message")
				}
			}
		}
	}
}

// processLoop decodes events and turns them into notifications.
func (w *Worker) processLoop(ctx context.Context, jobs <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.handle(ctx, data); err != nil {
				logg.Error("worker", "Failed to process event", err)
			}
		}
	}
}

// handle processes one encoded event.
func (w *Worker) handle(ctx context.Context, data []byte) error {
	ev, err := appkafka.DecodeEvent(data)
	if err != nil {
		return err
	}
	metrics.EventsProcessed.WithLabelValues(ev.Type).Inc()

	switch ev.Type {
	case models.EventTweetCreated:
		return w.notifyFollowers(ctx, ev)
	case models.EventTweetLiked:
		if ev.TargetUserID == ev.ActorID {
			return nil
		}
		return w.notify(ctx, ev.TargetUserID, ev)
	case models.EventUserFollowed:
		return w.notify(ctx, ev.TargetUserID, ev)
	case models.EventTweetDeleted:
		logg.Debug("worker", "Ignoring tweet_deleted event")
		return nil
	default:
		logg.Info("worker", "Skipping unknown event type "+ev.Type)
		return nil
	}
}

// notifyFollowers fans a tweet_created event out to every follower of the
// author.
func (w *Worker) notifyFollowers(ctx context.Context, ev models.Event) error {
	var followers []models.User
	err := w.store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		followers, err = tx.ListFollowers(ctx, ev.ActorID)
		return err
	})
	if err != nil {
		return fmt.Errorf("list followers: %w", err)
	}

	var (
		fanoutWG  sync.WaitGroup
		mu        sync.Mutex
		errs      []error
		semaphore = make(chan struct{}, fanoutLimit)
	)

	for _, f := range followers {
		if ctx.Err() != nil {
			break
		}
		fanoutWG.Add(1)
		semaphore <- struct{}{}

		go func(userID int64) {
			defer fanoutWG.Done()
			defer func() { <-semaphore }()
			if err := w.notify(ctx, userID, ev); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(f.ID)
	}

	fanoutWG.Wait()
	logg.Info("worker", "Tweet announced to "+strconv.Itoa(len(followers))+" followers")
	return errors.Join(errs...)
}

func (w *Worker) notify(ctx context.Context, userID int64, ev models.Event) error {
	created := ev.Created
	if created.IsZero() {
		created = time.Now().UTC()
	}

	err := w.notifications.AddNotification(ctx, models.Notification{
		UserID:    userID,
		Kind:      ev.Type,
		ActorID:   ev.ActorID,
		ActorName: ev.ActorName,
		TweetID:   ev.TweetID,
		Created:   created,
	})
	if err != nil {
		return fmt.Errorf("add notification: %w", err)
	}
	metrics.NotificationsWritten.Inc()
	return nil
}

// waitWithContext waits for duration or context cancellation.
func waitWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close shuts down the Kafka reader and the notification store.
func (w *Worker) Close() error {
	logg.Info("worker", "Closing Kafka reader")
	if err := w.reader.Close(); err != nil {
		logg.Error("worker", "Error closing Kafka reader", err)
		return err
	}

	logg.Info("worker", "Closing Cassandra session")
	w.notifications.Close()
	return nil
}
