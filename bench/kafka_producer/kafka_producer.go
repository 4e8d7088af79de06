package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	appkafka "example.com/tweetfeed/internal/broker"
	"example.com/tweetfeed/internal/models"
	"github.com/segmentio/kafka-go"
)

// Floods the events topic with synthetic domain events to measure how fast the
// notification worker drains them.
func main() {
	var (
		total      int
		batchSize  int
		numWorkers int
		broker     string
		topic      string
		actors     int64
	)
	flag.IntVar(&total, "n", 100000, "total number of events to send")
	flag.IntVar(&batchSize, "batch", 100, "batch size for sending events")
	flag.IntVar(&numWorkers, "workers", 4, "number of parallel goroutines")
	flag.StringVar(&broker, "broker", "localhost:9092", "Kafka broker address")
	flag.StringVar(&topic, "topic", "tweetfeed-events", "events topic")
	flag.Int64Var(&actors, "actors", 50, "user ids 1..actors act as senders and targets")
	flag.Parse()

	// Kafka writer with asynchronous sending enabled
	w := &kafka.Writer{
		Addr:     kafka.TCP(broker),
		Topic:    topic,
		Async:    true,
		Balancer: &kafka.Hash{},
	}
	defer w.Close()

	kinds := []string{models.EventTweetCreated, models.EventTweetLiked, models.EventUserFollowed}
	start := time.Now()

	var successCount uint64
	var failCount uint64

	// Channel for feeding event indexes to worker goroutines
	jobs := make(chan int, total)
	var wg sync.WaitGroup

	// --- Start worker goroutines ---
	for wID := 0; wID < numWorkers; wID++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := make([]kafka.Message, 0, batchSize)

			flush := func() {
				if len(batch) == 0 {
					return
				}
				if err := w.WriteMessages(context.Background(), batch...); err != nil {
					atomic.AddUint64(&failCount, uint64(len(batch)))
					fmt.Printf("write error: %v\n", err)
				} else {
					atomic.AddUint64(&successCount, uint64(len(batch)))
				}
				batch = batch[:0]
			}

			for i := range jobs {
				ev := models.Event{
					Type:         kinds[i%len(kinds)],
					ActorID:      rand.Int63n(actors) + 1,
					ActorName:    fmt.Sprintf("bench-%d", i%int(actors)),
					TweetID:      int64(i + 1),
					TargetUserID: rand.Int63n(actors) + 1,
					Created:      time.Now().UTC(),
				}

				v, err := appkafka.EncodeEvent(ev)
				if err != nil {
					atomic.AddUint64(&failCount, 1)
					fmt.Printf("encode error: %v\n", err)
					continue
				}

				batch = append(batch, kafka.Message{Key: []byte(ev.Type), Value: v})
				if len(batch) >= batchSize {
					flush()
				}
			}

			// Send any remaining events after finishing loop
			flush()
		}()
	}

	for i := 0; i < total; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	// --- Benchmark results ---
	elapsed := time.Since(start)
	fmt.Printf("Total events: %d\n", total)
	fmt.Printf("Successful: %d, Failed: %d\n", successCount, failCount)
	fmt.Printf("Elapsed time: %s\n", elapsed)
	fmt.Printf("Throughput: %.2f msg/s\n", float64(successCount)/elapsed.Seconds())
}
