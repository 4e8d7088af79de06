package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// registerResp is the body returned by POST /api/users
type registerResp struct {
	UserID int64  `json:"user_id"`
	APIKey string `json:"api_key"`
}

type tweetResp struct {
	Result  bool  `json:"result"`
	TweetID int64 `json:"tweet_id"`
}

type feedResp struct {
	Tweets []struct {
		ID int64 `json:"id"`
	} `json:"tweets"`
}

func main() {
	// CLI flags
	var serverAddr string
	var U, F, P, concurrency int
	var pollTimeout int
	var insecure bool

	flag.StringVar(&serverAddr, "server", "http://localhost:8080", "server base URL")
	flag.IntVar(&U, "users", 50, "number of users to register")
	flag.IntVar(&F, "follows", 10, "average follows per user")
	flag.IntVar(&P, "tweets", 100, "number of tweets to publish")
	flag.IntVar(&concurrency, "c", 20, "concurrency for posting")
	flag.IntVar(&pollTimeout, "timeout", 10, "seconds to wait for a tweet to show up in a feed")
	flag.BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")
	flag.Parse()

	ctx := context.Background()

	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
		},
		Timeout: 10 * time.Second,
	}

	// --- 1) Register users ---
	fmt.Printf("Registering %d users...\n", U)
	users := make([]registerResp, 0, U)
	for i := 0; i < U; i++ {
		b, _ := json.Marshal(map[string]string{"name": fmt.Sprintf("e2e-%d-%d", i, time.Now().UnixNano()%1e9)})

		resp, err := client.Post(serverAddr+"/api/users", "application/json", bytes.NewReader(b))
		if err != nil {
			fmt.Printf("register error: %v\n", err)
			os.Exit(1)
		}

		var ur registerResp
		if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
			resp.Body.Close()
			fmt.Printf("decode register resp error: %v\n", err)
			os.Exit(1)
		}
		resp.Body.Close()
		users = append(users, ur)
	}
	fmt.Println("Users registered successfully.")

	keys := make(map[int64]string, len(users))
	for _, u := range users {
		keys[u.UserID] = u.APIKey
	}

	// --- 2) Create follow relationships between users ---
	fmt.Printf("Creating follows (~%d per user)...\n", F)
	followMap := make(map[int64][]int64)
	for _, u := range users {
		seen := make(map[int64]bool)
		for j := 0; j < F; j++ {
			followee := users[rand.Intn(len(users))]
			if followee.UserID == u.UserID || seen[followee.UserID] {
				continue
			}
			seen[followee.UserID] = true

			url := fmt.Sprintf("%s/api/users/%d/follow", serverAddr, followee.UserID)
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
			req.Header.Set("api-key", u.APIKey)

			resp, err := client.Do(req)
			if err != nil {
				fmt.Printf("follow error: %v\n", err)
				os.Exit(1)
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				followMap[followee.UserID] = append(followMap[followee.UserID], u.UserID)
			}
		}
	}
	fmt.Println("Follow relationships established.")

	// --- 3) Publish tweets concurrently ---
	fmt.Printf("Publishing %d tweets with concurrency %d...\n", P, concurrency)
	type tweetRecord struct {
		TweetID  int64
		AuthorID int64
		Posted   time.Time
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency) // concurrency limiter
	tweetsCh := make(chan tweetRecord, P)

	for i := 0; i < P; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			author := users[rand.Intn(len(users))]
			b, _ := json.Marshal(map[string]any{"tweet_data": fmt.Sprintf("tweet %d", rand.Int())})

			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, serverAddr+"/api/tweets", bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("api-key", author.APIKey)

			resp, err := client.Do(req)
			if err != nil {
				fmt.Printf("tweet error: %v\n", err)
				return
			}

			var tr tweetResp
			if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil || !tr.Result {
				resp.Body.Close()
				fmt.Printf("decode tweet error: %v\n", err)
				return
			}
			resp.Body.Close()
			tweetsCh <- tweetRecord{TweetID: tr.TweetID, AuthorID: author.UserID, Posted: time.Now()}
		}()
	}

	wg.Wait()
	close(tweetsCh)

	// --- 4) Verify tweets show up in followers' feeds ---
	// Feeds only carry each producer's newest tweets, so a miss can also mean
	// the tweet was pushed out by a newer one.
	fmt.Println("Checking feed visibility...")
	var latencies []float64
	var latMu sync.Mutex
	var failCount int64
	var checksWg sync.WaitGroup

	for tr := range tweetsCh {
		for _, fid := range followMap[tr.AuthorID] {
			checksWg.Add(1)
			go func(tr tweetRecord, key string) {
				defer checksWg.Done()
				deadline := time.Now().Add(time.Duration(pollTimeout) * time.Second)

				// Poll the feed until the tweet appears or timeout
				for time.Now().Before(deadline) {
					req, _ := http.NewRequestWithContext(ctx, http.MethodGet, serverAddr+"/api/tweets", nil)
					req.Header.Set("api-key", key)
					resp, err := client.Do(req)
					if err != nil {
						time.Sleep(200 * time.Millisecond)
						continue
					}

					var fr feedResp
					err = json.NewDecoder(resp.Body).Decode(&fr)
					resp.Body.Close()
					if err != nil {
						time.Sleep(200 * time.Millisecond)
						continue
					}

					for _, t := range fr.Tweets {
						if t.ID == tr.TweetID {
							lat := time.Since(tr.Posted).Seconds() * 1000
							latMu.Lock()
							latencies = append(latencies, lat)
							latMu.Unlock()
							return
						}
					}
					time.Sleep(200 * time.Millisecond)
				}

				latMu.Lock()
				failCount++
				latMu.Unlock()
			}(tr, keys[fid])
		}
	}

	checksWg.Wait()

	// --- 5) Compute latency statistics and export to CSV ---
	if len(latencies) == 0 {
		fmt.Println("No successful deliveries recorded.")
		return
	}

	trimPercent := 1.0
	meanVal := trimmedMean(latencies, trimPercent)
	p50 := trimmedPercentile(latencies, 50, trimPercent)
	p90 := trimmedPercentile(latencies, 90, trimPercent)
	p99 := trimmedPercentile(latencies, 99, trimPercent)
	fmt.Printf("Visibility stats (ms): count=%d mean=%.2f p50=%.2f p90=%.2f p99=%.2f misses=%d\n",
		len(latencies), meanVal, p50, p90, p99, failCount)

	f, err := os.Create("e2e_latencies.csv")
	if err != nil {
		fmt.Printf("Failed to create CSV file: %v\n", err)
		return
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"latency_ms"})
	for _, v := range latencies {
		_ = w.Write([]string{fmt.Sprintf("%.3f", v)})
	}
	w.Flush()
	f.Close()
	fmt.Println("Saved e2e_latencies.csv")
}

// trimmedMean calculates the mean of a dataset excluding extreme values.
func trimmedMean(data []float64, trimPercent float64) float64 {
	data = trimmed(data, trimPercent)
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// trimmedPercentile returns a percentile value after trimming extremes.
func trimmedPercentile(data []float64, p float64, trimPercent float64) float64 {
	return percentile(trimmed(data, trimPercent), p)
}

func trimmed(data []float64, trimPercent float64) []float64 {
	if len(data) == 0 {
		return data
	}
	sort.Float64s(data)
	trim := int(float64(len(data)) * trimPercent / 100.0)
	if trim*2 >= len(data) {
		trim = len(data) / 2
	}
	return data[trim : len(data)-trim]
}

// percentile calculates the requested percentile using linear interpolation.
func percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	k := (p / 100.0) * float64(len(data)-1)
	f := int(k)
	c := f + 1
	if c >= len(data) {
		return data[len(data)-1]
	}
	return data[f]*(float64(c)-k) + data[c]*(k-float64(f))
}
