package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// registerResp is the body returned by POST /api/users
type registerResp struct {
	Result bool   `json:"result"`
	UserID int64  `json:"user_id"`
	APIKey string `json:"api_key"`
}

// tweetReq is the JSON payload for POST /api/tweets
type tweetReq struct {
	Text     string  `json:"tweet_data"`
	MediaIDs []int64 `json:"tweet_media_ids"`
}

func main() {
	// --- Command-line flags ---
	var server string
	var duration int
	var concurrency int
	var csvFile string
	var trimPercent float64
	var insecure bool

	flag.StringVar(&server, "server", "http://localhost:8080", "server base URL")
	flag.IntVar(&duration, "duration", 30, "duration in seconds")
	flag.IntVar(&concurrency, "c", 50, "number of concurrent goroutines / users")
	flag.StringVar(&csvFile, "csv", "latencies.csv", "CSV file to save latencies")
	flag.Float64Var(&trimPercent, "trim", 1.0, "percent of latency to trim from top and bottom for trimmed mean")
	flag.BoolVar(&insecure, "insecure", false, "skip TLS certificate verification")
	flag.Parse()

	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
		},
		Timeout: 10 * time.Second,
	}

	// --- Register one user per goroutine ---
	fmt.Printf("Registering %d users...\n", concurrency)
	users := make([]registerResp, concurrency)
	for i := 0; i < concurrency; i++ {
		b, _ := json.Marshal(map[string]string{"name": fmt.Sprintf("load-%d-%d", i, time.Now().UnixNano()%1e9)})

		resp, err := client.Post(server+"/api/users", "application/json", bytes.NewReader(b))
		if err != nil {
			panic(fmt.Sprintf("failed to register user: %v", err))
		}

		if err := json.NewDecoder(resp.Body).Decode(&users[i]); err != nil || !users[i].Result {
			resp.Body.Close()
			panic(fmt.Sprintf("failed to decode register response: %v", err))
		}
		resp.Body.Close()
	}
	fmt.Println("Users registered.")

	// --- Prepare concurrency test ---
	stopTime := time.Now().Add(time.Duration(duration) * time.Second)
	var wg sync.WaitGroup

	// Atomic counters for thread-safe tracking
	var requests int64
	var successes int64
	var errors4xx int64
	var errors5xx int64

	latencySlices := make([][]float64, concurrency) // each goroutine records latencies

	// --- Start concurrent goroutines for load test ---
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			user := users[idx]
			var localLatencies []float64

			// Keep posting tweets until the test duration ends
			for time.Now().Before(stopTime) {
				start := time.Now()
				b, _ := json.Marshal(tweetReq{Text: fmt.Sprintf("load test tweet %d", time.Now().UnixNano())})

				req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, server+"/api/tweets", bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("api-key", user.APIKey)

				resp, err := client.Do(req)
				lat := time.Since(start).Seconds() * 1000 // latency in ms
				localLatencies = append(localLatencies, lat)
				atomic.AddInt64(&requests, 1)

				if err != nil {
					fmt.Printf("Request error: %v\n", err)
					continue
				}

				// Count success/failure by status code
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&successes, 1)
					_, _ = io.Copy(io.Discard, resp.Body)
				case resp.StatusCode >= 400 && resp.StatusCode < 500:
					atomic.AddInt64(&errors4xx, 1)
					bodyBytes, _ := io.ReadAll(resp.Body)
					fmt.Printf("Status %d: %s\n", resp.StatusCode, string(bodyBytes))
				default:
					atomic.AddInt64(&errors5xx, 1)
					bodyBytes, _ := io.ReadAll(resp.Body)
					fmt.Printf("Status %d: %s\n", resp.StatusCode, string(bodyBytes))
				}
				resp.Body.Close()
			}

			latencySlices[idx] = localLatencies
		}(i)
	}

	wg.Wait()

	// --- Merge all latencies ---
	var allLatencies []float64
	for _, slice := range latencySlices {
		allLatencies = append(allLatencies, slice...)
	}
	sort.Float64s(allLatencies)

	// --- Compute statistics ---
	trimmedMeanVal := trimmedMean(allLatencies, trimPercent)
	p50 := percentile(allLatencies, 50)
	p90 := percentile(allLatencies, 90)
	p99 := percentile(allLatencies, 99)

	fmt.Printf("Requests: %d  Successes: %d  4xx: %d  5xx: %d\n", requests, successes, errors4xx, errors5xx)
	fmt.Printf("Latency (ms): trimmed_mean=%.2f p50=%.2f p90=%.2f p99=%.2f\n", trimmedMeanVal, p50, p90, p99)

	// --- Save latencies to CSV ---
	f, err := os.Create(csvFile)
	if err != nil {
		fmt.Printf("Failed to create CSV file: %v\n", err)
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	_ = w.Write([]string{"latency_ms"})
	for _, d := range allLatencies {
		_ = w.Write([]string{fmt.Sprintf("%.3f", d)})
	}
	fmt.Printf("Saved latencies to %s\n", csvFile)
}

// trimmedMean calculates mean latency after trimming top/bottom trimPercent values
func trimmedMean(data []float64, trimPercent float64) float64 {
	if len(data) == 0 {
		return 0
	}
	trim := int(float64(len(data)) * trimPercent / 100.0)
	if trim*2 >= len(data) {
		trim = len(data) / 2
	}
	trimmed := data[trim : len(data)-trim]
	if len(trimmed) == 0 {
		return 0
	}
	var sum float64
	for _, v := range trimmed {
		sum += v
	}
	return sum / float64(len(trimmed))
}

// percentile calculates the p-th percentile from sorted data
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
