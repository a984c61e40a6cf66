package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"

	"nodup/internal/models"
)

var (
	baseURL      string
	numWorkers   int
	testDuration time.Duration
	numLinks     int
	numScopes    int
	numUsers     int
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

var rootCmd = &cobra.Command{
	Use:          "loadtest",
	Short:        "Drive a running nodup daemon with concurrent posts and leaderboard reads",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVar(&baseURL, "url", "http://127.0.0.1:8090", "Daemon base URL")
	rootCmd.Flags().IntVar(&numWorkers, "workers", 50, "Concurrent workers")
	rootCmd.Flags().DurationVar(&testDuration, "duration", 10*time.Second, "Duration of each phase")
	rootCmd.Flags().IntVar(&numLinks, "links", 200, "Distinct links per scope")
	rootCmd.Flags().IntVar(&numScopes, "scopes", 5, "Distinct scopes")
	rootCmd.Flags().IntVar(&numUsers, "users", 100, "Distinct users")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	fmt.Println("=== nodup load test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Scopes: %d | Links: %d | Users: %d\n\n", numScopes, numLinks, numUsers)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			return fmt.Errorf("server not responding at %s", baseURL)
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Concurrent reposts of one link ---")
	if err := checkConcurrentCount(); err != nil {
		return err
	}

	fmt.Println("\n--- Phase 2: Mixed load (80% POST, 20% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.80:
			return doPost(rng)
		case r < 0.88:
			return doGet(rng, "/top")
		case r < 0.96:
			return doGet(rng, "/topics")
		default:
			return doGetMe(rng)
		}
	})

	fmt.Println("\n--- Phase 3: Read-heavy load (10% POST, 90% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.10:
			return doPost(rng)
		case r < 0.50:
			return doGet(rng, "/top")
		case r < 0.90:
			return doGet(rng, "/topics")
		default:
			return doGetMe(rng)
		}
	})
	return nil
}

// checkConcurrentCount posts one fresh link from every worker at once and
// expects the occurrence count to equal the number of posts.
func checkConcurrentCount() error {
	scope := fmt.Sprintf("load-%d", time.Now().UnixNano())
	link := "https://example.com/" + scope

	var wg sync.WaitGroup
	failures := atomic.NewInt64(0)
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res := post(&models.IncomingItem{Scope: scope, UserID: fmt.Sprintf("u%d", i), Text: link})
			if res.err {
				failures.Inc()
			}
		}(i)
	}
	wg.Wait()

	resp, err := httpClient.Get(fmt.Sprintf("%s/topics?scope=%s&k=1", baseURL, scope))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var board struct {
		Rows []models.LeaderboardRow `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		return fmt.Errorf("decode topics: %w", err)
	}
	want := int64(numWorkers) - failures.Load()
	if len(board.Rows) != 1 || board.Rows[0].Count != want {
		return fmt.Errorf("expected one row with count %d, got %+v", want, board.Rows)
	}
	fmt.Printf("  %d concurrent posts counted exactly (%d failed requests)\n", want, failures.Load())
	return nil
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		fmt.Println("  no requests completed")
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func randomScope(rng *rand.Rand) string {
	return fmt.Sprintf("-100%d", 1000+rng.Intn(numScopes))
}

func doPost(rng *rand.Rand) result {
	user := fmt.Sprintf("%d", rng.Intn(numUsers)+1)
	return post(&models.IncomingItem{
		Scope:       randomScope(rng),
		UserID:      user,
		DisplayName: "user " + user,
		Text:        fmt.Sprintf("https://example.com/post/%d", rng.Intn(numLinks)),
	})
}

func post(item *models.IncomingItem) result {
	data, _ := json.Marshal(item)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/items", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /items", 0, lat, true}
	}
	var outcome models.Outcome
	decodeErr := json.NewDecoder(resp.Body).Decode(&outcome)
	resp.Body.Close()
	failed := resp.StatusCode != http.StatusOK || decodeErr != nil || outcome.Status == models.OutcomeUnrecorded
	return result{"POST /items", resp.StatusCode, lat, failed}
}

func doGet(rng *rand.Rand, path string) result {
	url := fmt.Sprintf("%s%s?scope=%s", baseURL, path, randomScope(rng))
	return get("GET "+path, url, nil)
}

func doGetMe(rng *rand.Rand) result {
	user := fmt.Sprintf("%d", rng.Intn(numUsers)+1)
	url := fmt.Sprintf("%s/me?scope=%s", baseURL, randomScope(rng))
	return get("GET /me", url, map[string]string{"X-User-Id": user})
}

func get(endpoint, url string, headers map[string]string) result {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return result{endpoint, 0, 0, true}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
