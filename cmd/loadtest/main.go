// Command loadtest drives the search API with a mixed-language query set,
// including misspellings that exercise the correction path, and reports
// latency percentiles plus how the answers were produced.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var defaultQueries = []string{
	"india",
	"indai",
	"kerala backwaters",
	"kerela",
	"monsoon forecast",
	"भारत",
	"भारत की राजधानी",
	"தமிழ்நாடு",
	"சென்னை",
	"తెలుగు",
	"హైదరాబాద్",
	"search engine",
	"cricket world cup",
	"ganges river",
}

type searchReply struct {
	Results    []json.RawMessage `json:"results"`
	Suggestion *string           `json:"suggestion"`
	Language   string            `json:"language"`
	Corrected  bool              `json:"corrected"`
}

type Stats struct {
	total     atomic.Int64
	errors    atomic.Int64
	zero      atomic.Int64
	corrected atomic.Int64

	mu         sync.Mutex
	latencies  []time.Duration
	statuses   map[int]int64
	byLanguage map[string]int64
}

func NewStats() *Stats {
	return &Stats{
		latencies:  make([]time.Duration, 0, 100000),
		statuses:   make(map[int]int64),
		byLanguage: make(map[string]int64),
	}
}

// Record accounts for one request. reply is nil when the body could not
// be decoded.
func (s *Stats) Record(d time.Duration, status int, reply *searchReply, err error) {
	s.total.Add(1)
	if err != nil {
		s.errors.Add(1)
		return
	}
	if status < 200 || status >= 300 {
		s.errors.Add(1)
	}

	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.statuses[status]++
	if reply != nil {
		s.byLanguage[reply.Language]++
	}
	s.mu.Unlock()

	if reply == nil {
		return
	}
	if reply.Corrected {
		s.corrected.Add(1)
	}
	if len(reply.Results) == 0 {
		s.zero.Add(1)
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	queryFile := flag.String("queries", "", "file with one query per line (default: built-in multilingual set)")
	flag.Parse()

	queries := defaultQueries
	if *queryFile != "" {
		q, err := loadQueries(*queryFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading queries: %v\n", err)
			os.Exit(1)
		}
		queries = q
	}

	fmt.Println("=== Search Load Test ===")
	fmt.Printf("Target:      %s\n", *baseURL)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Duration:    %s\n", *duration)
	fmt.Printf("Queries:     %d unique\n", len(queries))
	fmt.Println()

	stats := run(*baseURL, queries, *concurrency, *duration)
	if !printReport(os.Stdout, stats, *duration) {
		os.Exit(1)
	}
}

func loadQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if q := strings.TrimSpace(sc.Text()); q != "" {
			out = append(out, q)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s contains no queries", path)
	}
	return out, nil
}

func run(baseURL string, queries []string, concurrency int, d time.Duration) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        concurrency * 2,
			MaxIdleConnsPerHost: concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < concurrency; w++ {
		g.Go(func() error {
			for i := w; ctx.Err() == nil; i++ {
				query := queries[i%len(queries)]
				start := time.Now()
				status, reply, err := search(ctx, client, baseURL, query)
				if ctx.Err() != nil {
					return nil
				}
				stats.Record(time.Since(start), status, reply, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return stats
}

func search(ctx context.Context, client *http.Client, baseURL, query string) (int, *searchReply, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		baseURL+"/api/v1/search?q="+url.QueryEscape(query), nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	var reply searchReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return resp.StatusCode, nil, nil
	}
	return resp.StatusCode, &reply, nil
}

// printReport writes the summary and reports whether any request completed.
func printReport(w *os.File, stats *Stats, d time.Duration) bool {
	total := stats.total.Load()
	errs := stats.errors.Load()

	fmt.Fprintln(w, "=== Results ===")
	fmt.Fprintf(w, "Total Requests:  %d\n", total)
	fmt.Fprintf(w, "Errors:          %d\n", errs)
	if total > 0 {
		fmt.Fprintf(w, "Error Rate:      %.2f%%\n", float64(errs)/float64(total)*100)
		fmt.Fprintf(w, "Requests/sec:    %.2f\n", float64(total)/d.Seconds())
		fmt.Fprintf(w, "Zero results:    %d\n", stats.zero.Load())
		fmt.Fprintf(w, "Corrected:       %d\n", stats.corrected.Load())
	}

	stats.mu.Lock()
	defer stats.mu.Unlock()

	if len(stats.latencies) > 0 {
		lat := append([]time.Duration(nil), stats.latencies...)
		sort.Slice(lat, func(i, j int) bool { return lat[i] < lat[j] })
		avg, stddev := meanStdDev(lat)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "=== Latency ===")
		fmt.Fprintf(w, "Min:    %s\n", lat[0])
		fmt.Fprintf(w, "Avg:    %s\n", avg)
		for _, p := range []float64{50, 90, 95, 99} {
			fmt.Fprintf(w, "P%-5.0f %s\n", p, percentile(lat, p))
		}
		fmt.Fprintf(w, "Max:    %s\n", lat[len(lat)-1])
		fmt.Fprintf(w, "StdDev: %s\n", stddev)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	codes := make([]int, 0, len(stats.statuses))
	for code := range stats.statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Fprintf(w, "  %d: %d\n", code, stats.statuses[code])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Languages ===")
	langs := make([]string, 0, len(stats.byLanguage))
	for l := range stats.byLanguage {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	for _, l := range langs {
		fmt.Fprintf(w, "  %s: %d\n", l, stats.byLanguage[l])
	}

	if total == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "WARNING: no requests completed. Is the search service running?")
		return false
	}
	return true
}

func meanStdDev(lat []time.Duration) (time.Duration, time.Duration) {
	var sum time.Duration
	for _, l := range lat {
		sum += l
	}
	avg := sum / time.Duration(len(lat))
	var sq float64
	for _, l := range lat {
		diff := float64(l - avg)
		sq += diff * diff
	}
	return avg, time.Duration(math.Sqrt(sq / float64(len(lat))))
}

// percentile uses the nearest-rank method on a sorted slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
