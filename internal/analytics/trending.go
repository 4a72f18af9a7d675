package analytics

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultTrending is the number of queries Trending reports when n <= 0.
const DefaultTrending = 5

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Trending returns the n most frequent queries in the log at path, most
// frequent first. Equal counts keep the order in which the queries first
// appeared. A missing log yields no queries.
func Trending(path string, n int) ([]QueryCount, error) {
	if n <= 0 {
		n = DefaultTrending
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []QueryCount{}, nil
		}
		return nil, fmt.Errorf("opening query log: %w", err)
	}
	defer f.Close()

	counts := make(map[string]int64)
	var order []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}
		if _, seen := counts[q]; !seen {
			order = append(order, q)
		}
		counts[q]++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading query log: %w", err)
	}
	return topN(order, counts, n), nil
}

func topN(order []string, counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(order))
	for _, query := range order {
		result = append(result, QueryCount{Query: query, Count: counts[query]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
