// Package analytics records served queries in an append-only line log and
// reports the most frequent ones.
package analytics

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// QueryLog appends one raw query per line. Writes happen on a background
// goroutine; Track never blocks and drops queries when the buffer is full
// or the log is closed. The queries channel is never closed, so Track is
// safe to call at any time.
type QueryLog struct {
	path          string
	queries       chan string
	flushInterval time.Duration
	logger        *slog.Logger

	stop      chan struct{}
	done      chan struct{}
	started   atomic.Bool
	closeOnce sync.Once
}

func NewQueryLog(path string, bufferSize int) *QueryLog {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &QueryLog{
		path:          path,
		queries:       make(chan string, bufferSize),
		flushInterval: time.Second,
		logger:        slog.Default().With("component", "query-log"),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (q *QueryLog) Path() string {
	return q.path
}

// Start opens the log file and launches the writer. The writer runs until
// Close, so queries tracked by requests still draining during shutdown are
// kept.
func (q *QueryLog) Start() error {
	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return fmt.Errorf("creating query log dir: %w", err)
	}
	f, err := os.OpenFile(q.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening query log: %w", err)
	}
	q.started.Store(true)
	go q.run(f)
	q.logger.Info("query log started", "path", q.path, "buffer_size", cap(q.queries))
	return nil
}

func (q *QueryLog) run(f *os.File) {
	defer close(q.done)
	w := bufio.NewWriter(f)
	defer func() {
		if err := w.Flush(); err != nil {
			q.logger.Error("flushing query log failed", "error", err)
		}
		f.Close()
	}()

	ticker := time.NewTicker(q.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case query := <-q.queries:
			q.write(w, query)
		case <-ticker.C:
			if err := w.Flush(); err != nil {
				q.logger.Error("flushing query log failed", "error", err)
			}
		case <-q.stop:
			q.drainRemaining(w)
			return
		}
	}
}

// Track records query. Blank queries are ignored and newlines are folded so
// each query stays on one line.
func (q *QueryLog) Track(query string) {
	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		return
	}
	select {
	case <-q.stop:
		q.logger.Debug("query dropped (log closed)")
		return
	default:
	}
	select {
	case q.queries <- query:
	default:
		q.logger.Warn("query dropped (buffer full)")
	}
}

// Close stops the writer after it has written everything tracked so far.
// It is safe to call more than once.
func (q *QueryLog) Close() {
	q.closeOnce.Do(func() {
		close(q.stop)
		if q.started.Load() {
			<-q.done
		}
	})
}

func (q *QueryLog) write(w *bufio.Writer, query string) {
	if _, err := w.WriteString(query + "\n"); err != nil {
		q.logger.Error("writing query log failed", "error", err)
	}
}

func (q *QueryLog) drainRemaining(w *bufio.Writer) {
	for {
		select {
		case query := <-q.queries:
			q.write(w, query)
		default:
			return
		}
	}
}
