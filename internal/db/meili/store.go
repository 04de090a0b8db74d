// Package meili implements the remote index service over Meilisearch.
package meili

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
)

// Config holds connection parameters for a Meilisearch store.
type Config struct {
	// Host is the full service address, e.g. "http://localhost:7700".
	Host   string
	APIKey string
	// TaskPollInterval tunes how often enqueued index tasks are polled.
	TaskPollInterval time.Duration
}

// Store talks to one Meilisearch deployment.
type Store struct {
	client       meilisearch.ServiceManager
	pollInterval time.Duration
}

// NewStore creates a Meilisearch store.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	interval := cfg.TaskPollInterval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}

	var opts []meilisearch.Option
	if cfg.APIKey != "" {
		opts = append(opts, meilisearch.WithAPIKey(cfg.APIKey))
	}

	return &Store{
		client:       meilisearch.New(cfg.Host, opts...),
		pollInterval: interval,
	}, nil
}

// Ping checks service health.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HealthWithContext(ctx); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return nil
}

// Close releases the underlying HTTP client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the service responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for index service: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// waitForTask blocks until the enqueued task settles and reports whether it
// succeeded.
func (s *Store) waitForTask(ctx context.Context, taskUID int64) (bool, error) {
	task, err := s.client.WaitForTaskWithContext(ctx, taskUID, s.pollInterval)
	if err != nil {
		return false, fmt.Errorf("wait for task %d: %w", taskUID, err)
	}
	return task.Status == meilisearch.TaskStatusSucceeded, nil
}

// isMeiliErr checks whether err carries the given Meilisearch error code.
func isMeiliErr(err error, code string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), code)
}
