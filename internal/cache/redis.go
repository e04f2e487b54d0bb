package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bilgisen/paperharvest/internal/harvest"
	"github.com/bilgisen/paperharvest/internal/models"
	"github.com/redis/go-redis/v9"
)

// StatusRecorder stores run progress somewhere other processes can see it.
type StatusRecorder interface {
	harvest.Recorder
	Close() error
}

// RedisClient records per-day and per-run reports in Redis hashes.
type RedisClient struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisClient(redisURL, prefix string, ttl time.Duration) (*RedisClient, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// DayKey is the hash holding the report of one date.
func (r *RedisClient) DayKey(date string) string {
	return r.prefix + "day:" + models.DateKey(date)
}

// RunKey is the hash holding the latest run summary.
func (r *RedisClient) RunKey() string {
	return r.prefix + "run:last"
}

func (r *RedisClient) RecordDay(ctx context.Context, day harvest.DayReport) error {
	fields := countFields(day.Counts)
	fields["date"] = day.Date
	fields["editions"] = day.Editions
	fields["failed_editions"] = day.FailedEditions
	fields["recorded_at"] = time.Now().UTC().Format(time.RFC3339)

	return r.store(ctx, r.DayKey(day.Date), fields)
}

func (r *RedisClient) RecordRun(ctx context.Context, run harvest.Report) error {
	summary, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}

	fields := countFields(run.Counts)
	fields["days"] = run.Days
	fields["productive_days"] = run.ProductiveDays
	fields["total_articles"] = run.TotalArticles
	fields["cancelled"] = run.Cancelled
	fields["started_at"] = run.StartedAt.UTC().Format(time.RFC3339)
	fields["finished_at"] = run.FinishedAt.UTC().Format(time.RFC3339)
	fields["summary"] = string(summary)

	return r.store(ctx, r.RunKey(), fields)
}

func (r *RedisClient) store(ctx context.Context, key string, fields map[string]interface{}) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis write %s: %w", key, err)
	}
	return nil
}

func countFields(c harvest.Counts) map[string]interface{} {
	return map[string]interface{}{
		"requests":        c.Requests,
		"failures":        c.Failures,
		"empty_responses": c.EmptyResponses,
		"skipped_pages":   c.SkippedPages,
		"skipped_stories": c.SkippedStories,
		"empty_details":   c.EmptyDetails,
		"articles":        c.Articles,
	}
}
