package journal

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/zero-day-ai/navplan/naverr"
)

// DefaultKey is the Redis list the journal appends to.
const DefaultKey = "navplan:journal"

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// Key is the list key entries are appended to. Defaults to DefaultKey.
	Key string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// RedisJournal implements Journal on a Redis list using go-redis/v9.
type RedisJournal struct {
	client *redis.Client
	key    string
}

// NewRedisJournal connects to Redis and verifies the connection with PING.
func NewRedisJournal(opts RedisOptions) (*RedisJournal, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, naverr.NewConfigurationError("journal.NewRedisJournal",
			fmt.Errorf("failed to parse Redis URL: %w", err))
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, naverr.NewStorageError("journal.NewRedisJournal",
			fmt.Errorf("failed to connect to Redis: %w", err))
	}

	return &RedisJournal{client: client, key: opts.Key}, nil
}

// Key returns the list key the journal writes to.
func (j *RedisJournal) Key() string {
	return j.key
}

// Append marshals entry as JSON and pushes it to the tail of the list.
func (j *RedisJournal) Append(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return naverr.NewStorageError("RedisJournal.Append",
			fmt.Errorf("failed to marshal entry: %w", err))
	}

	if err := j.client.RPush(ctx, j.key, data).Err(); err != nil {
		return naverr.NewStorageError("RedisJournal.Append",
			fmt.Errorf("failed to push to %s: %w", j.key, err)).
			WithContext(map[string]any{"task_id": entry.TaskID})
	}

	return nil
}

// Entries reads the whole list. Malformed items are skipped.
func (j *RedisJournal) Entries(ctx context.Context) ([]Entry, error) {
	raw, err := j.client.LRange(ctx, j.key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, naverr.NewStorageError("RedisJournal.Entries",
			fmt.Errorf("failed to read %s: %w", j.key, err))
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Len returns the length of the list.
func (j *RedisJournal) Len(ctx context.Context) (int, error) {
	n, err := j.client.LLen(ctx, j.key).Result()
	if err != nil {
		return 0, naverr.NewStorageError("RedisJournal.Len",
			fmt.Errorf("failed to read length of %s: %w", j.key, err))
	}
	return int(n), nil
}

// Close closes the Redis connection.
func (j *RedisJournal) Close() error {
	return j.client.Close()
}
