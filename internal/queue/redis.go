// Package queue distributes scan jobs through Redis lists.
package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suykerbuyk/combo-finder/internal/logging"
)

const (
	DefaultQueue       = "combo_jobs"
	retrySuffix        = ":retry"
	dlqSuffix          = ":dlq"
	retryCounterSuffix = ":retry-count:"
	maxRetryAttempts   = 3
	brPopBlock         = 5 * time.Second
)

// RedisQueue implements queue operations using Redis lists.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a Redis-backed queue on the named list. An empty
// name selects DefaultQueue.
func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	if name == "" {
		name = DefaultQueue
	}
	return &RedisQueue{client: client, key: name}
}

// Name returns the list the queue reads from.
func (q *RedisQueue) Name() string {
	return q.key
}

// Enqueue pushes payloads onto the queue in order.
func (q *RedisQueue) Enqueue(ctx context.Context, payloads ...[]byte) error {
	if len(payloads) == 0 {
		return nil
	}
	values := make([]any, len(payloads))
	for i, p := range payloads {
		values[i] = p
	}
	if err := q.client.LPush(ctx, q.key, values...).Err(); err != nil {
		return fmt.Errorf("enqueue %d jobs: %w", len(payloads), err)
	}
	return nil
}

// Lengths reports the pending, retry and dead-letter list lengths.
func (q *RedisQueue) Lengths(ctx context.Context) (pending, retry, dead int64, err error) {
	pipe := q.client.Pipeline()
	p := pipe.LLen(ctx, q.key)
	r := pipe.LLen(ctx, q.key+retrySuffix)
	d := pipe.LLen(ctx, q.key+dlqSuffix)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, 0, err
	}
	return p.Val(), r.Val(), d.Val(), nil
}

// Consume uses BRPOP to deliver jobs to the handler until the context is canceled.
func (q *RedisQueue) Consume(ctx context.Context, handler func([]byte) error) error {
	logger := logging.Logger()

	for {
		if ctx.Err() != nil {
			logger.Warnf("redis consumer exiting: %v", ctx.Err())
			return ctx.Err()
		}

		payload, ok, err := q.pop(ctx)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		q.run(ctx, handler, payload, "")
	}
}

// ConsumeConcurrent uses BRPOP to feed jobs to a worker pool for concurrent processing.
func (q *RedisQueue) ConsumeConcurrent(ctx context.Context, workerCount, bufferSize int, handler func([]byte) error) error {
	logger := logging.Logger()

	jobChan := make(chan []byte, bufferSize)
	var wg sync.WaitGroup
	stop := func() error {
		close(jobChan)
		wg.Wait()
		return ctx.Err()
	}

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			prefix := fmt.Sprintf("worker %d: ", workerID)
			for payload := range jobChan {
				q.run(ctx, handler, payload, prefix)
			}
			logger.Infof("worker %d: exiting", workerID)
		}(i)
	}

	logger.Infof("started %d concurrent workers for queue %s", workerCount, q.key)

	for {
		if ctx.Err() != nil {
			logger.Warnf("redis consumer exiting: %v", ctx.Err())
			return stop()
		}

		payload, ok, err := q.pop(ctx)
		if err != nil {
			return stop()
		}
		if !ok {
			continue
		}

		select {
		case jobChan <- payload:
		case <-ctx.Done():
			return stop()
		}
	}
}

// pop waits for the next job, preferring retries. It returns ok=false on a
// timeout or transient error and a non-nil error only once ctx is done.
func (q *RedisQueue) pop(ctx context.Context) ([]byte, bool, error) {
	logger := logging.Logger()
	result, err := q.client.BRPop(ctx, brPopBlock, q.key+retrySuffix, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		if ctx.Err() != nil {
			logger.Warnf("redis BRPOP canceled: %v", ctx.Err())
			return nil, false, ctx.Err()
		}
		logger.Warnf("redis BRPOP error: %v", err)
		return nil, false, nil
	}
	if len(result) < 2 {
		return nil, false, nil
	}
	return []byte(result[1]), true, nil
}

func (q *RedisQueue) run(ctx context.Context, handler func([]byte) error, payload []byte, prefix string) {
	logger := logging.Logger()
	if err := handler(payload); err != nil {
		logger.Warnf("%shandler error, scheduling retry: %v", prefix, err)
		if err := q.handleRetry(ctx, payload); err != nil {
			logger.Errorf("%sretry handling failed: %v", prefix, err)
		}
		return
	}
	_ = q.clearRetryCounter(ctx, payload)
}

func (q *RedisQueue) handleRetry(ctx context.Context, payload []byte) error {
	logger := logging.Logger()
	attempt, err := q.incrementRetryCounter(ctx, payload)
	if err != nil {
		return err
	}
	if attempt > maxRetryAttempts {
		logger.Warnf("moving job to DLQ after %d attempts", attempt-1)
		_ = q.client.LPush(ctx, q.key+dlqSuffix, payload).Err()
		_ = q.clearRetryCounter(ctx, payload)
		return nil
	}
	return q.client.LPush(ctx, q.key+retrySuffix, payload).Err()
}

func (q *RedisQueue) incrementRetryCounter(ctx context.Context, payload []byte) (int64, error) {
	key := retryCounterKey(q.key, payload)
	count, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	_ = q.client.Expire(ctx, key, 24*time.Hour).Err()
	return count, nil
}

func (q *RedisQueue) clearRetryCounter(ctx context.Context, payload []byte) error {
	return q.client.Del(ctx, retryCounterKey(q.key, payload)).Err()
}

func retryCounterKey(queue string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s%s%s", queue, retryCounterSuffix, hex.EncodeToString(sum[:]))
}
