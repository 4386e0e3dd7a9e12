package report

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	queueKey    = "report:queue"
	popInterval = 5 * time.Second
)

// Queue hands tasks from the API to the workers.
type Queue interface {
	Push(ctx context.Context, task Task) error
	// Pop blocks until a task is available or ctx is done.
	Pop(ctx context.Context) (Task, error)
}

type RedisQueue struct {
	rdb *goredis.Client
	key string
}

var _ Queue = (*RedisQueue)(nil)

func NewRedisQueue(rdb *goredis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: queueKey}
}

func (q *RedisQueue) Push(ctx context.Context, task Task) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, raw).Err()
}

func (q *RedisQueue) Pop(ctx context.Context) (Task, error) {
	for {
		res, err := q.rdb.BRPop(ctx, popInterval, q.key).Result()
		switch {
		case errors.Is(err, goredis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return Task{}, ctx.Err()
			}
			return Task{}, err
		}

		// BRPOP replies with the key followed by the value.
		var task Task
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return Task{}, err
		}
		return task, nil
	}
}

type MemoryQueue struct {
	tasks chan Task
}

var _ Queue = (*MemoryQueue)(nil)

func NewMemoryQueue(size int) *MemoryQueue {
	return &MemoryQueue{tasks: make(chan Task, size)}
}

func (q *MemoryQueue) Push(ctx context.Context, task Task) error {
	select {
	case q.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.New("queue is full")
	}
}

func (q *MemoryQueue) Pop(ctx context.Context) (Task, error) {
	select {
	case task := <-q.tasks:
		return task, nil
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}
