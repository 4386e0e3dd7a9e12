package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// State is the progress of a task as written by the workers.
type State string

const (
	StateQueued    State = "queued"
	StateStarted   State = "started"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Status is what a poll reports back to the caller.
type Status string

const (
	StatusNotFound   Status = "not_found"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
	StatusConsumed   Status = "consumed"
)

type Poll struct {
	TaskID string
	Status Status
	Result string
	Error  string
}

// StatusStore keeps task progress and results. A result is handed out by Consume at most once;
// later polls see the task as consumed.
type StatusStore interface {
	Create(ctx context.Context, id string) error
	Start(ctx context.Context, id string) error
	Succeed(ctx context.Context, id, result string) error
	Fail(ctx context.Context, id, msg string) error
	Consume(ctx context.Context, id string) (Poll, error)
}

type outcome struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func poll(id string, state State, out *outcome) Poll {
	switch {
	case out != nil && out.Error != "":
		return Poll{TaskID: id, Status: StatusFailed, Error: out.Error}
	case out != nil:
		return Poll{TaskID: id, Status: StatusDone, Result: out.Result}
	case state == StateSucceeded || state == StateFailed:
		return Poll{TaskID: id, Status: StatusConsumed}
	default:
		return Poll{TaskID: id, Status: StatusProcessing}
	}
}

type RedisStatusStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

var _ StatusStore = (*RedisStatusStore)(nil)

func NewRedisStatusStore(rdb *goredis.Client, ttl time.Duration) *RedisStatusStore {
	return &RedisStatusStore{rdb: rdb, ttl: ttl}
}

func progressKey(id string) string {
	return fmt.Sprintf("report:progress:%s", id)
}

func resultKey(id string) string {
	return fmt.Sprintf("report:result:%s", id)
}

func (s *RedisStatusStore) Create(ctx context.Context, id string) error {
	return s.rdb.Set(ctx, progressKey(id), string(StateQueued), s.ttl).Err()
}

func (s *RedisStatusStore) Start(ctx context.Context, id string) error {
	return s.rdb.Set(ctx, progressKey(id), string(StateStarted), s.ttl).Err()
}

func (s *RedisStatusStore) Succeed(ctx context.Context, id, result string) error {
	return s.finish(ctx, id, StateSucceeded, outcome{Result: result})
}

func (s *RedisStatusStore) Fail(ctx context.Context, id, msg string) error {
	return s.finish(ctx, id, StateFailed, outcome{Error: msg})
}

func (s *RedisStatusStore) finish(ctx context.Context, id string, state State, out outcome) error {
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, resultKey(id), raw, s.ttl)
		pipe.Set(ctx, progressKey(id), string(state), s.ttl)
		return nil
	})
	return err
}

func (s *RedisStatusStore) Consume(ctx context.Context, id string) (Poll, error) {
	state, err := s.rdb.Get(ctx, progressKey(id)).Result()
	if errors.Is(err, goredis.Nil) {
		return Poll{TaskID: id, Status: StatusNotFound}, nil
	}
	if err != nil {
		return Poll{}, err
	}

	raw, err := s.rdb.GetDel(ctx, resultKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return poll(id, State(state), nil), nil
	}
	if err != nil {
		return Poll{}, err
	}

	var out outcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return Poll{}, err
	}
	return poll(id, State(state), &out), nil
}

type memoryEntry struct {
	state     State
	outcome   *outcome
	expiresAt time.Time
}

type MemoryStatusStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry
}

var _ StatusStore = (*MemoryStatusStore)(nil)

func NewMemoryStatusStore(ttl time.Duration) *MemoryStatusStore {
	return &MemoryStatusStore{ttl: ttl, entries: make(map[string]*memoryEntry)}
}

func (s *MemoryStatusStore) set(id string, state State, out *outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || s.expired(e) {
		e = &memoryEntry{}
		s.entries[id] = e
	}
	e.state = state
	if out != nil {
		e.outcome = out
	}
	e.expiresAt = time.Now().Add(s.ttl)
}

func (s *MemoryStatusStore) expired(e *memoryEntry) bool {
	return s.ttl > 0 && time.Now().After(e.expiresAt)
}

func (s *MemoryStatusStore) Create(_ context.Context, id string) error {
	s.set(id, StateQueued, nil)
	return nil
}

func (s *MemoryStatusStore) Start(_ context.Context, id string) error {
	s.set(id, StateStarted, nil)
	return nil
}

func (s *MemoryStatusStore) Succeed(_ context.Context, id, result string) error {
	s.set(id, StateSucceeded, &outcome{Result: result})
	return nil
}

func (s *MemoryStatusStore) Fail(_ context.Context, id, msg string) error {
	s.set(id, StateFailed, &outcome{Error: msg})
	return nil
}

func (s *MemoryStatusStore) Consume(_ context.Context, id string) (Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || s.expired(e) {
		delete(s.entries, id)
		return Poll{TaskID: id, Status: StatusNotFound}, nil
	}

	out := e.outcome
	e.outcome = nil
	return poll(id, e.state, out), nil
}
