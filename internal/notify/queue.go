package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when a queue cannot take more messages.
var ErrQueueFull = errors.New("notification queue full")

// Queue decouples message production (request path) from delivery (workers).
type Queue interface {
	// Enqueue must not block the caller on I/O.
	Enqueue(ctx context.Context, msg Message) error
	// Dequeue blocks until a message is available or ctx is done.
	Dequeue(ctx context.Context) (Message, error)
}

// MemoryQueue is a bounded channel queue.
type MemoryQueue struct {
	ch chan Message
}

// NewMemoryQueue creates a queue holding at most size messages.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{ch: make(chan Message, size)}
}

func (q *MemoryQueue) Enqueue(_ context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Message, error) {
	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case msg := <-q.ch:
		return msg, nil
	}
}

// Len reports buffered messages.
func (q *MemoryQueue) Len() int {
	return len(q.ch)
}

// RedisQueue stores messages in a Redis list so they survive a restart of
// the API process. Producers LPUSH, workers BRPOP. Enqueue only fills a
// bounded outbox; Run forwards it to Redis so a slow or unreachable server
// never blocks the caller.
type RedisQueue struct {
	client      *redis.Client
	key         string
	outbox      chan Message
	logger      *zap.Logger
	pollTimeout time.Duration
	pushTimeout time.Duration
}

// NewRedisQueue builds a queue on the given list key with an outbox of
// outboxSize messages.
func NewRedisQueue(client *redis.Client, key string, outboxSize int, logger *zap.Logger) *RedisQueue {
	if outboxSize <= 0 {
		outboxSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisQueue{
		client:      client,
		key:         key,
		outbox:      make(chan Message, outboxSize),
		logger:      logger,
		pollTimeout: time.Second,
		pushTimeout: 2 * time.Second,
	}
}

// Enqueue hands msg to the outbox without any network I/O. It returns
// ErrQueueFull when the outbox is full.
func (q *RedisQueue) Enqueue(_ context.Context, msg Message) error {
	select {
	case q.outbox <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run pushes outbox messages to Redis until ctx is done. A message that
// cannot be pushed within the push timeout is logged and dropped.
func (q *RedisQueue) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-q.outbox:
			if err := q.push(ctx, msg); err != nil && ctx.Err() == nil {
				q.logger.Error("push notification to redis",
					zap.String("message_id", msg.ID),
					zap.String("complaint_id", msg.ComplaintID),
					zap.Error(err))
			}
		}
	}
}

func (q *RedisQueue) push(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pushCtx, cancel := context.WithTimeout(ctx, q.pushTimeout)
	defer cancel()
	return q.client.LPush(pushCtx, q.key, payload).Err()
}

// Pending reports messages waiting in the outbox.
func (q *RedisQueue) Pending() int {
	return len(q.outbox)
}

func (q *RedisQueue) Dequeue(ctx context.Context) (Message, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}
		res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Message{}, ctxErr
			}
			return Message{}, err
		}
		// BRPOP returns [key, value].
		if len(res) != 2 {
			continue
		}
		var msg Message
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			return Message{}, err
		}
		return msg, nil
	}
}
