package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message types carried on the intake queue.
const (
	TypeScan      = "scan"
	TypeHeartbeat = "heartbeat"
)

// Message is one reader event in transit: a tag scan or a heartbeat,
// with a JSON body.
type Message struct {
	Type string
	Body []byte
}

// ScanPayload is the wire form of a tag scan.
type ScanPayload struct {
	TagID      string    `json:"tag_id"`
	ReaderID   string    `json:"reader_id"`
	Timestamp  time.Time `json:"timestamp"`
	ActionHint string    `json:"action_hint,omitempty"`
}

// HeartbeatPayload is the wire form of a reader liveness signal.
type HeartbeatPayload struct {
	ReaderID  string    `json:"reader_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewScan builds a scan message.
func NewScan(p ScanPayload) (Message, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TypeScan, Body: body}, nil
}

// NewHeartbeat builds a heartbeat message.
func NewHeartbeat(p HeartbeatPayload) (Message, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TypeHeartbeat, Body: body}, nil
}

// DecodeScan parses a TypeScan body.
func DecodeScan(msg Message) (ScanPayload, error) {
	var p ScanPayload
	err := json.Unmarshal(msg.Body, &p)
	return p, err
}

// DecodeHeartbeat parses a TypeHeartbeat body.
func DecodeHeartbeat(msg Message) (HeartbeatPayload, error) {
	var p HeartbeatPayload
	err := json.Unmarshal(msg.Body, &p)
	return p, err
}

// Queue is the abstraction over intake backends. Readers publish;
// the server consumes through a single drain loop.
type Queue interface {
	Publish(ctx context.Context, msg Message) error
	Consume(ctx context.Context) (<-chan Message, error)
}

// InMemory is a minimal channel-backed queue for dev/testing.
type InMemory struct {
	ch chan Message
}

// NewInMemory creates a bounded in-memory queue.
func NewInMemory(size int) *InMemory {
	return &InMemory{ch: make(chan Message, size)}
}

// Publish enqueues a message.
func (q *InMemory) Publish(ctx context.Context, msg Message) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume returns a channel for the drain loop.
func (q *InMemory) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			select {
			case msg := <-q.ch:
				out <- msg
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// RedisQueue implements a Redis list-backed queue so readers on other
// hosts can feed the same server.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue using LPUSH/BRPOP semantics.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = "rfidattend:events"
	}
	return &RedisQueue{client: client, key: key}
}

// Publish enqueues a message.
func (q *RedisQueue) Publish(ctx context.Context, msg Message) error {
	return q.client.LPush(ctx, q.key, serialize(msg)).Err()
}

// Consume streams messages using BRPOP.
func (q *RedisQueue) Consume(ctx context.Context) (<-chan Message, error) {
	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if ctx.Err() != nil {
					return
				}
				continue
			}
			if len(res) == 2 {
				if msg, err := deserialize(res[1]); err == nil {
					out <- msg
				}
			}
		}
	}()
	return out, nil
}

// serialize frames a message as Type|Body for the Redis list.
func serialize(msg Message) string {
	return msg.Type + "|" + string(msg.Body)
}

func deserialize(s string) (Message, error) {
	for i, r := range s {
		if r == '|' {
			return Message{Type: s[:i], Body: []byte(s[i+1:])}, nil
		}
	}
	return Message{Body: []byte(s)}, nil
}
