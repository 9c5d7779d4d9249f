package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"chain_chat/internal/model"
	redisSvc "chain_chat/internal/service/redis"
)

const (
	seqKey        = "ledger:seq"
	storedKey     = "ledger:stored"
	convKeyPrefix = "conv:"
)

type (
	// RedisLog keeps one redis list per conversation plus a global stored
	// stream. Events are JSON strings, appended with RPush so list position
	// matches ledger order.
	RedisLog struct {
		redis *redisSvc.RedisService
	}
)

func NewRedisLog(redis *redisSvc.RedisService) *RedisLog {
	return &RedisLog{redis: redis}
}

func convKey(conversation model.Hash) string {
	return convKeyPrefix + conversation.Hex()
}

func (l *RedisLog) NextSeq(ctx context.Context) (uint64, error) {
	seq, err := l.redis.Incr(ctx, seqKey)
	if err != nil {
		return 0, fmt.Errorf("incr seq: %w", err)
	}
	return uint64(seq), nil
}

func (l *RedisLog) Append(ctx context.Context, ev *model.MessageEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return l.redis.RPush(ctx, convKey(ev.ConversationID), data)
}

func (l *RedisLog) Range(ctx context.Context, conversation model.Hash, from, limit int64) ([]model.MessageEvent, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = from + limit - 1
	}

	vals, err := l.redis.LRange(ctx, convKey(conversation), from, stop)
	if err != nil {
		return nil, err
	}

	events := make([]model.MessageEvent, 0, len(vals))
	for _, v := range vals {
		var ev model.MessageEvent
		if err := json.Unmarshal([]byte(v), &ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (l *RedisLog) Len(ctx context.Context, conversation model.Hash) (int64, error) {
	return l.redis.LLen(ctx, convKey(conversation))
}

func (l *RedisLog) AppendStored(ctx context.Context, ev *model.StoredEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return l.redis.RPush(ctx, storedKey, data)
}

func (l *RedisLog) StoredEvents(ctx context.Context, from, limit int64) ([]model.StoredEvent, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = from + limit - 1
	}

	vals, err := l.redis.LRange(ctx, storedKey, from, stop)
	if err != nil {
		return nil, err
	}

	events := make([]model.StoredEvent, 0, len(vals))
	for _, v := range vals {
		var ev model.StoredEvent
		if err := json.Unmarshal([]byte(v), &ev); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}
