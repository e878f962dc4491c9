package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"mindmate/internal/store"
)

const recordsKey = "triage_log_records"

// Queue buffers anonymized triage records between the request path and the
// worker that persists them. The request path only ever pays one LPUSH.
type Queue struct {
	client *redis.Client
}

func New(url string) (*Queue, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	return &Queue{client: client}, nil
}

func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

func (q *Queue) Push(ctx context.Context, rec store.TriageRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, recordsKey, payload).Err()
}

func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (store.TriageRecord, error) {
	var rec store.TriageRecord
	res, err := q.client.BRPop(ctx, timeout, recordsKey).Result()
	if err != nil {
		return rec, err
	}
	if len(res) < 2 {
		return rec, redis.Nil
	}
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return rec, err
	}
	return rec, nil
}

func (q *Queue) Depth(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, recordsKey).Result()
}

func (q *Queue) Close() error {
	return q.client.Close()
}
