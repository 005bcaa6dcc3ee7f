package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/lumenwiki/platform/modules/mentions/domain"
)

const defaultRedisKey = "mentions:jobs"

// RedisQueue keeps jobs in a Redis list so the backlog survives a process
// restart and can be shared by several nodes. Delivery stays best-effort: a
// job popped by a crashing worker is lost.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) (*RedisQueue, error) {
	if client == nil {
		return nil, errors.New("redis queue: client is required")
	}
	if key == "" {
		key = defaultRedisKey
	}
	return &RedisQueue{client: client, key: key}, nil
}

func (q *RedisQueue) Put(ctx context.Context, job domain.MentionsJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "redis queue: marshal job")
	}
	if err := q.client.RPush(ctx, q.key, raw).Err(); err != nil {
		return errors.Wrap(err, "redis queue: push job")
	}
	return nil
}

func (q *RedisQueue) Poll(ctx context.Context, timeout time.Duration) (domain.MentionsJob, bool, error) {
	res, err := q.client.BLPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.MentionsJob{}, false, nil
	}
	if err != nil {
		return domain.MentionsJob{}, false, errors.Wrap(err, "redis queue: pop job")
	}
	// BLPOP returns (key, value).
	if len(res) != 2 {
		return domain.MentionsJob{}, false, errors.Errorf("redis queue: unexpected reply length %d", len(res))
	}

	var job domain.MentionsJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return domain.MentionsJob{}, false, errors.Wrap(err, "redis queue: unmarshal job")
	}
	return job, true, nil
}

func (q *RedisQueue) Size() int {
	n, err := q.client.LLen(context.Background(), q.key).Result()
	if err != nil {
		return 0
	}
	return int(n)
}
