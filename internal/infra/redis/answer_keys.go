package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"weekly-quiz-service/internal/domain"
)

// AnswerKeyLoader fetches accepted answers from the backing store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error)
}

// AnswerKeyCache caches answer keys in Redis (hash per question) and falls back
// to a loader on cache miss. Layout:
//
//	HSET quiz:question:{id}:key kind {kind} status {status} artists {json} tracks {json} answers {json}
type AnswerKeyCache struct {
	client *redis.Client
	loader AnswerKeyLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, loader AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	if key, ok := c.read(ctx, questionID); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(questionID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if key, ok := c.read(ctx, questionID); ok {
			return key, nil
		}

		key, err := c.loader.LoadAnswerKey(ctx, questionID)
		if err != nil {
			return domain.AnswerKey{}, err
		}

		fields, err := encodeKey(key)
		if err != nil {
			return key, nil
		}
		redisKey := c.keyFor(questionID)
		pipe := c.client.Pipeline()
		pipe.HSet(ctx, redisKey, fields)
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, redisKey, ttl)
		}
		// Best effort: a failed write only costs another load.
		_, _ = pipe.Exec(ctx)
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

// Invalidate drops the cached key, e.g. after moderation.
func (c *AnswerKeyCache) Invalidate(ctx context.Context, questionID string) error {
	c.sf.Forget(questionID)
	return c.client.Del(ctx, c.keyFor(questionID)).Err()
}

func (c *AnswerKeyCache) read(ctx context.Context, questionID string) (domain.AnswerKey, bool) {
	fields, err := c.client.HGetAll(ctx, c.keyFor(questionID)).Result()
	if err != nil || len(fields) == 0 {
		return domain.AnswerKey{}, false
	}
	key, err := decodeKey(questionID, fields)
	if err != nil {
		return domain.AnswerKey{}, false
	}
	return key, true
}

func (c *AnswerKeyCache) keyFor(questionID string) string {
	return "quiz:question:" + questionID + ":key"
}

func encodeKey(key domain.AnswerKey) (map[string]interface{}, error) {
	fields := map[string]interface{}{"kind": string(key.Kind), "status": string(key.Status)}
	for name, values := range map[string][]string{
		"artists": key.Artists,
		"tracks":  key.Tracks,
		"answers": key.Answers,
	} {
		raw, err := json.Marshal(values)
		if err != nil {
			return nil, err
		}
		fields[name] = string(raw)
	}
	return fields, nil
}

func decodeKey(questionID string, fields map[string]string) (domain.AnswerKey, error) {
	key := domain.AnswerKey{
		QuestionID: questionID,
		Kind:       domain.QuestionKind(fields["kind"]),
		Status:     domain.QuestionStatus(fields["status"]),
	}
	for name, dst := range map[string]*[]string{
		"artists": &key.Artists,
		"tracks":  &key.Tracks,
		"answers": &key.Answers,
	} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(raw), dst); err != nil {
			return domain.AnswerKey{}, err
		}
	}
	return key, nil
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
