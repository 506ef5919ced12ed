package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"weekly-quiz-service/internal/domain"
)

// AnswerKeyLoader fetches accepted answers from the backing store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error)
}

// AnswerKeyCache caches answer keys with a TTL to avoid repeated DB hits.
type AnswerKeyCache struct {
	loader AnswerKeyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedKey
}

type cachedKey struct {
	key       domain.AnswerKey
	expiresAt time.Time
}

func NewAnswerKeyCache(loader AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedKey),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	if key, ok := c.lookup(questionID); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(questionID, func() (interface{}, error) {
		if key, ok := c.lookup(questionID); ok {
			return key, nil
		}
		key, err := c.loader.LoadAnswerKey(ctx, questionID)
		if err != nil {
			return domain.AnswerKey{}, err
		}

		c.mu.Lock()
		c.cache[questionID] = cachedKey{
			key:       key,
			expiresAt: c.clock().Add(c.ttlWithJitterLocked()),
		}
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

// Invalidate drops a cached key, e.g. after moderation.
func (c *AnswerKeyCache) Invalidate(_ context.Context, questionID string) error {
	c.mu.Lock()
	delete(c.cache, questionID)
	c.mu.Unlock()
	c.sf.Forget(questionID)
	return nil
}

func (c *AnswerKeyCache) lookup(questionID string) (domain.AnswerKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[questionID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.AnswerKey{}, false
	}
	return entry.key, true
}

func (c *AnswerKeyCache) ttlWithJitterLocked() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticAnswerKeys is a loader backed by a map (useful for tests/demos).
type StaticAnswerKeys struct {
	keys map[string]domain.AnswerKey
}

func NewStaticAnswerKeys(keys map[string]domain.AnswerKey) *StaticAnswerKeys {
	return &StaticAnswerKeys{keys: keys}
}

func (l *StaticAnswerKeys) LoadAnswerKey(_ context.Context, questionID string) (domain.AnswerKey, error) {
	if key, ok := l.keys[questionID]; ok {
		return key, nil
	}
	return domain.AnswerKey{}, domain.ErrQuestionNotFound
}
