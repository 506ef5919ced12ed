package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"weekly-quiz-service/internal/domain"
	"weekly-quiz-service/internal/infra/memory"
)

func TestAnswerKeyCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{AnswerKeyLoader: memory.NewStaticAnswerKeys(sampleKeys())}
	cache := NewAnswerKeyCache(client, loader, time.Minute)

	key, err := cache.GetAnswerKey(context.Background(), "q2")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:question:q2:key") {
		t.Fatalf("expected redis hash to be written")
	}
	if ttl := mr.TTL("quiz:question:q2:key"); ttl < time.Minute || ttl > 66*time.Second {
		t.Fatalf("expected ttl with at most 10%% jitter, got %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := cache.GetAnswerKey(context.Background(), "q2")
	if err != nil {
		t.Fatalf("get cached key: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Kind != key.Kind || cached.Status != domain.StatusApproved || len(cached.Artists) != 2 || cached.Artists[1] != "אינפקטד" || cached.Tracks[0] != "Becoming Insane" {
		t.Fatalf("cached key mismatch: %+v", cached)
	}
	if !cached.Matches(domain.Guess{Artist: "infected mushroom ", Track: "Becoming Insane"}) {
		t.Fatalf("expected cached key to accept normalized guess")
	}
}

func TestAnswerKeyCacheInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{AnswerKeyLoader: memory.NewStaticAnswerKeys(sampleKeys())}
	cache := NewAnswerKeyCache(newClient(mr), loader, time.Minute)

	_, _ = cache.GetAnswerKey(context.Background(), "q1")
	if err := cache.Invalidate(context.Background(), "q1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:question:q1:key") {
		t.Fatalf("expected redis key to be removed")
	}
	_, _ = cache.GetAnswerKey(context.Background(), "q1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d", loader.calls)
	}
}

func TestAnswerKeyCacheMissIsNotCached(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewAnswerKeyCache(newClient(mr), memory.NewStaticAnswerKeys(sampleKeys()), time.Minute)
	if _, err := cache.GetAnswerKey(context.Background(), "missing"); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if mr.Exists("quiz:question:missing:key") {
		t.Fatalf("expected no redis key for a miss")
	}
}

type countingLoader struct {
	AnswerKeyLoader
	calls int
}

func (l *countingLoader) LoadAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	l.calls++
	return l.AnswerKeyLoader.LoadAnswerKey(ctx, questionID)
}

func sampleKeys() map[string]domain.AnswerKey {
	return map[string]domain.AnswerKey{
		"q1": {QuestionID: "q1", Kind: domain.KindTrivia, Answers: []string{"Tel Aviv"}},
		"q2": {
			QuestionID: "q2",
			Kind:       domain.KindSnippet,
			Status:     domain.StatusApproved,
			Artists:    []string{"Infected Mushroom", "אינפקטד"},
			Tracks:     []string{"Becoming Insane"},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
