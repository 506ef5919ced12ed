package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/domain"
	"weekly-quiz-service/internal/infra/memory"
	"weekly-quiz-service/internal/infra/store"
	"weekly-quiz-service/internal/infra/store/storetest"
	"weekly-quiz-service/internal/logging"
	"weekly-quiz-service/internal/mediaref"
)

const adminSecret = "admin-secret"

// monday is 2026-10-19, a Monday.
var monday = time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	store        *store.Store
	questions    *app.QuestionService
	scheduler    *app.Scheduler
	attempts     *app.AttemptService
	leaderboard  *app.LeaderboardService
	contributors *app.ContributorService
	keyLoads     *countingLoader

	mu  sync.Mutex
	now time.Time
}

// countingLoader counts answer-key loads that reach the store.
type countingLoader struct {
	next memory.AnswerKeyLoader

	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.next.LoadAnswerKey(ctx, questionID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	env := &testEnv{store: storetest.Open(t), now: now}
	log := logging.Discard()
	clock := app.NewClockWithNow(time.UTC, env.currentTime)
	admin := app.NewAdminGate(adminSecret)
	env.keyLoads = &countingLoader{next: env.store}
	keys := memory.NewAnswerKeyCache(env.keyLoads, time.Minute)

	obf, err := mediaref.NewObfuscator("test-obfuscation-key")
	if err != nil {
		t.Fatalf("obfuscator: %v", err)
	}
	audio := app.NewAudioProxy(obf, nil, "/api/audio")

	env.leaderboard = app.NewLeaderboardService(env.store, log)
	env.questions = app.NewQuestionService(env.store, env.store, keys, admin, clock, log)
	env.scheduler = app.NewScheduler(env.store, env.store, env.store, env.store, audio, admin, clock, app.DefaultHorizonDays, log)
	env.attempts = app.NewAttemptService(env.store, env.store, env.store, keys, env.leaderboard, clock, log)
	env.contributors = app.NewContributorService(env.store, admin, clock, log)
	return env
}

func (e *testEnv) currentTime() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.now
}

func (e *testEnv) set(now time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
}

func (e *testEnv) advance(d time.Duration) {
	e.mu.Lock()
	e.now = e.now.Add(d)
	e.mu.Unlock()
}

// submitApproved stores an admin-approved question and returns it.
func (e *testEnv) submitApproved(t *testing.T, req app.SubmitRequest) domain.Question {
	t.Helper()
	req.Secret = adminSecret
	q, err := e.questions.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Distinct creation times keep the oldest-first pick deterministic.
	e.advance(time.Second)
	return q
}

func snippetRequest() app.SubmitRequest {
	return app.SubmitRequest{
		Kind:         "snippet",
		SourceURL:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		StartSeconds: 42,
		Artists:      []string{"Infected Mushroom", "אינפקטד"},
		Tracks:       []string{"Becoming Insane"},
	}
}

func triviaRequest() app.SubmitRequest {
	return app.SubmitRequest{
		Kind:    "trivia",
		Prompt:  "Which city hosts the festival?",
		Answers: []string{"Tel Aviv", "TLV"},
	}
}

// playable schedules q for today and activates it.
func (e *testEnv) playable(t *testing.T, q domain.Question) {
	t.Helper()
	ctx := context.Background()
	created, err := e.store.CreateEntry(ctx, domain.ScheduleEntry{
		ID:         "entry-" + q.ID,
		Date:       e.currentTime().Format(domain.DateLayout),
		Kind:       q.Kind,
		QuestionID: q.ID,
	})
	if err != nil || !created {
		t.Fatalf("create entry: created=%v err=%v", created, err)
	}
	if _, err := e.scheduler.ActivateToday(ctx); err != nil {
		t.Fatalf("activate: %v", err)
	}
}

func expectCode(t *testing.T, err error, want *domain.Error) {
	t.Helper()
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != want.Code {
		t.Fatalf("expected %s, got %v", want.Code, err)
	}
}
