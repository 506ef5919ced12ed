package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"weekly-quiz-service/internal/domain"
)

func TestAutoFillMondayScenario(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()

	s1 := env.submitApproved(t, snippetRequest())
	s2 := env.submitApproved(t, snippetRequest())
	tr := env.submitApproved(t, triviaRequest())

	assigned, err := env.scheduler.AutoFill(ctx, 14)
	if err != nil {
		t.Fatalf("autofill: %v", err)
	}
	want := map[string]string{
		"2026-10-19": s1.ID,
		"2026-10-22": tr.ID,
		"2026-10-26": s2.ID,
	}
	if len(assigned) != len(want) {
		t.Fatalf("expected %d assignments, got %+v", len(want), assigned)
	}
	for _, a := range assigned {
		if want[a.Date] != a.QuestionID {
			t.Fatalf("unexpected assignment %+v", a)
		}
	}

	entries, err := env.store.ListEntries(ctx, "2026-10-19", "2026-11-02")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("exhausted slots must not create rows, got %+v", entries)
	}
}

func TestAutoFillIsIdempotent(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()
	env.submitApproved(t, snippetRequest())
	env.submitApproved(t, triviaRequest())

	if _, err := env.scheduler.AutoFill(ctx, 14); err != nil {
		t.Fatalf("first autofill: %v", err)
	}
	before, _ := env.store.ListEntries(ctx, "2026-10-01", "2026-12-31")

	again, err := env.scheduler.AutoFill(ctx, 14)
	if err != nil {
		t.Fatalf("second autofill: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no new assignments, got %+v", again)
	}
	after, _ := env.store.ListEntries(ctx, "2026-10-01", "2026-12-31")
	if len(before) != len(after) {
		t.Fatalf("schedule changed: %+v vs %+v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("schedule changed at %d: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestAutoFillSkipsQuestionsAlreadyScheduled(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()
	old := env.submitApproved(t, snippetRequest())
	fresh := env.submitApproved(t, snippetRequest())

	// old already ran last week.
	if ok, err := env.store.CreateEntry(ctx, domain.ScheduleEntry{
		ID: "past", Date: "2026-10-12", Kind: domain.KindSnippet, QuestionID: old.ID,
	}); err != nil || !ok {
		t.Fatalf("seed past entry: %v", err)
	}
	// An empty placeholder row for today gets filled rather than duplicated.
	if ok, err := env.store.CreateEntry(ctx, domain.ScheduleEntry{
		ID: "placeholder", Date: "2026-10-19", Kind: domain.KindSnippet,
	}); err != nil || !ok {
		t.Fatalf("seed placeholder: %v", err)
	}

	assigned, err := env.scheduler.AutoFill(ctx, 7)
	if err != nil {
		t.Fatalf("autofill: %v", err)
	}
	if len(assigned) != 1 || assigned[0].QuestionID != fresh.ID || assigned[0].Date != "2026-10-19" {
		t.Fatalf("expected fresh question on today's placeholder, got %+v", assigned)
	}
	entries, _ := env.store.ListEntries(ctx, "2026-10-19", "2026-10-19")
	if len(entries) != 1 || entries[0].ID != "placeholder" {
		t.Fatalf("expected placeholder filled in place, got %+v", entries)
	}
}

func TestAdminScheduleOperationsRequireSecret(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()

	_, err := env.scheduler.AdminAutoFill(ctx, "wrong", 14)
	expectCode(t, err, domain.ErrUnauthorized)
	_, err = env.scheduler.AdminActivateToday(ctx, "")
	expectCode(t, err, domain.ErrUnauthorized)
	_, err = env.scheduler.Upcoming(ctx, "wrong")
	expectCode(t, err, domain.ErrUnauthorized)

	env.submitApproved(t, triviaRequest())
	if _, err := env.scheduler.AdminAutoFill(ctx, adminSecret, 0); err != nil {
		t.Fatalf("autofill: %v", err)
	}
	upcoming, err := env.scheduler.Upcoming(ctx, adminSecret)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Date != "2026-10-22" {
		t.Fatalf("expected thursday entry, got %+v", upcoming)
	}
}

func TestActivateTodayLeavesSingleActiveEntry(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()
	last := env.submitApproved(t, snippetRequest())
	today := env.submitApproved(t, snippetRequest())

	for _, e := range []domain.ScheduleEntry{
		{ID: "e1", Date: "2026-10-12", Kind: domain.KindSnippet, QuestionID: last.ID},
		{ID: "e2", Date: "2026-10-19", Kind: domain.KindSnippet, QuestionID: today.ID},
	} {
		if _, err := env.store.CreateEntry(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	// Leave last week's entry erroneously active.
	env.set(time.Date(2026, time.October, 12, 8, 0, 0, 0, time.UTC))
	if ok, err := env.scheduler.ActivateToday(ctx); err != nil || !ok {
		t.Fatalf("activate last week: ok=%v err=%v", ok, err)
	}
	env.set(monday)

	ok, err := env.scheduler.AdminActivateToday(ctx, adminSecret)
	if err != nil || !ok {
		t.Fatalf("activate: ok=%v err=%v", ok, err)
	}
	entries, _ := env.store.ListEntries(ctx, "2026-10-01", "2026-10-31")
	var active []string
	for _, e := range entries {
		if e.IsActive {
			active = append(active, e.Date)
			if !e.PreviousAnswerRevealed {
				t.Fatalf("expected previous answer revealed on %s", e.Date)
			}
		}
	}
	if len(active) != 1 || active[0] != "2026-10-19" {
		t.Fatalf("expected only today active, got %v", active)
	}

	// A day without an entry deactivates everything.
	env.set(monday.AddDate(0, 0, 1))
	if ok, err := env.scheduler.ActivateToday(ctx); err != nil || ok {
		t.Fatalf("expected nothing activated on tuesday: ok=%v err=%v", ok, err)
	}
	entries, _ = env.store.ListEntries(ctx, "2026-10-01", "2026-10-31")
	for _, e := range entries {
		if e.IsActive {
			t.Fatalf("expected no active entry, got %+v", e)
		}
	}
}

func TestCurrentWithoutActiveEntryHintsNextSlot(t *testing.T) {
	tuesday := monday.AddDate(0, 0, 1)
	env := newTestEnv(t, tuesday)

	current, err := env.scheduler.Current(context.Background(), "10.0.0.1")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.Active || current.Question != nil {
		t.Fatalf("expected inactive quiz, got %+v", current)
	}
	if current.Next == nil || current.Next.Date != "2026-10-22" || current.Next.Kind != domain.KindTrivia || current.Next.Weekday != "Thursday" {
		t.Fatalf("unexpected next slot %+v", current.Next)
	}
}

func TestCurrentHidesSourceAndRevealsPreviousAnswer(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()

	invite, _ := env.contributors.CreateInvite(ctx, adminSecret, "Noa")
	if _, err := env.contributors.Register(ctx, invite.InviteCode, "login-noa", "Noa", "https://img/noa.png"); err != nil {
		t.Fatalf("register: %v", err)
	}
	prevReq := snippetRequest()
	prevReq.LoginID = "login-noa"
	prev := env.submitApproved(t, prevReq)
	cur := env.submitApproved(t, snippetRequest())

	if _, err := env.store.CreateEntry(ctx, domain.ScheduleEntry{ID: "p", Date: "2026-10-15", Kind: domain.KindSnippet, QuestionID: prev.ID}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	env.playable(t, cur)

	if _, err := env.attempts.Guess(ctx, cur.ID, "10.0.0.1", domain.Guess{Artist: "x", Track: "y"}); err != nil {
		t.Fatalf("guess: %v", err)
	}

	current, err := env.scheduler.Current(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !current.Active || current.Question == nil || current.Date != "2026-10-19" {
		t.Fatalf("expected active quiz, got %+v", current)
	}
	view := current.Question
	if !strings.HasPrefix(view.AudioURL, "/api/audio?id=") || strings.Contains(view.AudioURL, "dQw4w9WgXcQ") {
		t.Fatalf("expected obfuscated proxy url, got %q", view.AudioURL)
	}
	if view.StartSeconds != 42 || view.DurationSeconds != 10 {
		t.Fatalf("unexpected timing %+v", view)
	}
	if current.Attempts == nil || current.Attempts.AttemptsUsed != 1 || current.Attempts.AttemptsRemaining != 2 || current.Attempts.Solved {
		t.Fatalf("unexpected attempt state %+v", current.Attempts)
	}
	sol := current.Previous
	if sol == nil || sol.Summary != "Infected Mushroom - Becoming Insane" || sol.Answer != "Infected Mushroom" {
		t.Fatalf("unexpected previous solution %+v", sol)
	}
	if sol.ContributorName != "Noa" || sol.ContributorPhoto != "https://img/noa.png" {
		t.Fatalf("expected contributor credit, got %+v", sol)
	}
}

func TestArchiveListsPastQuestionsWithoutAnswers(t *testing.T) {
	env := newTestEnv(t, monday)
	ctx := context.Background()
	older := env.submitApproved(t, triviaRequest())
	newer := env.submitApproved(t, snippetRequest())
	future := env.submitApproved(t, triviaRequest())

	for _, e := range []domain.ScheduleEntry{
		{ID: "a", Date: "2026-10-08", Kind: domain.KindTrivia, QuestionID: older.ID},
		{ID: "b", Date: "2026-10-12", Kind: domain.KindSnippet, QuestionID: newer.ID},
		{ID: "c", Date: "2026-10-22", Kind: domain.KindTrivia, QuestionID: future.ID},
	} {
		if _, err := env.store.CreateEntry(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	items, err := env.scheduler.Archive(ctx, 0)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if len(items) != 2 || items[0].Question.ID != newer.ID || items[1].Question.ID != older.ID {
		t.Fatalf("expected past questions newest first, got %+v", items)
	}
	if items[1].Question.Prompt == "" {
		t.Fatalf("expected trivia prompt in archive view")
	}
}
