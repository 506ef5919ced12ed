package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"weekly-quiz-service/internal/domain"
)

const (
	DefaultHorizonDays = 14
	archivePageSize    = 50
)

// AudioLinker turns a raw source reference into a same-origin proxy URL.
type AudioLinker interface {
	ProxyURL(rawSource string, startSeconds int) (string, bool)
}

// Scheduler places approved questions on calendar slots and tracks the live one.
type Scheduler struct {
	questions    QuestionRepository
	schedule     ScheduleRepository
	attempts     AttemptRepository
	contributors ContributorRepository
	audio        AudioLinker
	admin        AdminGate
	clock        Clock
	horizon      int
	log          *logrus.Entry
}

func NewScheduler(questions QuestionRepository, schedule ScheduleRepository, attempts AttemptRepository, contributors ContributorRepository, audio AudioLinker, admin AdminGate, clock Clock, horizon int, log *logrus.Entry) *Scheduler {
	if horizon <= 0 {
		horizon = DefaultHorizonDays
	}
	return &Scheduler{
		questions:    questions,
		schedule:     schedule,
		attempts:     attempts,
		contributors: contributors,
		audio:        audio,
		admin:        admin,
		clock:        clock,
		horizon:      horizon,
		log:          log,
	}
}

// AutoFill assigns approved questions to the slots between today and
// today+horizonDays. Re-running it with an unchanged pool is a no-op.
func (s *Scheduler) AutoFill(ctx context.Context, horizonDays int) ([]domain.Assignment, error) {
	if horizonDays <= 0 {
		horizonDays = s.horizon
	}
	start := s.midnight()
	from := start.Format(domain.DateLayout)
	to := start.AddDate(0, 0, horizonDays).Format(domain.DateLayout)

	existing, err := s.schedule.ListEntries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]domain.ScheduleEntry, len(existing))
	for _, e := range existing {
		byDate[e.Date] = e
	}

	pools := make(map[domain.QuestionKind][]domain.Question)
	loaded := make(map[domain.QuestionKind]bool)
	var assigned []domain.Assignment

	for i := 0; i <= horizonDays; i++ {
		day := start.AddDate(0, 0, i)
		kind, ok := domain.SlotKind(day.Weekday())
		if !ok {
			continue
		}
		date := day.Format(domain.DateLayout)
		entry, exists := byDate[date]
		if exists && entry.QuestionID != "" {
			continue
		}

		if !loaded[kind] {
			pool, err := s.questions.UnscheduledApproved(ctx, kind)
			if err != nil {
				return assigned, err
			}
			pools[kind] = pool
			loaded[kind] = true
		}

		for len(pools[kind]) > 0 {
			q := pools[kind][0]
			pools[kind] = pools[kind][1:]

			var placed bool
			if exists {
				placed, err = s.schedule.FillEntry(ctx, entry.ID, q.ID)
			} else {
				placed, err = s.schedule.CreateEntry(ctx, domain.ScheduleEntry{
					ID:         newEntryID(),
					Date:       date,
					Kind:       kind,
					QuestionID: q.ID,
				})
			}
			if err != nil {
				return assigned, err
			}
			if placed {
				assigned = append(assigned, domain.Assignment{Date: date, Kind: kind, QuestionID: q.ID})
				break
			}

			// Lost a race: either the slot or the question was taken concurrently.
			taken, err := s.slotTaken(ctx, date)
			if err != nil {
				return assigned, err
			}
			if taken {
				pools[kind] = append([]domain.Question{q}, pools[kind]...)
				break
			}
		}
	}

	s.log.WithFields(logrus.Fields{
		"from":     from,
		"to":       to,
		"assigned": len(assigned),
	}).Info("schedule auto-filled")
	return assigned, nil
}

func (s *Scheduler) slotTaken(ctx context.Context, date string) (bool, error) {
	entries, err := s.schedule.ListEntries(ctx, date, date)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.QuestionID != "" {
			return true, nil
		}
	}
	return false, nil
}

// ActivateToday makes today's entry the single active one.
func (s *Scheduler) ActivateToday(ctx context.Context) (bool, error) {
	today := s.clock.Today()
	activated, err := s.schedule.ActivateDate(ctx, today)
	if err != nil {
		return false, err
	}
	s.log.WithFields(logrus.Fields{"date": today, "activated": activated}).Info("schedule activation run")
	return activated, nil
}

// AdminAutoFill is AutoFill behind the admin secret.
func (s *Scheduler) AdminAutoFill(ctx context.Context, secret string, horizonDays int) ([]domain.Assignment, error) {
	if err := s.admin.Check(secret); err != nil {
		return nil, err
	}
	return s.AutoFill(ctx, horizonDays)
}

// AdminActivateToday is ActivateToday behind the admin secret.
func (s *Scheduler) AdminActivateToday(ctx context.Context, secret string) (bool, error) {
	if err := s.admin.Check(secret); err != nil {
		return false, err
	}
	return s.ActivateToday(ctx)
}

// Upcoming lists entries from today to the end of the horizon.
func (s *Scheduler) Upcoming(ctx context.Context, secret string) ([]domain.ScheduleEntry, error) {
	if err := s.admin.Check(secret); err != nil {
		return nil, err
	}
	start := s.midnight()
	return s.schedule.ListEntries(ctx, start.Format(domain.DateLayout), start.AddDate(0, 0, s.horizon).Format(domain.DateLayout))
}

// Current returns the live quiz for callerIdentity, or a hint of the next slot.
func (s *Scheduler) Current(ctx context.Context, callerIdentity string) (domain.CurrentQuiz, error) {
	today := s.clock.Today()
	entry, err := s.schedule.ActiveEntry(ctx, today)
	if errors.Is(err, domain.ErrScheduleNotFound) {
		return domain.CurrentQuiz{Active: false, Next: s.nextSlot()}, nil
	}
	if err != nil {
		return domain.CurrentQuiz{}, err
	}

	q, err := s.questions.GetQuestion(ctx, entry.QuestionID)
	if errors.Is(err, domain.ErrQuestionNotFound) {
		return domain.CurrentQuiz{Active: false, Next: s.nextSlot()}, nil
	}
	if err != nil {
		return domain.CurrentQuiz{}, err
	}

	attempts, err := s.attempts.ListAttempts(ctx, q.ID, callerIdentity)
	if err != nil {
		return domain.CurrentQuiz{}, err
	}
	view := s.view(q)
	state := attemptState(attempts)
	current := domain.CurrentQuiz{
		Active:   true,
		Date:     entry.Date,
		Question: &view,
		Attempts: &state,
	}

	if entry.PreviousAnswerRevealed {
		prev, err := s.previousSolution(ctx, entry.Date)
		if err != nil {
			return domain.CurrentQuiz{}, err
		}
		current.Previous = prev
	}
	return current, nil
}

func (s *Scheduler) previousSolution(ctx context.Context, before string) (*domain.Solution, error) {
	entry, err := s.schedule.PreviousEntry(ctx, before)
	if errors.Is(err, domain.ErrScheduleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	q, err := s.questions.GetQuestion(ctx, entry.QuestionID)
	if errors.Is(err, domain.ErrQuestionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sol := &domain.Solution{Date: entry.Date, Kind: q.Kind}
	switch q.Kind {
	case domain.KindSnippet:
		artist, track := first(q.ArtistAnswers), first(q.TrackAnswers)
		sol.Summary = fmt.Sprintf("%s - %s", artist, track)
		sol.Answer = artist
	case domain.KindTrivia:
		sol.Summary = q.Prompt
		sol.Answer = first(q.Answers)
	}

	if q.ContributorID != "" {
		c, err := s.contributors.GetContributor(ctx, q.ContributorID)
		switch {
		case err == nil:
			sol.ContributorName = c.Name
			sol.ContributorPhoto = c.PhotoURL
		case !errors.Is(err, domain.ErrContributorNotFound):
			return nil, err
		}
	}
	return sol, nil
}

// Archive lists past quizzes for archive play, newest first.
func (s *Scheduler) Archive(ctx context.Context, limit int) ([]domain.ArchiveItem, error) {
	if limit <= 0 || limit > archivePageSize {
		limit = archivePageSize
	}
	entries, err := s.schedule.PastEntries(ctx, s.clock.Today(), limit)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ArchiveItem, 0, len(entries))
	for _, e := range entries {
		q, err := s.questions.GetQuestion(ctx, e.QuestionID)
		if errors.Is(err, domain.ErrQuestionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, domain.ArchiveItem{Date: e.Date, Question: s.view(q)})
	}
	return items, nil
}

func (s *Scheduler) view(q domain.Question) domain.QuestionView {
	v := domain.QuestionView{ID: q.ID, Kind: q.Kind}
	switch q.Kind {
	case domain.KindSnippet:
		if url, ok := s.audio.ProxyURL(q.SourceURL, q.StartSeconds); ok {
			v.AudioURL = url
		}
		v.StartSeconds = q.StartSeconds
		v.DurationSeconds = q.DurationSeconds
	case domain.KindTrivia:
		v.Prompt = q.Prompt
		v.ImageURL = q.ImageURL
	}
	return v
}

func (s *Scheduler) nextSlot() *domain.NextSlot {
	start := s.midnight()
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		if kind, ok := domain.SlotKind(day.Weekday()); ok {
			return &domain.NextSlot{
				Date:    day.Format(domain.DateLayout),
				Weekday: day.Weekday().String(),
				Kind:    kind,
			}
		}
	}
	return nil
}

func (s *Scheduler) midnight() time.Time {
	now := s.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func attemptState(attempts []domain.Attempt) domain.AttemptState {
	state := domain.AttemptState{AttemptsUsed: len(attempts)}
	for _, a := range attempts {
		if a.IsCorrect {
			state.Solved = true
		}
	}
	if !state.Solved && state.AttemptsUsed < domain.MaxAttempts {
		state.AttemptsRemaining = domain.MaxAttempts - state.AttemptsUsed
	}
	return state
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
