package app

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"weekly-quiz-service/internal/domain"
)

const (
	MaxLeaderboardSize = 100
	anonymousName      = "anonymous"
)

// LeaderboardService ranks users by total points and fans snapshots out to
// live subscribers.
type LeaderboardService struct {
	scores ScoreRepository
	now    func() time.Time
	log    *logrus.Entry

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardService(scores ScoreRepository, log *logrus.Entry) *LeaderboardService {
	return &LeaderboardService{
		scores:      scores,
		now:         time.Now,
		log:         log,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Compute aggregates all scores. Limits outside 1..100 clamp to 100.
func (s *LeaderboardService) Compute(ctx context.Context, limit int) (domain.Leaderboard, error) {
	if limit <= 0 || limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}
	entries, err := s.scores.Leaderboard(ctx, limit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	for i := range entries {
		if entries[i].DisplayName == "" {
			entries[i].DisplayName = anonymousName
		}
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: s.now()}, nil
}

// Subscribe returns a channel that receives the current leaderboard and every
// update after a saved score. The caller must invoke cancel to avoid leaks.
func (s *LeaderboardService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Compute(ctx, MaxLeaderboardSize)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

// ScoreSaved recomputes and broadcasts the leaderboard.
func (s *LeaderboardService) ScoreSaved(ctx context.Context) {
	s.mu.Lock()
	n := len(s.subscribers)
	s.mu.Unlock()
	if n == 0 {
		return
	}
	lb, err := s.Compute(ctx, MaxLeaderboardSize)
	if err != nil {
		s.log.WithError(err).Warn("leaderboard broadcast skipped")
		return
	}
	s.broadcast(lb)
}

func (s *LeaderboardService) broadcast(lb domain.Leaderboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Slow subscriber: drop its oldest snapshot so writers never block.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
