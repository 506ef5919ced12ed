package app

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"weekly-quiz-service/internal/domain"
)

// insertRetries bounds re-reads after losing an attempt insert race.
const insertRetries = 3

// ScoreRequest asks to persist a correct guess on the leaderboard.
type ScoreRequest struct {
	QuestionID     string
	CallerIdentity string
	UserID         string
	DisplayName    string
	PhotoURL       string
	ArchiveMode    bool
}

// ScorePublisher is notified after a score is saved.
type ScorePublisher interface {
	ScoreSaved(ctx context.Context)
}

// AttemptService validates guesses and records scores.
type AttemptService struct {
	schedule   ScheduleRepository
	attempts   AttemptRepository
	scores     ScoreRepository
	answerKeys AnswerKeys
	publisher  ScorePublisher
	clock      Clock
	log        *logrus.Entry
}

func NewAttemptService(schedule ScheduleRepository, attempts AttemptRepository, scores ScoreRepository, answerKeys AnswerKeys, publisher ScorePublisher, clock Clock, log *logrus.Entry) *AttemptService {
	return &AttemptService{
		schedule:   schedule,
		attempts:   attempts,
		scores:     scores,
		answerKeys: answerKeys,
		publisher:  publisher,
		clock:      clock,
		log:        log,
	}
}

// Guess scores one attempt from callerIdentity. At most three attempts are
// accepted per (question, identity) and none after a correct one.
func (s *AttemptService) Guess(ctx context.Context, questionID, callerIdentity string, guess domain.Guess) (domain.GuessResult, error) {
	if strings.TrimSpace(questionID) == "" || callerIdentity == "" {
		return domain.GuessResult{}, domain.ErrMissingFields
	}
	key, err := s.playableKey(ctx, questionID)
	if err != nil {
		return domain.GuessResult{}, err
	}
	if key.Kind == domain.KindSnippet && (strings.TrimSpace(guess.Artist) == "" || strings.TrimSpace(guess.Track) == "") {
		return domain.GuessResult{}, domain.ErrMissingFields
	}
	if key.Kind == domain.KindTrivia && strings.TrimSpace(guess.Answer) == "" {
		return domain.GuessResult{}, domain.ErrMissingFields
	}

	correct := key.Matches(guess)
	for i := 0; i < insertRetries; i++ {
		prior, err := s.attempts.ListAttempts(ctx, questionID, callerIdentity)
		if err != nil {
			return domain.GuessResult{}, err
		}
		for _, a := range prior {
			if a.IsCorrect {
				return domain.GuessResult{}, domain.ErrAlreadyCorrect
			}
		}
		if len(prior) >= domain.MaxAttempts {
			return domain.GuessResult{}, domain.ErrMaxAttemptsReached
		}

		attempt := domain.Attempt{
			QuestionID:    questionID,
			Identity:      callerIdentity,
			AttemptNumber: len(prior) + 1,
			Artist:        guess.Artist,
			Track:         guess.Track,
			Answer:        guess.Answer,
			IsCorrect:     correct,
			CreatedAt:     s.clock.Now(),
		}
		inserted, err := s.attempts.InsertAttempt(ctx, attempt)
		if err != nil {
			return domain.GuessResult{}, err
		}
		if !inserted {
			// A concurrent guess from the same identity took this attempt number.
			continue
		}

		s.log.WithFields(logrus.Fields{
			"question_id": questionID,
			"attempt":     attempt.AttemptNumber,
			"correct":     correct,
		}).Debug("guess scored")
		return domain.GuessResult{
			IsCorrect:         correct,
			AttemptsRemaining: domain.MaxAttempts - attempt.AttemptNumber,
			PointsEarned:      attempt.Points(),
		}, nil
	}
	return domain.GuessResult{}, domain.ErrMaxAttemptsReached
}

// playableKey returns the answer key of an approved question already on the
// schedule. The key comes from the cache; moderation invalidates it.
func (s *AttemptService) playableKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	key, err := s.answerKeys.GetAnswerKey(ctx, questionID)
	if err != nil {
		return domain.AnswerKey{}, err
	}
	if key.Status != domain.StatusApproved {
		return domain.AnswerKey{}, domain.ErrQuestionNotFound
	}
	scheduled, err := s.schedule.IsScheduledBy(ctx, questionID, s.clock.Today())
	if err != nil {
		return domain.AnswerKey{}, err
	}
	if !scheduled {
		return domain.AnswerKey{}, domain.ErrQuestionNotFound
	}
	return key, nil
}

// RecordScore persists the caller's correct attempt as a leaderboard score.
// Points are derived from the stored attempt, never from the request.
func (s *AttemptService) RecordScore(ctx context.Context, req ScoreRequest) (domain.Score, error) {
	if req.UserID == "" {
		return domain.Score{}, domain.ErrUnauthorized
	}
	if strings.TrimSpace(req.QuestionID) == "" {
		return domain.Score{}, domain.ErrMissingFields
	}

	attempt, err := s.attempts.CorrectAttempt(ctx, req.QuestionID, req.CallerIdentity)
	if err != nil {
		return domain.Score{}, err
	}

	exists, err := s.scores.HasScore(ctx, req.UserID, req.QuestionID)
	if err != nil {
		return domain.Score{}, err
	}
	if exists {
		return domain.Score{}, domain.ErrScoreAlreadySaved
	}

	if name := strings.TrimSpace(req.DisplayName); name != "" || req.PhotoURL != "" {
		if err := s.scores.UpsertProfile(ctx, domain.Profile{
			UserID:      req.UserID,
			DisplayName: name,
			PhotoURL:    req.PhotoURL,
		}); err != nil {
			return domain.Score{}, err
		}
	}

	archive, err := s.isArchived(ctx, req.QuestionID, req.ArchiveMode)
	if err != nil {
		return domain.Score{}, err
	}
	points := attempt.Points()
	if archive {
		points = 1
	}
	score := domain.Score{
		UserID:       req.UserID,
		QuestionID:   req.QuestionID,
		PointsEarned: points,
		AttemptsUsed: attempt.AttemptNumber,
		IsArchive:    archive,
		CreatedAt:    s.clock.Now(),
	}
	inserted, err := s.scores.InsertScore(ctx, score)
	if err != nil {
		return domain.Score{}, err
	}
	if !inserted {
		return domain.Score{}, domain.ErrScoreAlreadySaved
	}

	s.log.WithFields(logrus.Fields{
		"question_id": req.QuestionID,
		"user_id":     req.UserID,
		"points":      points,
		"archive":     archive,
	}).Info("score saved")
	if s.publisher != nil {
		s.publisher.ScoreSaved(ctx)
	}
	return score, nil
}


// isArchived reports whether a score counts as archive play. A question whose
// schedule date has passed is always archive play, whatever the client says.
func (s *AttemptService) isArchived(ctx context.Context, questionID string, requested bool) (bool, error) {
	if requested {
		return true, nil
	}
	yesterday := s.clock.Now().AddDate(0, 0, -1).Format(domain.DateLayout)
	return s.schedule.IsScheduledBy(ctx, questionID, yesterday)
}
