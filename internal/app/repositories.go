package app

import (
	"context"
	"time"

	"weekly-quiz-service/internal/domain"
)

// QuestionRepository persists questions and their moderation state.
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, q domain.Question) error
	GetQuestion(ctx context.Context, id string) (domain.Question, error)
	ListQuestions(ctx context.Context, filter domain.QuestionFilter, limit int) ([]domain.QuestionListing, error)
	// SetQuestionStatus only moves pending questions.
	SetQuestionStatus(ctx context.Context, id string, status domain.QuestionStatus, approvedAt *time.Time) error
	DeleteQuestion(ctx context.Context, id string) error
	// UnscheduledApproved returns approved questions of kind that no schedule
	// entry references, oldest first.
	UnscheduledApproved(ctx context.Context, kind domain.QuestionKind) ([]domain.Question, error)
}

// ScheduleRepository persists schedule entries.
type ScheduleRepository interface {
	ListEntries(ctx context.Context, from, to string) ([]domain.ScheduleEntry, error)
	// CreateEntry inserts e; false means the date or question was already taken.
	CreateEntry(ctx context.Context, e domain.ScheduleEntry) (bool, error)
	// FillEntry sets the question of an entry that has none.
	FillEntry(ctx context.Context, entryID, questionID string) (bool, error)
	// ActivateDate deactivates every other date and activates date, atomically.
	ActivateDate(ctx context.Context, date string) (bool, error)
	ActiveEntry(ctx context.Context, onOrBefore string) (domain.ScheduleEntry, error)
	PreviousEntry(ctx context.Context, before string) (domain.ScheduleEntry, error)
	PastEntries(ctx context.Context, before string, limit int) ([]domain.ScheduleEntry, error)
	IsScheduledBy(ctx context.Context, questionID, onOrBefore string) (bool, error)
}

// AttemptRepository persists guesses.
type AttemptRepository interface {
	ListAttempts(ctx context.Context, questionID, identity string) ([]domain.Attempt, error)
	// InsertAttempt returns false when a uniqueness constraint rejected the row.
	InsertAttempt(ctx context.Context, a domain.Attempt) (bool, error)
	CorrectAttempt(ctx context.Context, questionID, identity string) (domain.Attempt, error)
}

// ScoreRepository persists scores and profiles and aggregates the leaderboard.
type ScoreRepository interface {
	HasScore(ctx context.Context, userID, questionID string) (bool, error)
	UpsertProfile(ctx context.Context, p domain.Profile) error
	// InsertScore returns false when the (user, question) score already exists.
	InsertScore(ctx context.Context, s domain.Score) (bool, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

// ContributorRepository persists contributors.
type ContributorRepository interface {
	CreateContributor(ctx context.Context, c domain.Contributor) error
	GetContributor(ctx context.Context, id string) (domain.Contributor, error)
	GetContributorByCode(ctx context.Context, code string) (domain.Contributor, error)
	GetContributorByLogin(ctx context.Context, loginID string) (domain.Contributor, error)
	// BindContributor sets the login of an unbound contributor.
	BindContributor(ctx context.Context, id, loginID, name, photo string) (bool, error)
	SetContributorActive(ctx context.Context, id string, active bool) error
	DeleteContributor(ctx context.Context, id string) error
	ListContributors(ctx context.Context) ([]domain.Contributor, error)
}

// AnswerKeys loads accepted answers, typically through a cache.
type AnswerKeys interface {
	GetAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error)
	Invalidate(ctx context.Context, questionID string) error
}
