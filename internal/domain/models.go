package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for schedule dates.
const DateLayout = "2006-01-02"

// MaxAttempts is the number of guesses allowed per (question, identity).
const MaxAttempts = 3

// QuestionKind is either a snippet (audio) or trivia question.
type QuestionKind string

const (
	KindSnippet QuestionKind = "snippet"
	KindTrivia  QuestionKind = "trivia"
)

// Valid reports whether k is a known kind.
func (k QuestionKind) Valid() bool {
	return k == KindSnippet || k == KindTrivia
}

// QuestionStatus tracks moderation state. Deleted questions are removed.
type QuestionStatus string

const (
	StatusPending  QuestionStatus = "pending"
	StatusApproved QuestionStatus = "approved"
	StatusRejected QuestionStatus = "rejected"
)

// QuestionFilter selects questions for the moderation list.
type QuestionFilter string

const (
	FilterPending  QuestionFilter = "pending"
	FilterApproved QuestionFilter = "approved"
	FilterRejected QuestionFilter = "rejected"
	FilterAll      QuestionFilter = "all"
)

// Question is a submitted quiz question.
type Question struct {
	ID     string         `json:"id"`
	Kind   QuestionKind   `json:"kind"`
	Status QuestionStatus `json:"status"`

	// snippet payload
	SourceURL       string   `json:"sourceUrl,omitempty"`
	StartSeconds    int      `json:"startSeconds,omitempty"`
	DurationSeconds int      `json:"durationSeconds,omitempty"`
	ArtistAnswers   []string `json:"artistAnswers,omitempty"`
	TrackAnswers    []string `json:"trackAnswers,omitempty"`

	// trivia payload
	Prompt   string   `json:"prompt,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Answers  []string `json:"answers,omitempty"`

	ContributorID string     `json:"contributorId,omitempty"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// AnswerKey returns the accepted variants of q.
func (q Question) AnswerKey() AnswerKey {
	return AnswerKey{
		QuestionID: q.ID,
		Kind:       q.Kind,
		Status:     q.Status,
		Artists:    q.ArtistAnswers,
		Tracks:     q.TrackAnswers,
		Answers:    q.Answers,
	}
}

// QuestionListing is a moderation row with contributor display info.
type QuestionListing struct {
	Question
	ContributorName  string `json:"contributorName,omitempty"`
	ContributorPhoto string `json:"contributorPhoto,omitempty"`
}

// AnswerKey holds what a guess needs: the moderation status and the
// accepted-answer variants.
type AnswerKey struct {
	QuestionID string         `json:"questionId"`
	Kind       QuestionKind   `json:"kind"`
	Status     QuestionStatus `json:"status"`
	Artists    []string     `json:"artists,omitempty"`
	Tracks     []string     `json:"tracks,omitempty"`
	Answers    []string     `json:"answers,omitempty"`
}

// Guess is the caller-supplied answer. Snippets use Artist and Track, trivia uses Answer.
type Guess struct {
	Artist string
	Track  string
	Answer string
}

// Normalize lower-cases and trims an answer for comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Matches reports whether the guess is correct. Snippets require both halves.
func (k AnswerKey) Matches(g Guess) bool {
	switch k.Kind {
	case KindSnippet:
		return matchAny(k.Artists, g.Artist) && matchAny(k.Tracks, g.Track)
	case KindTrivia:
		return matchAny(k.Answers, g.Answer)
	}
	return false
}

func matchAny(variants []string, value string) bool {
	v := Normalize(value)
	if v == "" {
		return false
	}
	for _, candidate := range variants {
		if Normalize(candidate) == v {
			return true
		}
	}
	return false
}

// ScheduleEntry assigns one question to one calendar date.
type ScheduleEntry struct {
	ID                     string       `json:"id"`
	Date                   string       `json:"date"`
	Kind                   QuestionKind `json:"kind"`
	IsActive               bool         `json:"isActive"`
	PreviousAnswerRevealed bool         `json:"previousAnswerRevealed"`
	QuestionID             string       `json:"questionId,omitempty"`
}

// Attempt is one scored guess from a caller identity.
type Attempt struct {
	QuestionID    string    `json:"questionId"`
	Identity      string    `json:"-"`
	AttemptNumber int       `json:"attemptNumber"`
	Artist        string    `json:"artist,omitempty"`
	Track         string    `json:"track,omitempty"`
	Answer        string    `json:"answer,omitempty"`
	IsCorrect     bool      `json:"isCorrect"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Points returns the live-mode points for a correct attempt: 3, 2, 1.
func (a Attempt) Points() int {
	if !a.IsCorrect {
		return 0
	}
	return MaxAttempts + 1 - a.AttemptNumber
}

// GuessResult is returned to the caller after a guess. It never says which half was wrong.
type GuessResult struct {
	IsCorrect         bool `json:"isCorrect"`
	AttemptsRemaining int  `json:"attemptsRemaining"`
	PointsEarned      int  `json:"pointsEarned"`
}

// Score is the persisted leaderboard credit for one (user, question).
type Score struct {
	UserID       string    `json:"userId"`
	QuestionID   string    `json:"questionId"`
	PointsEarned int       `json:"pointsEarned"`
	AttemptsUsed int       `json:"attemptsUsed"`
	IsArchive    bool      `json:"isArchive"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is the public leaderboard identity of a user.
type Profile struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	UserID            string `json:"userId"`
	DisplayName       string `json:"displayName"`
	PhotoURL          string `json:"photoUrl,omitempty"`
	TotalPoints       int    `json:"totalPoints"`
	QuestionsAnswered int    `json:"questionsAnswered"`
}

// Leaderboard is an ordered snapshot.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Contributor is an invited question author.
type Contributor struct {
	ID         string    `json:"id"`
	InviteCode string    `json:"inviteCode,omitempty"`
	IsActive   bool      `json:"isActive"`
	LoginID    string    `json:"loginId,omitempty"`
	Name       string    `json:"name"`
	PhotoURL   string    `json:"photoUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SlotKind maps a weekday to the kind of question scheduled on it.
func SlotKind(d time.Weekday) (QuestionKind, bool) {
	switch d {
	case time.Monday:
		return KindSnippet, true
	case time.Thursday:
		return KindTrivia, true
	}
	return "", false
}
