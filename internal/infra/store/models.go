package store

import (
	"time"

	"github.com/uptrace/bun"

	"weekly-quiz-service/internal/domain"
)

type questionModel struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID              string     `bun:"id,pk"`
	Kind            string     `bun:"kind,notnull"`
	Status          string     `bun:"status,notnull"`
	SourceURL       string     `bun:"source_url,nullzero"`
	StartSeconds    int        `bun:"start_seconds,notnull"`
	DurationSeconds int        `bun:"duration_seconds,notnull"`
	ArtistAnswers   []string   `bun:"artist_answers"`
	TrackAnswers    []string   `bun:"track_answers"`
	Prompt          string     `bun:"prompt,nullzero"`
	ImageURL        string     `bun:"image_url,nullzero"`
	Answers         []string   `bun:"answers"`
	ContributorID   string     `bun:"contributor_id,nullzero"`
	ApprovedAt      *time.Time `bun:"approved_at"`
	CreatedAt       time.Time  `bun:"created_at,notnull"`
}

func newQuestionModel(q domain.Question) *questionModel {
	m := &questionModel{
		ID:              q.ID,
		Kind:            string(q.Kind),
		Status:          string(q.Status),
		SourceURL:       q.SourceURL,
		StartSeconds:    q.StartSeconds,
		DurationSeconds: q.DurationSeconds,
		ArtistAnswers:   q.ArtistAnswers,
		TrackAnswers:    q.TrackAnswers,
		Prompt:          q.Prompt,
		ImageURL:        q.ImageURL,
		Answers:         q.Answers,
		ContributorID:   q.ContributorID,
		CreatedAt:       q.CreatedAt.UTC(),
	}
	if q.ApprovedAt != nil {
		at := q.ApprovedAt.UTC()
		m.ApprovedAt = &at
	}
	return m
}

func (m questionModel) toDomain() domain.Question {
	return domain.Question{
		ID:              m.ID,
		Kind:            domain.QuestionKind(m.Kind),
		Status:          domain.QuestionStatus(m.Status),
		SourceURL:       m.SourceURL,
		StartSeconds:    m.StartSeconds,
		DurationSeconds: m.DurationSeconds,
		ArtistAnswers:   m.ArtistAnswers,
		TrackAnswers:    m.TrackAnswers,
		Prompt:          m.Prompt,
		ImageURL:        m.ImageURL,
		Answers:         m.Answers,
		ContributorID:   m.ContributorID,
		ApprovedAt:      m.ApprovedAt,
		CreatedAt:       m.CreatedAt,
	}
}

type questionListingRow struct {
	questionModel `bun:",extend"`

	ContributorName  string `bun:"contributor_name"`
	ContributorPhoto string `bun:"contributor_photo"`
}

type scheduleModel struct {
	bun.BaseModel `bun:"table:schedule_entries,alias:se"`

	ID                     string `bun:"id,pk"`
	ScheduleDate           string `bun:"schedule_date,notnull,unique"`
	Kind                   string `bun:"kind,notnull"`
	IsActive               bool   `bun:"is_active,notnull"`
	PreviousAnswerRevealed bool   `bun:"previous_answer_revealed,notnull"`
	QuestionID             string `bun:"question_id,nullzero,unique"`
}

func (m scheduleModel) toDomain() domain.ScheduleEntry {
	return domain.ScheduleEntry{
		ID:                     m.ID,
		Date:                   m.ScheduleDate,
		Kind:                   domain.QuestionKind(m.Kind),
		IsActive:               m.IsActive,
		PreviousAnswerRevealed: m.PreviousAnswerRevealed,
		QuestionID:             m.QuestionID,
	}
}

type attemptModel struct {
	bun.BaseModel `bun:"table:attempts,alias:a"`

	QuestionID    string    `bun:"question_id,pk"`
	Identity      string    `bun:"identity,pk"`
	AttemptNumber int       `bun:"attempt_number,pk"`
	Artist        string    `bun:"artist,nullzero"`
	Track         string    `bun:"track,nullzero"`
	Answer        string    `bun:"answer,nullzero"`
	IsCorrect     bool      `bun:"is_correct,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func (m attemptModel) toDomain() domain.Attempt {
	return domain.Attempt{
		QuestionID:    m.QuestionID,
		Identity:      m.Identity,
		AttemptNumber: m.AttemptNumber,
		Artist:        m.Artist,
		Track:         m.Track,
		Answer:        m.Answer,
		IsCorrect:     m.IsCorrect,
		CreatedAt:     m.CreatedAt,
	}
}

type scoreModel struct {
	bun.BaseModel `bun:"table:scores,alias:s"`

	UserID       string    `bun:"user_id,pk"`
	QuestionID   string    `bun:"question_id,pk"`
	PointsEarned int       `bun:"points_earned,notnull"`
	AttemptsUsed int       `bun:"attempts_used,notnull"`
	IsArchive    bool      `bun:"is_archive,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

type profileModel struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	UserID      string    `bun:"user_id,pk"`
	DisplayName string    `bun:"display_name,notnull"`
	PhotoURL    string    `bun:"photo_url,nullzero"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

type contributorModel struct {
	bun.BaseModel `bun:"table:contributors,alias:c"`

	ID         string    `bun:"id,pk"`
	InviteCode string    `bun:"invite_code,notnull,unique"`
	IsActive   bool      `bun:"is_active,notnull"`
	LoginID    string    `bun:"login_id,nullzero,unique"`
	Name       string    `bun:"name,notnull"`
	PhotoURL   string    `bun:"photo_url,nullzero"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

func (m contributorModel) toDomain() domain.Contributor {
	return domain.Contributor{
		ID:         m.ID,
		InviteCode: m.InviteCode,
		IsActive:   m.IsActive,
		LoginID:    m.LoginID,
		Name:       m.Name,
		PhotoURL:   m.PhotoURL,
		CreatedAt:  m.CreatedAt,
	}
}

type leaderboardRow struct {
	UserID            string `bun:"user_id"`
	DisplayName       string `bun:"display_name"`
	PhotoURL          string `bun:"photo_url"`
	TotalPoints       int    `bun:"total_points"`
	QuestionsAnswered int    `bun:"questions_answered"`
}
