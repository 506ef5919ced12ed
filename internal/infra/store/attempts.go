package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"weekly-quiz-service/internal/domain"
)

func (s *Store) ListAttempts(ctx context.Context, questionID, identity string) ([]domain.Attempt, error) {
	var rows []attemptModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("a.question_id = ?", questionID).
		Where("a.identity = ?", identity).
		Order("a.attempt_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.Attempt, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// InsertAttempt never overwrites: the primary key and the one-correct index
// make a racing duplicate a no-op that reports false.
func (s *Store) InsertAttempt(ctx context.Context, a domain.Attempt) (bool, error) {
	m := &attemptModel{
		QuestionID:    a.QuestionID,
		Identity:      a.Identity,
		AttemptNumber: a.AttemptNumber,
		Artist:        a.Artist,
		Track:         a.Track,
		Answer:        a.Answer,
		IsCorrect:     a.IsCorrect,
		CreatedAt:     a.CreatedAt.UTC(),
	}
	res, err := s.db.NewInsert().Model(m).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("insert attempt: %w", err)
	}
	return affected(res)
}

func (s *Store) CorrectAttempt(ctx context.Context, questionID, identity string) (domain.Attempt, error) {
	var m attemptModel
	err := s.db.NewSelect().
		Model(&m).
		Where("a.question_id = ?", questionID).
		Where("a.identity = ?", identity).
		Where("a.is_correct = ?", true).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrNoCorrectAttempt
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("load correct attempt: %w", err)
	}
	return m.toDomain(), nil
}
