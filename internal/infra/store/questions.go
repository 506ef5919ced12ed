package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"weekly-quiz-service/internal/domain"
)

func (s *Store) CreateQuestion(ctx context.Context, q domain.Question) error {
	if _, err := s.db.NewInsert().Model(newQuestionModel(q)).Exec(ctx); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *Store) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	var m questionModel
	err := s.db.NewSelect().Model(&m).Where("q.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	return m.toDomain(), nil
}

// LoadAnswerKey satisfies the answer-key cache loader.
func (s *Store) LoadAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	q, err := s.GetQuestion(ctx, questionID)
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return q.AnswerKey(), nil
}

func (s *Store) ListQuestions(ctx context.Context, filter domain.QuestionFilter, limit int) ([]domain.QuestionListing, error) {
	var rows []questionListingRow
	q := s.db.NewSelect().
		Model(&rows).
		ColumnExpr("q.*").
		ColumnExpr("COALESCE(c.name, '') AS contributor_name").
		ColumnExpr("COALESCE(c.photo_url, '') AS contributor_photo").
		Join("LEFT JOIN contributors AS c ON c.id = q.contributor_id").
		OrderExpr("q.created_at DESC, q.id DESC").
		Limit(limit)
	if filter != domain.FilterAll {
		q = q.Where("q.status = ?", string(filter))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	out := make([]domain.QuestionListing, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.QuestionListing{
			Question:         r.questionModel.toDomain(),
			ContributorName:  r.ContributorName,
			ContributorPhoto: r.ContributorPhoto,
		})
	}
	return out, nil
}

// SetQuestionStatus moves a pending question to status. Questions that already
// left pending are refused with ErrQuestionNotPending.
func (s *Store) SetQuestionStatus(ctx context.Context, id string, status domain.QuestionStatus, approvedAt *time.Time) error {
	var at *time.Time
	if approvedAt != nil {
		utc := approvedAt.UTC()
		at = &utc
	}
	res, err := s.db.NewUpdate().
		Model((*questionModel)(nil)).
		Set("status = ?", string(status)).
		Set("approved_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", string(domain.StatusPending)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update question status: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	exists, err := s.db.NewSelect().Model((*questionModel)(nil)).Where("q.id = ?", id).Exists(ctx)
	if err != nil {
		return fmt.Errorf("check question: %w", err)
	}
	if !exists {
		return domain.ErrQuestionNotFound
	}
	return domain.ErrQuestionNotPending
}

func (s *Store) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*questionModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *Store) UnscheduledApproved(ctx context.Context, kind domain.QuestionKind) ([]domain.Question, error) {
	var rows []questionModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("q.kind = ?", string(kind)).
		Where("q.status = ?", string(domain.StatusApproved)).
		Where("NOT EXISTS (SELECT 1 FROM schedule_entries AS se WHERE se.question_id = q.id)").
		OrderExpr("q.created_at ASC, q.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedulable questions: %w", err)
	}
	out := make([]domain.Question, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
