package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"weekly-quiz-service/internal/domain"
)

func (s *Store) ListEntries(ctx context.Context, from, to string) ([]domain.ScheduleEntry, error) {
	var rows []scheduleModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("se.schedule_date >= ?", from).
		Where("se.schedule_date <= ?", to).
		Order("se.schedule_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schedule: %w", err)
	}
	return toEntries(rows), nil
}

func (s *Store) CreateEntry(ctx context.Context, e domain.ScheduleEntry) (bool, error) {
	m := &scheduleModel{
		ID:           e.ID,
		ScheduleDate: e.Date,
		Kind:         string(e.Kind),
		QuestionID:   e.QuestionID,
	}
	res, err := s.db.NewInsert().Model(m).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("insert schedule entry: %w", err)
	}
	return affected(res)
}

func (s *Store) FillEntry(ctx context.Context, entryID, questionID string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*scheduleModel)(nil)).
		Set("question_id = ?", questionID).
		Where("id = ?", entryID).
		Where("question_id IS NULL").
		Exec(ctx)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fill schedule entry: %w", err)
	}
	return affected(res)
}

// ActivateDate clears every other active flag before raising date's, inside
// one transaction, so the single-active index never sees two rows.
func (s *Store) ActivateDate(ctx context.Context, date string) (bool, error) {
	var activated bool
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*scheduleModel)(nil)).
			Set("is_active = ?", false).
			Where("is_active = ?", true).
			WhereGroup(" AND ", func(q *bun.UpdateQuery) *bun.UpdateQuery {
				return q.Where("schedule_date <> ?", date).WhereOr("question_id IS NULL")
			}).
			Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewUpdate().
			Model((*scheduleModel)(nil)).
			Set("is_active = ?", true).
			Set("previous_answer_revealed = ?", true).
			Where("schedule_date = ?", date).
			Where("question_id IS NOT NULL").
			Exec(ctx)
		if err != nil {
			return err
		}
		activated, err = affected(res)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("activate %s: %w", date, err)
	}
	return activated, nil
}

func (s *Store) ActiveEntry(ctx context.Context, onOrBefore string) (domain.ScheduleEntry, error) {
	return s.oneEntry(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("se.is_active = ?", true).Where("se.schedule_date <= ?", onOrBefore)
	})
}

func (s *Store) PreviousEntry(ctx context.Context, before string) (domain.ScheduleEntry, error) {
	return s.oneEntry(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("se.schedule_date < ?", before)
	})
}

func (s *Store) oneEntry(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) (domain.ScheduleEntry, error) {
	var m scheduleModel
	q := s.db.NewSelect().Model(&m).Where("se.question_id IS NOT NULL")
	err := filter(q).Order("se.schedule_date DESC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScheduleEntry{}, domain.ErrScheduleNotFound
	}
	if err != nil {
		return domain.ScheduleEntry{}, fmt.Errorf("load schedule entry: %w", err)
	}
	return m.toDomain(), nil
}

func (s *Store) PastEntries(ctx context.Context, before string, limit int) ([]domain.ScheduleEntry, error) {
	var rows []scheduleModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("se.schedule_date < ?", before).
		Where("se.question_id IS NOT NULL").
		Order("se.schedule_date DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list past schedule: %w", err)
	}
	return toEntries(rows), nil
}

func (s *Store) IsScheduledBy(ctx context.Context, questionID, onOrBefore string) (bool, error) {
	ok, err := s.db.NewSelect().
		Model((*scheduleModel)(nil)).
		Where("se.question_id = ?", questionID).
		Where("se.schedule_date <= ?", onOrBefore).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check schedule: %w", err)
	}
	return ok, nil
}

func toEntries(rows []scheduleModel) []domain.ScheduleEntry {
	out := make([]domain.ScheduleEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out
}
