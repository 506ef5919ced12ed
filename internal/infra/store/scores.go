package store

import (
	"context"
	"fmt"
	"time"

	"weekly-quiz-service/internal/domain"
)

func (s *Store) HasScore(ctx context.Context, userID, questionID string) (bool, error) {
	ok, err := s.db.NewSelect().
		Model((*scoreModel)(nil)).
		Where("s.user_id = ?", userID).
		Where("s.question_id = ?", questionID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check score: %w", err)
	}
	return ok, nil
}

// UpsertProfile keeps the stored name or photo when the new value is empty.
func (s *Store) UpsertProfile(ctx context.Context, p domain.Profile) error {
	m := &profileModel{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		UpdatedAt:   time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(m).
		On("CONFLICT (user_id) DO UPDATE").
		Set("display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), p.display_name)").
		Set("photo_url = COALESCE(EXCLUDED.photo_url, p.photo_url)").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *Store) InsertScore(ctx context.Context, sc domain.Score) (bool, error) {
	m := &scoreModel{
		UserID:       sc.UserID,
		QuestionID:   sc.QuestionID,
		PointsEarned: sc.PointsEarned,
		AttemptsUsed: sc.AttemptsUsed,
		IsArchive:    sc.IsArchive,
		CreatedAt:    sc.CreatedAt.UTC(),
	}
	res, err := s.db.NewInsert().Model(m).On("CONFLICT DO NOTHING").Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("insert score: %w", err)
	}
	return affected(res)
}

// Leaderboard sums points per user. Equal totals order by user id so the
// ranking is stable between calls.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	var rows []leaderboardRow
	err := s.db.NewSelect().
		TableExpr("scores AS s").
		ColumnExpr("s.user_id AS user_id").
		ColumnExpr("SUM(s.points_earned) AS total_points").
		ColumnExpr("COUNT(*) AS questions_answered").
		ColumnExpr("COALESCE(MAX(p.display_name), '') AS display_name").
		ColumnExpr("COALESCE(MAX(p.photo_url), '') AS photo_url").
		Join("LEFT JOIN profiles AS p ON p.user_id = s.user_id").
		GroupExpr("s.user_id").
		OrderExpr("total_points DESC, s.user_id ASC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("aggregate leaderboard: %w", err)
	}
	out := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.LeaderboardEntry{
			UserID:            r.UserID,
			DisplayName:       r.DisplayName,
			PhotoURL:          r.PhotoURL,
			TotalPoints:       r.TotalPoints,
			QuestionsAnswered: r.QuestionsAnswered,
		})
	}
	return out, nil
}
