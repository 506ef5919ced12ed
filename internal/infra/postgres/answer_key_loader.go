package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"weekly-quiz-service/internal/domain"
)

// AnswerKeyLoader reads accepted answers straight from Postgres, bypassing the ORM
// on the hot guess path.
type AnswerKeyLoader struct {
	pool *pgxpool.Pool
}

func NewAnswerKeyLoader(pool *pgxpool.Pool) *AnswerKeyLoader {
	return &AnswerKeyLoader{pool: pool}
}

func (l *AnswerKeyLoader) LoadAnswerKey(ctx context.Context, questionID string) (domain.AnswerKey, error) {
	var (
		kind, status             string
		artists, tracks, answers []byte
	)
	err := l.pool.QueryRow(ctx,
		`SELECT kind, status, artist_answers, track_answers, answers FROM questions WHERE id=$1`,
		questionID,
	).Scan(&kind, &status, &artists, &tracks, &answers)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AnswerKey{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.AnswerKey{}, fmt.Errorf("load answer key: %w", err)
	}

	key := domain.AnswerKey{QuestionID: questionID, Kind: domain.QuestionKind(kind), Status: domain.QuestionStatus(status)}
	for _, col := range []struct {
		raw []byte
		dst *[]string
	}{
		{artists, &key.Artists},
		{tracks, &key.Tracks},
		{answers, &key.Answers},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return domain.AnswerKey{}, fmt.Errorf("unmarshal answer key: %w", err)
		}
	}
	return key, nil
}
