package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"weekly-quiz-service/internal/domain"
)

func (s *Store) CreateContributor(ctx context.Context, c domain.Contributor) error {
	m := &contributorModel{
		ID:         c.ID,
		InviteCode: c.InviteCode,
		IsActive:   c.IsActive,
		LoginID:    c.LoginID,
		Name:       c.Name,
		PhotoURL:   c.PhotoURL,
		CreatedAt:  c.CreatedAt.UTC(),
	}
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("insert contributor: %w", err)
	}
	return nil
}

func (s *Store) GetContributor(ctx context.Context, id string) (domain.Contributor, error) {
	return s.oneContributor(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("c.id = ?", id)
	})
}

func (s *Store) GetContributorByCode(ctx context.Context, code string) (domain.Contributor, error) {
	return s.oneContributor(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("c.invite_code = ?", code)
	})
}

func (s *Store) GetContributorByLogin(ctx context.Context, loginID string) (domain.Contributor, error) {
	return s.oneContributor(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("c.login_id = ?", loginID)
	})
}

func (s *Store) oneContributor(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) (domain.Contributor, error) {
	var m contributorModel
	err := filter(s.db.NewSelect().Model(&m)).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Contributor{}, domain.ErrContributorNotFound
	}
	if err != nil {
		return domain.Contributor{}, fmt.Errorf("load contributor: %w", err)
	}
	return m.toDomain(), nil
}

// BindContributor only succeeds while the contributor has no login, so a code
// is bound exactly once even under concurrent registrations.
func (s *Store) BindContributor(ctx context.Context, id, loginID, name, photo string) (bool, error) {
	var photoArg any
	if photo != "" {
		photoArg = photo
	}
	res, err := s.db.NewUpdate().
		Model((*contributorModel)(nil)).
		Set("login_id = ?", loginID).
		Set("name = ?", name).
		Set("photo_url = ?", photoArg).
		Where("id = ?", id).
		Where("login_id IS NULL").
		Exec(ctx)
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("bind contributor: %w", err)
	}
	return affected(res)
}

func (s *Store) SetContributorActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.NewUpdate().
		Model((*contributorModel)(nil)).
		Set("is_active = ?", active).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update contributor: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrContributorNotFound
	}
	return nil
}

func (s *Store) DeleteContributor(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*contributorModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete contributor: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrContributorNotFound
	}
	return nil
}

func (s *Store) ListContributors(ctx context.Context) ([]domain.Contributor, error) {
	var rows []contributorModel
	if err := s.db.NewSelect().Model(&rows).OrderExpr("c.created_at DESC, c.id DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list contributors: %w", err)
	}
	out := make([]domain.Contributor, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
