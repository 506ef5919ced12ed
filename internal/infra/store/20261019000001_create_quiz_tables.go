package store

import (
	"context"

	"github.com/uptrace/bun"
)

// Uniqueness the quiz relies on under concurrent requests:
//   - one correct attempt per (question, identity)
//   - a single active schedule entry
var quizIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS attempts_one_correct_idx ON attempts (question_id, identity) WHERE is_correct`,
	`CREATE UNIQUE INDEX IF NOT EXISTS schedule_single_active_idx ON schedule_entries (is_active) WHERE is_active`,
	`CREATE INDEX IF NOT EXISTS questions_kind_status_idx ON questions (kind, status, created_at)`,
	`CREATE INDEX IF NOT EXISTS scores_user_idx ON scores (user_id)`,
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			tables := []struct {
				model       any
				foreignKeys []string
			}{
				{model: (*contributorModel)(nil)},
				{model: (*questionModel)(nil), foreignKeys: []string{
					`("contributor_id") REFERENCES "contributors" ("id") ON DELETE SET NULL`,
				}},
				{model: (*scheduleModel)(nil), foreignKeys: []string{
					`("question_id") REFERENCES "questions" ("id") ON DELETE SET NULL`,
				}},
				{model: (*attemptModel)(nil), foreignKeys: []string{
					`("question_id") REFERENCES "questions" ("id") ON DELETE CASCADE`,
				}},
				{model: (*profileModel)(nil)},
				{model: (*scoreModel)(nil)},
			}
			for _, t := range tables {
				q := db.NewCreateTable().Model(t.model).IfNotExists()
				for _, fk := range t.foreignKeys {
					q = q.ForeignKey(fk)
				}
				if _, err := q.Exec(ctx); err != nil {
					return err
				}
			}
			for _, stmt := range quizIndexes {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range []any{
				(*scoreModel)(nil),
				(*profileModel)(nil),
				(*attemptModel)(nil),
				(*scheduleModel)(nil),
				(*questionModel)(nil),
				(*contributorModel)(nil),
			} {
				if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
