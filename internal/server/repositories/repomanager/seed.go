package repomanager

import (
	"context"
	"fmt"

	"github.com/smazurov/progresslapse/internal/dbx"
)

var defaultCategories = []string{"front", "side", "back"}

var defaultRecordUnits = []string{"kg", "reps"}

var defaultRecordCategories = []struct{ Name, Unit string }{
	{"bench press", "kg"},
	{"squat", "kg"},
	{"deadlift", "kg"},
	{"pull ups", "reps"},
}

// EnsureReferenceData inserts the bootstrap categories and record
// reference rows if they are missing. Runs in one transaction so a
// partially seeded database is never visible.
func (m *PostgresRepositoryManager) EnsureReferenceData(ctx context.Context) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, name := range defaultCategories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (name) VALUES ($1) ON CONFLICT DO NOTHING`, name); err != nil {
				return fmt.Errorf("seed category %s: %w", name, err)
			}
		}
		for _, unit := range defaultRecordUnits {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO record_units (name) VALUES ($1) ON CONFLICT DO NOTHING`, unit); err != nil {
				return fmt.Errorf("seed record unit %s: %w", unit, err)
			}
		}
		for _, rc := range defaultRecordCategories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO record_categories (name, unit_id)
				 SELECT $1, id FROM record_units WHERE name = $2
				 ON CONFLICT DO NOTHING`, rc.Name, rc.Unit); err != nil {
				return fmt.Errorf("seed record category %s: %w", rc.Name, err)
			}
		}
		return nil
	})
}
