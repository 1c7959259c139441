package artifact

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Registry records published calendar files in Postgres so other services
// can discover the current artifact and its accuracy. It is optional: when
// no database is configured the pipeline simply skips registration.
type Registry struct {
	pool *pgxpool.Pool
}

// NewRegistry creates a registry backed by the given pool.
func NewRegistry(pool *pgxpool.Pool) *Registry {
	return &Registry{pool: pool}
}

// EnsureSchema creates the registry table when missing.
func (r *Registry) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS calendar_files (
			name           TEXT PRIMARY KEY,
			path           TEXT NOT NULL,
			model_accuracy DOUBLE PRECISION,
			updated_at     TIMESTAMPTZ NOT NULL
		)`)
	return err
}

// CalendarFile is one registered artifact.
type CalendarFile struct {
	Name          string
	Path          string
	ModelAccuracy *float64
	UpdatedAt     time.Time
}

// Upsert registers or refreshes a published calendar file.
func (r *Registry) Upsert(ctx context.Context, name, path string, accuracy *float64) error {
	query := `
		INSERT INTO calendar_files (name, path, model_accuracy, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			path = EXCLUDED.path,
			model_accuracy = EXCLUDED.model_accuracy,
			updated_at = EXCLUDED.updated_at`

	_, err := r.pool.Exec(ctx, query, name, path, accuracy, time.Now().UTC())
	return err
}

// Get looks up a registered calendar file by name.
func (r *Registry) Get(ctx context.Context, name string) (*CalendarFile, error) {
	query := `
		SELECT name, path, model_accuracy, updated_at
		FROM calendar_files
		WHERE name = $1`

	var cf CalendarFile
	err := r.pool.QueryRow(ctx, query, name).Scan(&cf.Name, &cf.Path, &cf.ModelAccuracy, &cf.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &cf, nil
}
