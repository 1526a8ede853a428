package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/consulting-control/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetMapping loads the classification mapping. A missing row is an empty
// mapping, not an error: nothing classifies via explicit rules until the
// operator saves one.
func (s *Store) GetMapping(ctx context.Context) (models.Mapping, error) {
	row := s.Pool.QueryRow(ctx, `SELECT projects, tokens FROM classification_mapping WHERE id = 1`)
	var m models.Mapping
	if err := row.Scan(&m.Projects, &m.Tokens); err != nil {
		if err == pgx.ErrNoRows {
			return models.Mapping{Projects: []string{}, Tokens: []string{}}, nil
		}
		return models.Mapping{}, err
	}
	if m.Projects == nil {
		m.Projects = []string{}
	}
	if m.Tokens == nil {
		m.Tokens = []string{}
	}
	return m, nil
}

func (s *Store) SaveMapping(ctx context.Context, m models.Mapping) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO classification_mapping (id, projects, tokens, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET
			projects = EXCLUDED.projects,
			tokens = EXCLUDED.tokens,
			updated_at = EXCLUDED.updated_at
	`, m.Projects, m.Tokens)
	return err
}

func (s *Store) ListExceptions(ctx context.Context) ([]models.Exception, error) {
	rows, err := s.Pool.Query(ctx, `SELECT name, exclude, part_time_hours FROM timesheet_exceptions ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Exception{}
	for rows.Next() {
		var e models.Exception
		if err := rows.Scan(&e.Name, &e.Exclude, &e.PartTimeHours); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveExceptions replaces the full exception list.
func (s *Store) SaveExceptions(ctx context.Context, exceptions []models.Exception) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM timesheet_exceptions`); err != nil {
			return err
		}
		for _, e := range exceptions {
			if _, err := tx.Exec(ctx, `
				INSERT INTO timesheet_exceptions (name, exclude, part_time_hours)
				VALUES ($1, $2, $3)
				ON CONFLICT (name) DO UPDATE SET
					exclude = EXCLUDED.exclude,
					part_time_hours = EXCLUDED.part_time_hours
			`, e.Name, e.Exclude, e.PartTimeHours); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ListHolidays(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	rows, err := s.Pool.Query(ctx, `SELECT day FROM holidays WHERE day >= $1 AND day <= $2 ORDER BY day ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []time.Time{}
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) SaveHolidays(ctx context.Context, days []time.Time) error {
	return s.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM holidays`); err != nil {
			return err
		}
		for _, d := range days {
			if _, err := tx.Exec(ctx, `INSERT INTO holidays (day) VALUES ($1) ON CONFLICT (day) DO NOTHING`, d); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) CreateRun(ctx context.Context, status string) (string, error) {
	var id string
	err := s.Pool.QueryRow(ctx, `INSERT INTO runs (status, started_at) VALUES ($1, NOW()) RETURNING id`, status).Scan(&id)
	return id, err
}

func (s *Store) FinishRun(ctx context.Context, runID string, status string, summary []byte) error {
	_, err := s.Pool.Exec(ctx, `UPDATE runs SET status = $1, summary = $2, finished_at = NOW() WHERE id = $3`, status, summary, runID)
	return err
}

func (s *Store) GetLatestRun(ctx context.Context) (models.Run, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, started_at, finished_at, status, summary FROM runs ORDER BY started_at DESC LIMIT 1`)
	var r models.Run
	if err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Summary); err != nil {
		return models.Run{}, err
	}
	return r, nil
}
