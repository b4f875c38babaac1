package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the job collection in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if err := s.seedIfEmpty(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS job_postings (
			id TEXT PRIMARY KEY,
			position INT NOT NULL,
			title TEXT NOT NULL,
			company TEXT NOT NULL,
			location TEXT NOT NULL,
			job_type TEXT NOT NULL,
			work_type TEXT NOT NULL,
			salary TEXT NOT NULL,
			description TEXT NOT NULL,
			requirements TEXT[] NOT NULL DEFAULT '{}',
			posted_date TEXT NOT NULL,
			match_percentage INT NOT NULL,
			liked BOOLEAN NOT NULL DEFAULT FALSE,
			applied BOOLEAN NOT NULL DEFAULT FALSE,
			level TEXT NOT NULL DEFAULT '',
			experience TEXT NOT NULL DEFAULT '',
			applicants INT NOT NULL DEFAULT 0,
			country TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_job_postings_position ON job_postings (position);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) seedIfEmpty(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM job_postings`).Scan(&count); err != nil {
		return fmt.Errorf("count postings: %w", err)
	}
	if count > 0 {
		return nil
	}
	for i, j := range SeedJobs() {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO job_postings
			 (id, position, title, company, location, job_type, work_type, salary, description,
			  requirements, posted_date, match_percentage, liked, applied, level, experience, applicants, country)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
			j.ID, i, j.Title, j.Company, j.Location, j.Type, j.WorkType, j.Salary, j.Description,
			j.Requirements, j.PostedDate, j.MatchPercentage, j.Liked, j.Applied, j.Level, j.Experience, j.Applicants, j.Country,
		)
		if err != nil {
			return fmt.Errorf("seed posting %s: %w", j.ID, err)
		}
	}
	return nil
}

const jobColumns = `id, title, company, location, job_type, work_type, salary, description,
	requirements, posted_date, match_percentage, liked, applied, level, experience, applicants, country`

func (s *PostgresStore) List(ctx context.Context) ([]Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM job_postings ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query postings: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate postings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_postings WHERE id=$1`, id)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return j, err
}

func (s *PostgresStore) SetLiked(ctx context.Context, id string, liked bool) (Job, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE job_postings SET liked=$2 WHERE id=$1`, id, liked)
	if err != nil {
		return Job{}, fmt.Errorf("update liked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Job{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *PostgresStore) SetApplied(ctx context.Context, id string) (Job, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE job_postings SET applied=TRUE WHERE id=$1`, id)
	if err != nil {
		return Job{}, fmt.Errorf("update applied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Job{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanJob(row pgx.Row) (Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.Title, &j.Company, &j.Location, &j.Type, &j.WorkType, &j.Salary, &j.Description,
		&j.Requirements, &j.PostedDate, &j.MatchPercentage, &j.Liked, &j.Applied,
		&j.Level, &j.Experience, &j.Applicants, &j.Country,
	)
	if err != nil {
		return Job{}, err
	}
	return j, nil
}
