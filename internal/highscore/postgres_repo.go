package highscore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepo хранит рекорд в PostgreSQL
type PostgresRepo struct {
	pool *pgxpool.Pool
	key  string
}

// NewPostgresRepo создаёт пул соединений и таблицу high_scores
func NewPostgresRepo(ctx context.Context, dsn, key string) (*PostgresRepo, error) {
	if key == "" {
		key = DefaultKey
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с PostgreSQL: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS high_scores (
			score_key  TEXT PRIMARY KEY,
			value      INTEGER NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка создания таблицы high_scores: %w", err)
	}

	return &PostgresRepo{pool: pool, key: key}, nil
}

func (r *PostgresRepo) Load(ctx context.Context) (int, bool, error) {
	var value int
	err := r.pool.QueryRow(ctx, `SELECT value FROM high_scores WHERE score_key = $1`, r.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка загрузки рекорда: %w", err)
	}
	return value, true, nil
}

func (r *PostgresRepo) RecordMax(ctx context.Context, height int) (int, error) {
	if height < 0 {
		return 0, ErrNegativeScore
	}

	var value int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO high_scores (score_key, value)
		VALUES ($1, $2)
		ON CONFLICT (score_key) DO UPDATE
			SET value = GREATEST(high_scores.value, EXCLUDED.value),
			    updated_at = now()
		RETURNING value`, r.key, height).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения рекорда: %w", err)
	}
	return value, nil
}

func (r *PostgresRepo) Reset(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM high_scores WHERE score_key = $1`, r.key); err != nil {
		return fmt.Errorf("ошибка сброса рекорда: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Close() error {
	r.pool.Close()
	return nil
}
