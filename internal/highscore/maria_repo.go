package highscore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MariaRepo хранит рекорд в таблице high_scores MariaDB/MySQL.
type MariaRepo struct {
	db  *sql.DB
	key string
}

// NewMariaRepo подключается к базе и создаёт таблицу, если её нет.
//
// Параметры:
//
//	dsn - строка подключения (user:pass@tcp(host:port)/dbname)
//	key - имя рекорда
func NewMariaRepo(ctx context.Context, dsn, key string) (*MariaRepo, error) {
	if key == "" {
		key = DefaultKey
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaRepo{db: db, key: key}
	if err := repo.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *MariaRepo) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS high_scores (
			score_key  VARCHAR(64) PRIMARY KEY,
			value      INT         NOT NULL,
			updated_at TIMESTAMP   DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE   CURRENT_TIMESTAMP
		) ENGINE=InnoDB
	`
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка создания таблицы high_scores: %w", err)
	}
	return nil
}

func (r *MariaRepo) Load(ctx context.Context) (int, bool, error) {
	var value int
	err := r.db.QueryRowContext(ctx, `SELECT value FROM high_scores WHERE score_key = ?`, r.key).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка загрузки рекорда: %w", err)
	}
	return value, true, nil
}

func (r *MariaRepo) RecordMax(ctx context.Context, height int) (int, error) {
	if height < 0 {
		return 0, ErrNegativeScore
	}

	query := `
		INSERT INTO high_scores (score_key, value)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE
			value = GREATEST(value, VALUES(value))
	`
	if _, err := r.db.ExecContext(ctx, query, r.key, height); err != nil {
		return 0, fmt.Errorf("ошибка сохранения рекорда: %w", err)
	}

	value, _, err := r.Load(ctx)
	return value, err
}

func (r *MariaRepo) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM high_scores WHERE score_key = ?`, r.key); err != nil {
		return fmt.Errorf("ошибка сброса рекорда: %w", err)
	}
	return nil
}

func (r *MariaRepo) Close() error {
	return r.db.Close()
}
