package highscore

import (
	"context"
	"fmt"

	"github.com/annel0/arstack/internal/config"
)

// Open создаёт репозиторий рекорда по конфигурации
func Open(ctx context.Context, cfg config.HighScoreConfig) (Repo, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryRepo(), nil
	case "badger":
		return NewBadgerRepo(cfg.DataDir, cfg.Key)
	case "redis":
		return NewRedisRepo(ctx, cfg.RedisAddr, cfg.Key)
	case "mysql":
		return NewMariaRepo(ctx, cfg.MySQLDSN, cfg.Key)
	case "postgres":
		return NewPostgresRepo(ctx, cfg.PostgresDSN, cfg.Key)
	case "mongo":
		return NewMongoRepo(ctx, cfg.MongoURI, cfg.MongoDB, cfg.Key)
	default:
		return nil, fmt.Errorf("неизвестный backend рекорда: %q", cfg.Backend)
	}
}
