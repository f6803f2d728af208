package highscore

import (
	"context"
	"sync"

	"github.com/annel0/arstack/internal/logging"
)

// Tracker хранит лучший результат в памяти и синхронизирует его с Repo.
// Значение только растёт; чтение не обращается к хранилищу.
type Tracker struct {
	repo Repo

	mu   sync.RWMutex
	best int
}

// NewTracker загружает сохранённый рекорд. Отсутствие записи означает 0.
func NewTracker(ctx context.Context, repo Repo) (*Tracker, error) {
	best, found, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if found {
		logging.Info("🏆 Загружен рекорд: %d", best)
	}
	return &Tracker{repo: repo, best: best}, nil
}

// RecordFinalHeight сохраняет высоту законченной партии, если она больше рекорда.
// Возвращает true, если рекорд обновлён.
func (t *Tracker) RecordFinalHeight(ctx context.Context, height int) (bool, error) {
	if height < 0 {
		return false, ErrNegativeScore
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if height <= t.best {
		return false, nil
	}

	stored, err := t.repo.RecordMax(ctx, height)
	if err != nil {
		return false, err
	}

	// Другой процесс мог записать большее значение
	t.best = stored
	if stored != height {
		logging.Info("🔄 Рекорд %d уже установлен другим процессом", stored)
		return false, nil
	}
	logging.Info("🏆 Новый рекорд: %d", stored)
	return true, nil
}

// CurrentHighScore возвращает текущий рекорд
func (t *Tracker) CurrentHighScore() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.best
}

// Reset обнуляет рекорд в хранилище и в памяти
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.repo.Reset(ctx); err != nil {
		return err
	}
	t.best = 0
	logging.Warn("🧹 Рекорд сброшен")
	return nil
}

// Close закрывает хранилище
func (t *Tracker) Close() error {
	return t.repo.Close()
}
