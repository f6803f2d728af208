package highscore

import (
	"context"
	"sync"
)

// MemoryRepo хранит рекорд в памяти.
// ВНИМАНИЕ: значение теряется при перезапуске!
type MemoryRepo struct {
	mu    sync.RWMutex
	value int
	set   bool
}

// NewMemoryRepo создаёт репозиторий в памяти
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Load(ctx context.Context) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value, r.set, nil
}

func (r *MemoryRepo) RecordMax(ctx context.Context, height int) (int, error) {
	if height < 0 {
		return 0, ErrNegativeScore
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.set || height > r.value {
		r.value = height
		r.set = true
	}
	return r.value, nil
}

func (r *MemoryRepo) Reset(ctx context.Context) error {
	r.mu.Lock()
	r.value, r.set = 0, false
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepo) Close() error { return nil }
