package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// Store хранит записи партий
type Store interface {
	Save(ctx context.Context, r Replay) error
	Load(ctx context.Context, id string) (Replay, error)
	List(ctx context.Context, limit int) ([]Replay, error)
	Close() error
}

//================ In-Memory implementation =================//

// MemoryStore хранит записи в памяти
type MemoryStore struct {
	mu      sync.RWMutex
	replays map[string]Replay
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{replays: make(map[string]Replay)}
}

func (s *MemoryStore) Save(ctx context.Context, r Replay) error {
	s.mu.Lock()
	s.replays[r.ID] = r
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (Replay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.replays[id]
	if !ok {
		return Replay{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Replay, error) {
	s.mu.RLock()
	out := make([]Replay, 0, len(s.replays))
	for _, r := range s.replays {
		out = append(out, r)
	}
	s.mu.RUnlock()
	return newestFirst(out, limit), nil
}

func (s *MemoryStore) Close() error { return nil }

//================ Badger implementation =================//

const keyPrefix = "replay:"

// BadgerStore хранит записи в BadgerDB, сжатые zstd
type BadgerStore struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewBadgerStore открывает BadgerDB в dataPath/replays; пустой путь: база в памяти
func NewBadgerStore(dataPath string) (*BadgerStore, error) {
	var opts badger.Options
	if dataPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dataPath, "replays"))
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd decoder: %w", err)
	}

	return &BadgerStore{db: db, encoder: encoder, decoder: decoder}, nil
}

func (s *BadgerStore) Save(ctx context.Context, r Replay) error {
	if r.ID == "" {
		return errors.New("replay без идентификатора")
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("ошибка сериализации replay: %w", err)
	}
	compressed := s.encoder.EncodeAll(data, nil)

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+r.ID), compressed)
	})
}

func (s *BadgerStore) Load(ctx context.Context, id string) (Replay, error) {
	var r Replay
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return s.decode(val, &r)
		})
	})
	return r, err
}

func (s *BadgerStore) List(ctx context.Context, limit int) ([]Replay, error) {
	var out []Replay
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var r Replay
			if err := it.Item().Value(func(val []byte) error {
				return s.decode(val, &r)
			}); err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newestFirst(out, limit), nil
}

func (s *BadgerStore) decode(val []byte, r *Replay) error {
	data, err := s.decoder.DecodeAll(val, nil)
	if err != nil {
		return fmt.Errorf("ошибка распаковки replay: %w", err)
	}
	return json.Unmarshal(data, r)
}

func (s *BadgerStore) Close() error {
	s.decoder.Close()
	_ = s.encoder.Close()
	return s.db.Close()
}

func newestFirst(replays []Replay, limit int) []Replay {
	sort.Slice(replays, func(i, j int) bool {
		return replays[i].CreatedAt.After(replays[j].CreatedAt)
	})
	if limit > 0 && len(replays) > limit {
		replays = replays[:limit]
	}
	return replays
}
