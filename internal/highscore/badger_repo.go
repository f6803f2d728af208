package highscore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dgraph-io/badger/v3"
)

// BadgerRepo хранит рекорд во встроенной BadgerDB.
type BadgerRepo struct {
	db  *badger.DB
	key []byte
}

// NewBadgerRepo открывает BadgerDB в dataPath/highscore.
// Пустой dataPath открывает базу в памяти (для тестов).
func NewBadgerRepo(dataPath, key string) (*BadgerRepo, error) {
	if key == "" {
		key = DefaultKey
	}

	var opts badger.Options
	if dataPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dataPath, "highscore"))
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerRepo{db: db, key: []byte(key)}, nil
}

func (r *BadgerRepo) Load(ctx context.Context) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	var (
		value int
		found bool
	)
	err := r.db.View(func(txn *badger.Txn) error {
		v, ok, err := readValue(txn, r.key)
		value, found = v, ok
		return err
	})
	if err != nil {
		return 0, false, fmt.Errorf("ошибка чтения рекорда из BadgerDB: %w", err)
	}
	return value, found, nil
}

func (r *BadgerRepo) RecordMax(ctx context.Context, height int) (int, error) {
	if height < 0 {
		return 0, ErrNegativeScore
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var result int
	err := r.db.Update(func(txn *badger.Txn) error {
		current, found, err := readValue(txn, r.key)
		if err != nil {
			return err
		}
		if found && current >= height {
			result = current
			return nil
		}
		result = height
		return txn.Set(r.key, []byte(strconv.Itoa(height)))
	})
	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения рекорда в BadgerDB: %w", err)
	}
	return result, nil
}

func (r *BadgerRepo) Reset(ctx context.Context) error {
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(r.key)
	})
}

func (r *BadgerRepo) Close() error {
	return r.db.Close()
}

// readValue читает число по ключу внутри транзакции
func readValue(txn *badger.Txn, key []byte) (int, bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var value int
	err = item.Value(func(val []byte) error {
		v, err := strconv.Atoi(string(val))
		if err != nil {
			return fmt.Errorf("повреждённое значение рекорда %q: %w", string(val), err)
		}
		value = v
		return nil
	})
	return value, err == nil, err
}
