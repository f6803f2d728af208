package highscore

import (
	"context"
	"errors"
)

// DefaultKey имя, под которым хранится рекорд
const DefaultKey = "StackHighestScore"

// ErrNegativeScore возвращается при попытке записать отрицательную высоту
var ErrNegativeScore = errors.New("высота не может быть отрицательной")

// Repo определяет интерфейс хранилища единственного целого: рекорда высоты.
// Все реализации гарантируют, что значение не убывает.
type Repo interface {
	// Load возвращает сохранённый рекорд.
	// Возвращает:
	//   int - значение рекорда (0, если не найден)
	//   bool - true, если рекорд уже записывался
	//   error - ошибка хранилища
	Load(ctx context.Context) (int, bool, error)

	// RecordMax атомарно сохраняет max(сохранённое, height) и возвращает итоговое значение.
	RecordMax(ctx context.Context, height int) (int, error)

	// Reset удаляет рекорд (административная операция).
	Reset(ctx context.Context) error

	// Close освобождает соединения.
	Close() error
}
