package stack

import (
	"errors"

	"github.com/annel0/arstack/internal/vec"
)

var (
	// ErrNoActiveBlock возвращается, если нажатие пришло без движущегося блока
	ErrNoActiveBlock = errors.New("нет активного блока")
	// ErrGameOver возвращается при нажатии после окончания партии
	ErrGameOver = errors.New("партия окончена")
)

// OutcomeKind различает результаты разреза
type OutcomeKind int

const (
	OutcomeContinue OutcomeKind = iota
	OutcomeGameOver
)

// String возвращает строковое представление результата
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeContinue:
		return "continue"
	case OutcomeGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText сериализует вид результата строкой
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Window описывает сдвиг видимого окна башни после уплотнения
type Window struct {
	HideBelow float64 `json:"hide_below"` // Блоки с Y ниже этого значения скрыты
	Shift     float64 `json:"shift"`      // Сдвиг всей башни по Y
}

// Outcome результат одного нажатия. Все блоки внутри являются независимыми копиями,
// их можно передавать физике и рендеру без синхронизации.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	Axis vec.Axis    `json:"axis"`

	// Продолжение игры
	Surviving    *Block  `json:"surviving,omitempty"`
	Fragment     *Block  `json:"fragment,omitempty"`
	Next         *Block  `json:"next,omitempty"`
	Score        int     `json:"score"`
	Perfect      bool    `json:"perfect"`
	BonusApplied bool    `json:"bonus_applied"`
	Window       *Window `json:"window,omitempty"`

	// Конец игры
	FinalHeight int    `json:"final_height"`
	Falling     *Block `json:"falling,omitempty"`
}

// Resolve разрезает текущий блок по блоку под ним.
// Позиция текущего блока читается один раз, все решения принимаются по этому снимку.
func Resolve(s *StackState) (Outcome, error) {
	if s.Over {
		return Outcome{}, ErrGameOver
	}
	if s.Current == nil {
		return Outcome{}, ErrNoActiveBlock
	}

	axis := ActiveAxis(s.Height)
	current := *s.Current
	s.measure(current)

	// Разрез съел весь блок: ноль тоже считается проигрышем
	if s.NewSize.Get(axis) <= 0 {
		falling := current
		falling.Body = BodyDynamic

		s.Current = nil
		s.Over = true
		s.restoreView()

		return Outcome{
			Kind:        OutcomeGameOver,
			Axis:        axis,
			FinalHeight: s.Height,
			Falling:     &falling,
		}, nil
	}

	out := Outcome{Kind: OutcomeContinue, Axis: axis}

	if s.AbsoluteOffset.Get(axis) <= PerfectTolerance {
		current.Position = current.Position.With(axis, s.Previous.Position.Get(axis))
		s.PerfectMatches++
		out.Perfect = true

		s.measure(current)

		// Бонус добавляется после пересчёта, иначе пересчёт его затрёт
		if s.PerfectMatches >= BonusStreak && current.Size.Get(axis) < BonusSizeLimit {
			s.NewSize = s.NewSize.With(axis, s.NewSize.Get(axis)+BonusGrowth)
			out.BonusApplied = true
		}
	} else {
		s.PerfectMatches = 0
	}

	surviving := current
	surviving.Body = BodyKinematic
	surviving.Size = current.Size.With(axis, s.NewSize.Get(axis))
	surviving.Position = vec.Vec3Float{
		X: current.Position.X + s.Offset.X/2,
		Y: current.Position.Y,
		Z: current.Position.Z + s.Offset.Z/2,
	}

	if thickness := s.AbsoluteOffset.Get(axis); thickness > 0 {
		fragment := cutFragment(current, surviving, s.Offset.Get(axis), thickness, axis)
		out.Fragment = &fragment
	}

	placed := s.Height
	s.Tower = append(s.Tower, surviving)

	if placed >= CompactionHeight {
		threshold := float64(placed-VisibleLayers) * BlockHeight
		for i := range s.Tower {
			if s.Tower[i].Position.Y < threshold {
				s.Tower[i].Hidden = true
			}
		}
		s.ViewShift -= BlockHeight
		out.Window = &Window{HideBelow: threshold, Shift: -BlockHeight}
	}

	s.Height++
	out.Score = s.Height + 1

	s.Previous = surviving
	s.Previous.Size.Y = BlockHeight

	next := spawnNext(surviving, current.Position.Y, s.Height)
	s.Current = &next

	out.Surviving = &surviving
	nextCopy := next
	out.Next = &nextCopy

	return out, nil
}

// cutFragment строит отпавший кусок толщиной |offset| вплотную к оставшемуся блоку.
// Знак offset определяет, с какой стороны он отпадает.
func cutFragment(current, surviving Block, offset, thickness float64, axis vec.Axis) Block {
	size := current.Size.Get(axis)
	center := surviving.Position.Get(axis)

	var pos float64
	if offset > 0 {
		pos = center - offset/2 - (size-offset)/2
	} else {
		pos = center - offset/2 + (size+offset)/2
	}

	return Block{
		Index:    current.Index,
		Position: surviving.Position.With(vec.AxisY, current.Position.Y).With(axis, pos),
		Size:     current.Size.With(axis, thickness),
		Hue:      current.Hue,
		Body:     BodyDynamic,
	}
}

// spawnNext создаёт следующий блок над оставшимся, на краю новой активной оси
func spawnNext(surviving Block, y float64, height int) Block {
	axis := ActiveAxis(height)
	pos := surviving.Position
	pos.Y = y + BlockHeight

	return Block{
		Index:    height,
		Position: pos.With(axis, -BounceBound),
		Size:     vec.Vec3Float{X: surviving.Size.X, Y: BlockHeight, Z: surviving.Size.Z},
		Hue:      Hue(height),
		Body:     BodyKinematic,
	}
}
