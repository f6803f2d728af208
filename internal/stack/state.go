package stack

import "github.com/annel0/arstack/internal/vec"

// StackState хранит состояние одной партии.
// Владелец (игровой цикл) передаёт его в Resolve и Tick явно; внутри пакета
// состояние не разделяется между горутинами.
type StackState struct {
	Height         int       `json:"height"`
	Direction      Direction `json:"direction"`
	PerfectMatches int       `json:"perfect_matches"`
	Previous       Block     `json:"previous"`
	Current        *Block    `json:"current,omitempty"`

	// Промежуточные значения последнего действия
	Offset         vec.Vec3Float `json:"offset"`
	AbsoluteOffset vec.Vec3Float `json:"absolute_offset"`
	NewSize        vec.Vec3Float `json:"new_size"`

	Tower     []Block `json:"tower"`
	ViewShift float64 `json:"view_shift"`
	Over      bool    `json:"over"`
}

// NewStackState создаёт состояние новой партии с первым движущимся блоком
func NewStackState() *StackState {
	s := &StackState{}
	s.Reset()
	return s
}

// Reset возвращает состояние к началу партии
func (s *StackState) Reset() {
	*s = StackState{
		Direction: DirPositive,
		Previous: Block{
			Index:    -1,
			Position: vec.Vec3Float{X: 0, Y: BlockHeight * 0.5, Z: 0},
			Size:     vec.Vec3Float{X: BaseFootprint, Y: BlockHeight, Z: BaseFootprint},
		},
		Tower: make([]Block, 0, 32),
	}

	first := Block{
		Index:    0,
		Position: vec.Vec3Float{X: 0, Y: BlockHeight*0.5 + BlockHeight, Z: -BounceBound},
		Size:     vec.Vec3Float{X: BaseFootprint, Y: BlockHeight, Z: BaseFootprint},
		Hue:      Hue(0),
	}
	s.Current = &first
}

// Tick сдвигает активный блок на один кадр вдоль активной оси.
// Возвращает false, если двигать нечего.
func (s *StackState) Tick() bool {
	if s.Over || s.Current == nil {
		return false
	}

	axis := ActiveAxis(s.Height)
	pos, dir := Oscillate(s.Current.Position.Get(axis), s.Direction, BounceBound, StepSpeed)
	s.Current.Position = s.Current.Position.With(axis, pos)
	s.Direction = dir
	return true
}

// Score возвращает счёт для отображения: 0 до первого действия, затем height+1.
func (s *StackState) Score() int {
	if s.Height == 0 {
		return 0
	}
	return s.Height + 1
}

// Clone возвращает глубокую копию состояния
func (s *StackState) Clone() *StackState {
	c := *s
	if s.Current != nil {
		cur := *s.Current
		c.Current = &cur
	}
	c.Tower = append([]Block(nil), s.Tower...)
	return &c
}

// measure пересчитывает смещение и новый размер для снимка текущего блока
func (s *StackState) measure(current Block) {
	s.Offset = s.Previous.Position.Sub(current.Position)
	s.AbsoluteOffset = s.Offset.Abs()
	s.NewSize = current.Size.Sub(s.AbsoluteOffset)
}

// restoreView показывает все блоки и возвращает башню на место
func (s *StackState) restoreView() {
	for i := range s.Tower {
		s.Tower[i].Hidden = false
	}
	s.ViewShift = 0
}
