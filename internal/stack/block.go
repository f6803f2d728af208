package stack

import "github.com/annel0/arstack/internal/vec"

// Body описывает, кто управляет блоком: игра (kinematic) или физика (dynamic).
type Body int

const (
	BodyKinematic Body = iota
	BodyDynamic
)

// String возвращает строковое представление типа тела
func (b Body) String() string {
	switch b {
	case BodyKinematic:
		return "kinematic"
	case BodyDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// MarshalText сериализует тип тела в JSON/YAML как строку
func (b Body) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// Block снимок прямоугольного блока: центр, размеры и оформление.
// После создания блок не меняется; движущийся блок живёт в StackState.Current.
type Block struct {
	Index    int           `json:"index"`
	Position vec.Vec3Float `json:"position"`
	Size     vec.Vec3Float `json:"size"`
	Hue      float64       `json:"hue"`
	Body     Body          `json:"body"`
	Hidden   bool          `json:"hidden,omitempty"`
}

// Min возвращает нижнюю границу блока по оси
func (b Block) Min(axis vec.Axis) float64 {
	return b.Position.Get(axis) - b.Size.Get(axis)/2
}

// Max возвращает верхнюю границу блока по оси
func (b Block) Max(axis vec.Axis) float64 {
	return b.Position.Get(axis) + b.Size.Get(axis)/2
}

// Footprint возвращает площадь горизонтального сечения
func (b Block) Footprint() float64 {
	return b.Size.X * b.Size.Z
}

// Hue возвращает оттенок (0..1) для блока с указанным номером.
// Насыщенность 0.7 и яркость 0.9 фиксированы у клиента.
func Hue(index int) float64 {
	if index < 0 {
		index = -index
	}
	return float64(index%hueSteps) * 15.0 / 360.0
}

// Culled сообщает, упал ли обломок достаточно низко, чтобы убрать его из сцены
func Culled(y float64) bool {
	return y <= CullY
}
