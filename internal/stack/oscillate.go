package stack

import "github.com/annel0/arstack/internal/vec"

// Direction знак движения активного блока
type Direction int

const (
	DirNegative Direction = -1
	DirPositive Direction = 1
)

// ActiveAxis возвращает ось движения и разреза: Z для чётной высоты, X для нечётной.
func ActiveAxis(height int) vec.Axis {
	if height%2 == 0 {
		return vec.AxisZ
	}
	return vec.AxisX
}

// OtherAxis возвращает вторую горизонтальную ось
func OtherAxis(axis vec.Axis) vec.Axis {
	if axis == vec.AxisX {
		return vec.AxisZ
	}
	return vec.AxisX
}

// Oscillate делает один шаг движения между -bound и +bound.
// Чистая функция: направление разворачивается на границе, затем позиция сдвигается на speed.
func Oscillate(position float64, dir Direction, bound, speed float64) (float64, Direction) {
	if position >= bound {
		dir = DirNegative
	} else if position <= -bound {
		dir = DirPositive
	}
	return position + float64(dir)*speed, dir
}
