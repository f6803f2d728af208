package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/gdamore/tcell/v2"

	"github.com/annel0/arstack/internal/game"
	"github.com/annel0/arstack/internal/stack"
	"github.com/annel0/arstack/internal/vec"
)

// Видимый диапазон по горизонтали: граница качания плюс половина основания
const worldHalfWidth = stack.BounceBound + stack.BaseFootprint/2

var (
	styleText  = tcell.StyleDefault
	styleTitle = tcell.StyleDefault.Bold(true)
	styleHint  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleAlert = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleGood  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
)

// frame всё, что нужно для отрисовки одного кадра
type frame struct {
	View    game.View
	Message string
	Good    bool
	Demo    bool
	Debris  []stack.Block
}

// render рисует две проекции башни: по X слева и по Z справа
func render(scr tcell.Screen, f frame) {
	scr.Clear()
	w, h := scr.Size()

	v := f.View
	header := fmt.Sprintf("Счёт: %d   Рекорд: %d   Высота: %d   Идеальных подряд: %d   Площадь: %.3f",
		v.Score, v.HighScore, v.Height, v.PerfectMatches, v.Previous.Footprint())
	drawText(scr, 1, 0, styleTitle, header)

	hint := "ПРОБЕЛ — положить блок   R — заново   Q — выход"
	if f.Demo {
		hint = "ДЕМО: играет бот   R — заново   Q — выход"
	}
	drawText(scr, 1, h-1, styleHint, hint)

	if f.Message != "" {
		style := styleAlert
		if f.Good {
			style = styleGood
		}
		drawText(scr, 1, 1, style, f.Message)
	}

	top, bottom := 3, h-3
	if bottom <= top {
		return
	}
	panel := (w - 3) / 2
	drawText(scr, 1, 2, styleHint, "вид по X")
	drawText(scr, panel+2, 2, styleHint, "вид по Z")

	blocks := visibleBlocks(v, bottom-top+1)
	for i, b := range blocks {
		y := bottom - i
		style := tcell.StyleDefault.Foreground(hueColor(b.Hue))
		drawSpan(scr, 1, panel, y, b.Min(vec.AxisX), b.Max(vec.AxisX), style)
		drawSpan(scr, panel+2, panel, y, b.Min(vec.AxisZ), b.Max(vec.AxisZ), style)
	}

	if len(blocks) == 0 {
		return
	}
	for _, d := range f.Debris {
		y := bottom - debrisRow(d.Position.Y, blocks[0].Position.Y)
		if y < top || y > bottom {
			continue
		}
		style := tcell.StyleDefault.Foreground(hueColor(d.Hue)).Dim(true)
		drawSpan(scr, 1, panel, y, d.Min(vec.AxisX), d.Max(vec.AxisX), style)
		drawSpan(scr, panel+2, panel, y, d.Min(vec.AxisZ), d.Max(vec.AxisZ), style)
	}
}

// debrisRow номер строки над нижним видимым блоком для высоты y
func debrisRow(y, baseY float64) int {
	return int(math.Round((y - baseY) / stack.BlockHeight))
}

// visibleBlocks возвращает не скрытые блоки снизу вверх, не больше rows штук.
// Движущийся блок всегда последний.
func visibleBlocks(v game.View, rows int) []stack.Block {
	blocks := make([]stack.Block, 0, len(v.Tower)+2)
	for _, b := range v.Tower {
		if !b.Hidden {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) == 0 {
		blocks = append(blocks, v.Previous)
	}
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Index < blocks[j].Index })

	if v.Current != nil {
		blocks = append(blocks, *v.Current)
	}
	if rows > 0 && len(blocks) > rows {
		blocks = blocks[len(blocks)-rows:]
	}
	return blocks
}

// column переводит мировую координату в столбец панели шириной width
func column(x float64, width int) int {
	c := int(math.Round((x + worldHalfWidth) / (2 * worldHalfWidth) * float64(width-1)))
	if c < 0 {
		return 0
	}
	if c > width-1 {
		return width - 1
	}
	return c
}

func drawSpan(scr tcell.Screen, x0, width, y int, from, to float64, style tcell.Style) {
	if width <= 0 {
		return
	}
	for c := column(from, width); c <= column(to, width); c++ {
		scr.SetContent(x0+c, y, '█', nil, style)
	}
}

func drawText(scr tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		scr.SetContent(x, y, r, nil, style)
		x++
	}
}

// hueColor переводит оттенок блока в цвет терминала (насыщенность 0.7, яркость 0.9)
func hueColor(hue float64) tcell.Color {
	const s, v = 0.7, 0.9

	h := math.Mod(hue, 1) * 6
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return tcell.NewRGBColor(int32(r*255), int32(g*255), int32(b*255))
}
