package main

import (
	"github.com/annel0/arstack/internal/stack"
	"github.com/annel0/arstack/internal/vec"
)

// Ускорение свободного падения для обломков
var gravity = vec.Vec3Float{Y: -9.8}

type debris struct {
	block    stack.Block
	velocity vec.Vec3Float
}

// debrisField падающие обломки. Движок только отдаёт обрезки, падают они здесь.
type debrisField struct {
	items []debris
}

func (d *debrisField) add(b stack.Block) {
	d.items = append(d.items, debris{block: b})
}

// step сдвигает обломки на dt секунд и убирает упавшие ниже CullY
func (d *debrisField) step(dt float64) {
	kept := d.items[:0]
	for _, it := range d.items {
		it.velocity = it.velocity.Add(gravity.Mul(dt))
		it.block.Position = it.block.Position.Add(it.velocity.Mul(dt))
		if !stack.Culled(it.block.Position.Y) {
			kept = append(kept, it)
		}
	}
	d.items = kept
}

func (d *debrisField) blocks() []stack.Block {
	out := make([]stack.Block, len(d.items))
	for i, it := range d.items {
		out[i] = it.block
	}
	return out
}

func (d *debrisField) clear() {
	d.items = d.items[:0]
}
