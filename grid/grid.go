// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid implements square bit matrices for QR symbols and masks.
package grid

import (
	"fmt"
	"strings"
)

// A Grid is a square matrix of bits.  Like a QR code bitmap, rows are
// packed 8 modules per byte, most significant bit first.
type Grid struct {
	bitmap []byte
	size   int
	stride int
}

// New returns a zeroed size×size Grid.
func New(size int) *Grid {
	if size <= 0 {
		panic("grid: invalid size " + fmt.Sprint(size))
	}
	stride := (size + 7) / 8
	return &Grid{make([]byte, stride*size), size, stride}
}

// FromBitmap returns a Grid using a copy of bitmap, a packed matrix of
// size rows of stride bytes.
func FromBitmap(bitmap []byte, size, stride int) (*Grid, error) {
	if size <= 0 || stride < (size+7)/8 || len(bitmap) < stride*size {
		return nil, fmt.Errorf("grid: bitmap of %d bytes does not hold "+
			"%d rows of stride %d", len(bitmap), size, stride)
	}
	g := New(size)
	for y := 0; y < size; y++ {
		copy(g.bitmap[y*g.stride:(y+1)*g.stride],
			bitmap[y*stride:y*stride+g.stride])
		// clear padding bits past the last module
		if n := size & 7; n != 0 {
			g.bitmap[(y+1)*g.stride-1] &= ^byte(0xff >> n)
		}
	}
	return g, nil
}

// FromBools returns a Grid built from a square [y][x] matrix.
func FromBools(rows [][]bool) (*Grid, error) {
	size := len(rows)
	if size == 0 {
		return nil, fmt.Errorf("grid: empty matrix")
	}
	g := New(size)
	for y, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("grid: row %d has %d columns, "+
				"want %d", y, len(row), size)
		}
		for x, v := range row {
			if v {
				g.Set(x, y, true)
			}
		}
	}
	return g, nil
}

// Size returns the number of modules on a side.
func (g *Grid) Size() int { return g.size }

// In reports whether (x,y) lies within g.
func (g *Grid) In(x, y int) bool {
	return 0 <= x && x < g.size && 0 <= y && y < g.size
}

// Get reports whether the bit at (x,y) is set.  Cells outside g are
// unset.
func (g *Grid) Get(x, y int) bool {
	return g.In(x, y) &&
		g.bitmap[y*g.stride+x/8]&(1<<uint(7-x&7)) != 0
}

// Set sets the bit at (x,y) to v.  Set panics if (x,y) is outside g.
func (g *Grid) Set(x, y int, v bool) {
	if !g.In(x, y) {
		panic(fmt.Sprintf("grid: (%d,%d) outside %d×%d grid",
			x, y, g.size, g.size))
	}
	b := &g.bitmap[y*g.stride+x/8]
	if bit := byte(1) << uint(7-x&7); v {
		*b |= bit
	} else {
		*b &^= bit
	}
}

// Count returns the number of set bits.
func (g *Grid) Count() int {
	n := 0
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			if g.Get(x, y) {
				n++
			}
		}
	}
	return n
}

// Sides is a set of the four orthogonal directions.
type Sides uint8

const (
	Up Sides = 1 << iota
	Right
	Down
	Left
)

// Has reports whether all of t are in s.
func (s Sides) Has(t Sides) bool { return s&t == t }

// Neighbors returns the sides of (x,y) with a set neighbour.  There
// are no neighbours beyond the edges of g.
func (g *Grid) Neighbors(x, y int) Sides {
	var s Sides
	if g.Get(x, y-1) {
		s |= Up
	}
	if g.Get(x+1, y) {
		s |= Right
	}
	if g.Get(x, y+1) {
		s |= Down
	}
	if g.Get(x-1, y) {
		s |= Left
	}
	return s
}

// String returns a text rendering of g, two characters per module,
// "#" for set bits and space for unset.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow((g.size*2 + 1) * g.size)
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			if g.Get(x, y) {
				b.WriteString("##")
			} else {
				b.WriteString("  ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
