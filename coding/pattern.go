// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import "github.com/unixdj/qrgen/grid"

// Structural pattern sizes in modules.
const (
	FinderSize    = 7
	AlignmentSize = 5
)

// FinderAnchors returns the top left corners of the three finder
// patterns of a QR code of version v: top left, top right and bottom
// left.  The bottom right corner never has one.
func FinderAnchors(v Version) [3][2]int {
	n := v.Size() - FinderSize
	return [3][2]int{{0, 0}, {n, 0}, {0, n}}
}

// alignmentCoords returns the row and column coordinates of alignment
// pattern centres.  The first is 6, the last size-7, and the ones
// between are spaced evenly from the last with the step rounded down
// to an even number.
func alignmentCoords(v Version) []int {
	if v < 2 {
		return nil
	}
	n := int(v)/7 + 2
	first, last := 6, v.Size()-1-6
	prev := (first + last*(n-2) + (n-1)/2) / (n - 1) &^ 1
	step := last - prev
	c := make([]int, n)
	c[0] = first
	for i := 1; i < n; i++ {
		c[i] = last - (n-1-i)*step
	}
	return c
}

// AlignmentPositions returns the centres of the alignment patterns of
// a QR code of version v, as (x,y) pairs in row major order.
// Candidates whose 5×5 footprint touches a finder pattern are left
// out.
func AlignmentPositions(v Version) [][2]int {
	if !v.Valid() {
		return nil
	}
	finders := finderFootprint(v)
	c := alignmentCoords(v)
	pos := make([][2]int, 0, len(c)*len(c))
	for _, y := range c {
		for _, x := range c {
			if !overlaps(finders, x-AlignmentSize/2, y-AlignmentSize/2,
				AlignmentSize) {
				pos = append(pos, [2]int{x, y})
			}
		}
	}
	return pos
}

// finderFootprint returns a grid with the 7×7 squares of the finder
// patterns set.
func finderFootprint(v Version) *grid.Grid {
	g := grid.New(v.Size())
	for _, a := range FinderAnchors(v) {
		for i := 0; i < FinderSize; i++ {
			for j := 0; j < FinderSize; j++ {
				g.Set(a[0]+i, a[1]+j, true)
			}
		}
	}
	return g
}

// overlaps reports whether any cell of the n×n square at (x,y) is set
// in g.
func overlaps(g *grid.Grid, x, y, n int) bool {
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			if g.Get(x+i, y+j) {
				return true
			}
		}
	}
	return false
}

var (
	finderPattern = [FinderSize]uint8{
		0b1111111,
		0b1000001,
		0b1011101,
		0b1011101,
		0b1011101,
		0b1000001,
		0b1111111,
	}
	alignmentPattern = [AlignmentSize]uint8{
		0b11111,
		0b10001,
		0b10101,
		0b10001,
		0b11111,
	}
)

// stamp sets the n×n pattern p with its top left corner at (x,y).
// Bit n-1 of each row is the leftmost module.
func stamp(g *grid.Grid, x, y, n int, p []uint8) {
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			g.Set(x+i, y+j, p[j]>>uint(n-1-i)&1 != 0)
		}
	}
}

// PatternMask returns a mask of the structural modules of a QR code
// of version v: finder and alignment patterns.  Set bits are lit
// modules of the patterns.  The mask depends only on the version, not
// on the encoded content.
func PatternMask(v Version) (*grid.Grid, error) {
	if !v.Valid() {
		return nil, ErrVersion
	}
	g := grid.New(v.Size())
	for _, a := range FinderAnchors(v) {
		stamp(g, a[0], a[1], FinderSize, finderPattern[:])
	}
	for _, p := range AlignmentPositions(v) {
		stamp(g, p[0]-AlignmentSize/2, p[1]-AlignmentSize/2,
			AlignmentSize, alignmentPattern[:])
	}
	return g, nil
}
