// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/fogleman/gg"

	"github.com/unixdj/qrgen/grid"
)

// Radius is the corner radius of rounded modules in image pixels.
// It is reduced to half the pixel size for small modules.
const Radius = 7

// Corner indices.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// Corners records which corners of a module are rounded, indexed by
// TopLeft, TopRight, BottomRight and BottomLeft.
type Corners [4]bool

// cornerSides lists the sides adjacent to each corner.
var cornerSides = [4]grid.Sides{
	TopLeft:     grid.Up | grid.Left,
	TopRight:    grid.Up | grid.Right,
	BottomRight: grid.Down | grid.Right,
	BottomLeft:  grid.Down | grid.Left,
}

// RoundCorners decides which corners of the module at (x,y) of sym to
// round.  A corner is eligible if neither adjacent side has a lit
// neighbour, and an eligible corner is rounded on a coin flip drawn
// from r.  Coins are only drawn for eligible corners, in index order.
func RoundCorners(sym *grid.Grid, x, y int, r *rand.Rand) Corners {
	var c Corners
	n := sym.Neighbors(x, y)
	for i, s := range cornerSides {
		c[i] = n&s == 0 && r.IntN(2) == 0
	}
	return c
}

// Modules draws sym on a square of p.CodeSize(sym.Size()) pixels
// filled with the quiet zone colour.  Each lit module is a rectangle
// with randomly rounded free corners, in the pattern colour where mask
// is set and the module colour elsewhere.
func Modules(sym, mask *grid.Grid, p *Params, r *rand.Rand) (*image.RGBA, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := sym.Size()
	if mask.Size() != n {
		return nil, fmt.Errorf("qr: mask size %d does not match "+
			"symbol size %d", mask.Size(), n)
	}
	size := p.CodeSize(n)
	dc := gg.NewContext(size, size)
	dc.SetColor(p.Quiet)
	dc.Clear()

	// Paths of one colour are filled together; the union of adjacent
	// modules has no seams.
	px := float64(p.PixelSize)
	rad := min(Radius, px/2)
	var pattern, data []modulePath
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !sym.Get(x, y) {
				continue
			}
			m := modulePath{
				x:       float64(p.Padding) + float64(x)*px,
				y:       float64(p.Padding) + float64(y)*px,
				corners: RoundCorners(sym, x, y, r),
			}
			if mask.Get(x, y) {
				pattern = append(pattern, m)
			} else {
				data = append(data, m)
			}
		}
	}
	fill(dc, data, px, rad, p.Module)
	fill(dc, pattern, px, rad, p.Pattern)
	return dc.Image().(*image.RGBA), nil
}

type modulePath struct {
	x, y    float64
	corners Corners
}

func fill(dc *gg.Context, mm []modulePath, px, rad float64, c Color) {
	if len(mm) == 0 {
		return
	}
	for _, m := range mm {
		drawModule(dc, m.x, m.y, px, rad, m.corners)
	}
	dc.SetColor(c)
	dc.Fill()
}

// drawModule adds a clockwise s×s square at (x,y) to the current path,
// with the corners c rounded to radius rad.
func drawModule(dc *gg.Context, x, y, s, rad float64, c Corners) {
	x0, x1 := x, x+s
	y0, y1 := y, y+s
	dc.NewSubPath()
	if c[TopLeft] {
		dc.MoveTo(x0+rad, y0)
	} else {
		dc.MoveTo(x0, y0)
	}
	if c[TopRight] {
		dc.LineTo(x1-rad, y0)
		dc.DrawArc(x1-rad, y0+rad, rad, gg.Radians(270), gg.Radians(360))
	} else {
		dc.LineTo(x1, y0)
	}
	if c[BottomRight] {
		dc.LineTo(x1, y1-rad)
		dc.DrawArc(x1-rad, y1-rad, rad, gg.Radians(0), gg.Radians(90))
	} else {
		dc.LineTo(x1, y1)
	}
	if c[BottomLeft] {
		dc.LineTo(x0+rad, y1)
		dc.DrawArc(x0+rad, y1-rad, rad, gg.Radians(90), gg.Radians(180))
	} else {
		dc.LineTo(x0, y1)
	}
	if c[TopLeft] {
		dc.LineTo(x0, y0+rad)
		dc.DrawArc(x0+rad, y0+rad, rad, gg.Radians(180), gg.Radians(270))
	}
	dc.ClosePath()
}
