// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing/common"
)

// A Quad is a quadrilateral given by its top left, top right, bottom
// right and bottom left corners.
type Quad [4][2]float64

// Quads returns the source and destination quadrilaterals of the
// perspective warp of a w×h image.  The source is the image inset by
// the padding.  In the destination the top left corner moves right,
// the top right one left and down, the bottom right one up, and the
// bottom left one stays, each by p.PixelSize×p.TransformAmount.
func Quads(w, h int, p *Params) (src, dst Quad) {
	fw, fh := float64(w), float64(h)
	pad := float64(p.Padding)
	d := float64(p.PixelSize) * p.TransformAmount
	src = Quad{
		{pad, pad},
		{fw - pad, pad},
		{fw - pad, fh - pad},
		{pad, fh - pad},
	}
	dst = Quad{
		{pad + d, pad},
		{fw - (pad + d), pad + d},
		{fw - pad, fh - (pad + d)},
		{pad, fh - pad},
	}
	return src, dst
}

func quadToQuad(from, to Quad) *common.PerspectiveTransform {
	return common.PerspectiveTransform_QuadrilateralToQuadrilateral(
		from[0][0], from[0][1], from[1][0], from[1][1],
		from[2][0], from[2][1], from[3][0], from[3][1],
		to[0][0], to[0][1], to[1][0], to[1][1],
		to[2][0], to[2][1], to[3][0], to[3][1])
}

// Warp applies the perspective warp described by Quads to img and
// returns an image of the same size.  Each output pixel is sampled
// bilinearly from img through the inverse transform; samples from
// outside img take the background colour.  With p.TransformAmount 0
// Warp returns an exact copy.
func Warp(img image.Image, p *Params) (*image.NRGBA, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	src := imaging.Clone(img)
	if p.TransformAmount == 0 {
		return src, nil
	}
	w, h := src.Rect.Dx(), src.Rect.Dy()
	sq, dq := Quads(w, h, p)
	inv := quadToQuad(dq, sq)

	bg := p.Background.NRGBA()
	s := sampler{src, [4]float64{
		float64(bg.R), float64(bg.G), float64(bg.B), float64(bg.A),
	}}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	pts := make([]float64, 2*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pts[2*x] = float64(x)
			pts[2*x+1] = float64(y)
		}
		inv.TransformPoints(pts)
		row := out.Pix[y*out.Stride : y*out.Stride+4*w]
		for x := 0; x < w; x++ {
			s.at(row[4*x:4*x+4], pts[2*x], pts[2*x+1])
		}
	}
	return out, nil
}

type sampler struct {
	img *image.NRGBA
	bg  [4]float64
}

// at writes to px the colour at (x,y), interpolated between the four
// surrounding pixel centres.  Pixels outside the image are bg.
func (s *sampler) at(px []uint8, x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		s.put(px, s.bg)
		return
	}
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	b := s.img.Rect
	if ix < -1 || iy < -1 || ix >= b.Dx() || iy >= b.Dy() {
		s.put(px, s.bg)
		return
	}
	var c [4]float64
	for i, w := range [4]float64{
		(1 - fx) * (1 - fy), fx * (1 - fy), (1 - fx) * fy, fx * fy,
	} {
		if w == 0 {
			continue
		}
		p := s.pixel(ix+i&1, iy+i>>1)
		for k := range c {
			c[k] += w * p[k]
		}
	}
	s.put(px, c)
}

func (s *sampler) pixel(x, y int) [4]float64 {
	b := s.img.Rect
	if x < 0 || y < 0 || x >= b.Dx() || y >= b.Dy() {
		return s.bg
	}
	i := y*s.img.Stride + 4*x
	p := s.img.Pix[i : i+4]
	return [4]float64{
		float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3]),
	}
}

func (s *sampler) put(px []uint8, c [4]float64) {
	for k, v := range c {
		px[k] = uint8(math.Min(255, math.Max(0, math.Round(v))))
	}
}
