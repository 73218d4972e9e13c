// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Composite scales img by p.ImageSize/width × p.CodeScale, keeping its
// aspect ratio, and pastes it centred on a p.ImageSize square of the
// background colour.  A scaled image larger than the canvas is
// clipped.
func Composite(img image.Image, p *Params) (*image.NRGBA, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrGeometry)
	}
	f := float64(p.ImageSize) / float64(b.Dx()) * p.CodeScale
	w := int(math.Round(f * float64(b.Dx())))
	h := int(math.Round(f * float64(b.Dy())))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: code scaled to %d×%d",
			ErrGeometry, w, h)
	}
	scaled := img
	if w != b.Dx() || h != b.Dy() {
		scaled = imaging.Resize(img, w, h, imaging.CatmullRom)
	}
	canvas := imaging.New(p.ImageSize, p.ImageSize, p.Background.NRGBA())
	// Floor, so oversized images shift up and left.
	off := image.Pt((p.ImageSize-w)>>1, (p.ImageSize-h)>>1)
	return imaging.Paste(canvas, scaled, off), nil
}
