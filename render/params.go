// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package render draws styled QR codes: rounded modules on a quiet
// zone, scaled onto a background canvas and warped in perspective.
package render // import "github.com/unixdj/qrgen/render"

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ErrGeometry is returned when the parameters describe a degenerate
// image.
var ErrGeometry = errors.New("qr: invalid geometry")

// Params describes how a QR code is rendered.
type Params struct {
	PixelSize int `yaml:"pixel_size"` // image pixels per module
	Padding   int `yaml:"padding"`    // quiet zone width in image pixels
	ImageSize int `yaml:"image_size"` // width and height of the output

	Background Color `yaml:"bg_color"`      // canvas outside the code
	Quiet      Color `yaml:"quiet_color"`   // quiet zone and unlit modules
	Module     Color `yaml:"module_color"`  // lit data modules
	Pattern    Color `yaml:"pattern_color"` // lit finder and alignment modules

	// TransformAmount is the perspective displacement in modules.
	TransformAmount float64 `yaml:"transform_amount"`
	// CodeScale is the width of the code relative to the output.
	CodeScale float64 `yaml:"code_scale"`
}

// DefaultParams returns the default rendering parameters.
func DefaultParams() Params {
	return Params{
		PixelSize:       16,
		Padding:         64,
		ImageSize:       512,
		Background:      Color{128, 128, 128},
		Quiet:           Color{225, 225, 225},
		Module:          Color{50, 50, 50},
		Pattern:         Color{0, 0, 0},
		TransformAmount: 2,
		CodeScale:       0.85,
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Validate checks that p describes a non-degenerate image.
func (p *Params) Validate() error {
	switch {
	case p.PixelSize < 1:
		return fmt.Errorf("%w: pixel size %d", ErrGeometry, p.PixelSize)
	case p.Padding < 0:
		return fmt.Errorf("%w: padding %d", ErrGeometry, p.Padding)
	case p.ImageSize < 1:
		return fmt.Errorf("%w: image size %d", ErrGeometry, p.ImageSize)
	case !(p.CodeScale > 0) || !finite(p.CodeScale):
		return fmt.Errorf("%w: code scale %g", ErrGeometry, p.CodeScale)
	case !finite(p.TransformAmount):
		return fmt.Errorf("%w: transform amount %g",
			ErrGeometry, p.TransformAmount)
	}
	return nil
}

// CodeSize returns the width of the rendered module image of a symbol
// with n modules on a side.
func (p *Params) CodeSize(n int) int {
	return n*p.PixelSize + 2*p.Padding
}

// A Color is an opaque RGB colour.
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 0xff}.RGBA()
}

// NRGBA returns c as color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{c.R, c.G, c.B, 0xff}
}

var colorNames = map[string]Color{
	"black":  {0x00, 0x00, 0x00},
	"white":  {0xff, 0xff, 0xff},
	"gray":   {0x80, 0x80, 0x80},
	"grey":   {0x80, 0x80, 0x80},
	"red":    {0xff, 0x00, 0x00},
	"green":  {0x00, 0xff, 0x00},
	"blue":   {0x00, 0x00, 0xff},
	"yellow": {0xff, 0xff, 0x00},
	"cyan":   {0x00, 0xff, 0xff},
	"orange": {0xff, 0xa5, 0x00},
}

// ParseColor parses a colour as 3 or 6 hex digits, optionally
// prefixed with "#", or a colour name.
func ParseColor(s string) (Color, error) {
	if c, ok := colorNames[strings.ToLower(strings.ReplaceAll(s, " ", ""))]; ok {
		return c, nil
	}
	h := strings.TrimPrefix(s, "#")
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%q: bad colour spec", s)
	}
	switch len(h) {
	case 3:
		n = n>>8*0x110000 | n>>4&0xf*0x1100 | n&0xf*0x11
	case 6:
	default:
		return Color{}, fmt.Errorf("%q: bad colour spec", s)
	}
	return Color{uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
