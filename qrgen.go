// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package qrgen renders styled QR codes for image generation pipelines.

A QR code is encoded at a fixed version and error correction level,
drawn with randomly rounded module corners, the finder and alignment
patterns in their own colour, scaled onto a background canvas and
warped in perspective.  The result stays machine-readable.

Rounding is random.  Callers pass a *rand.Rand to Generate: a fixed
seed reproduces the image exactly, different seeds only change which
corners are rounded.
*/
package qrgen // import "github.com/unixdj/qrgen"

import (
	"image"
	"math/rand/v2"
	"time"

	"github.com/unixdj/qrgen/coding"
	"github.com/unixdj/qrgen/render"
)

// Options configures a Generator.
type Options struct {
	Version coding.Version `yaml:"version"`
	Level   coding.Level   `yaml:"level"`
	Encoder string         `yaml:"encoder"` // "forced" or "plan"
	Mask    int            `yaml:"mask"`    // data mask for "plan"

	render.Params `yaml:",inline"`
}

// DefaultOptions returns options for a version 4 code at level H,
// 512 pixels square.
func DefaultOptions() Options {
	return Options{
		Version: 4,
		Level:   coding.H,
		Encoder: "forced",
		Params:  render.DefaultParams(),
	}
}

// A Generator renders a text as a styled QR code.
type Generator struct {
	text string
	opt  Options
	enc  coding.Encoder
}

// New returns a Generator for text.  It fails with coding.ErrVersion,
// coding.ErrLevel or render.ErrGeometry if the options are invalid.
func New(text string, opt Options) (*Generator, error) {
	if !opt.Version.Valid() {
		return nil, coding.ErrVersion
	}
	if !opt.Level.Valid() {
		return nil, coding.ErrLevel
	}
	if err := opt.Params.Validate(); err != nil {
		return nil, err
	}
	enc, err := coding.Lookup(opt.Encoder, opt.Mask)
	if err != nil {
		return nil, err
	}
	return &Generator{text, opt, enc}, nil
}

// Text returns the encoded text.
func (g *Generator) Text() string { return g.text }

// Options returns the options g was created with.
func (g *Generator) Options() Options { return g.opt }

// NewRand returns a random number generator seeded with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate renders the QR code, drawing corner rounding coins from r.
// If r is nil, a generator seeded with the current time is used.
// Errors from the encoder, such as text too long for the version, are
// returned unchanged before anything is drawn.
func (g *Generator) Generate(r *rand.Rand) (*image.NRGBA, error) {
	if r == nil {
		r = NewRand(uint64(time.Now().UnixNano()))
	}
	sym, err := g.enc.Encode(g.text, g.opt.Version, g.opt.Level)
	if err != nil {
		return nil, err
	}
	mask, err := coding.PatternMask(g.opt.Version)
	if err != nil {
		return nil, err
	}
	p := &g.opt.Params
	img, err := render.Modules(sym, mask, p, r)
	if err != nil {
		return nil, err
	}
	c, err := render.Composite(img, p)
	if err != nil {
		return nil, err
	}
	return render.Warp(c, p)
}

// Save renders the QR code and writes it to filename as PNG (or BMP
// or TIFF, by extension).  The PNG records the text and options.
func (g *Generator) Save(filename string, r *rand.Rand) error {
	img, err := g.Generate(r)
	if err != nil {
		return err
	}
	return SaveImage(filename, img, g.Metadata()...)
}

// Metadata returns PNG text entries describing the code: the encoded
// text and the parameters.
func (g *Generator) Metadata() []Text {
	return []Text{
		{"Title", g.text},
		{"parameters", g.opt.String()},
	}
}
