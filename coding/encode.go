// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package coding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
	rsc "rsc.io/qr/coding"

	"github.com/unixdj/qrgen/grid"
)

// An Encoder encodes text as a QR symbol of the given version and
// error correction level.  The returned Grid has v.Size() modules on
// a side and no quiet zone.
type Encoder interface {
	Encode(text string, v Version, l Level) (*grid.Grid, error)
}

// ErrMask is returned for data mask numbers outside 0 to 7.
var ErrMask = errors.New("qr: invalid mask")

// Forced encodes symbols at a forced version, choosing the data mask
// with the lowest penalty score.
type Forced struct{}

var forcedLevel = [...]qrcode.RecoveryLevel{
	L: qrcode.Low,
	M: qrcode.Medium,
	Q: qrcode.High,
	H: qrcode.Highest,
}

// Encode implements Encoder.
func (Forced) Encode(text string, v Version, l Level) (*grid.Grid, error) {
	if err := check(v, l); err != nil {
		return nil, err
	}
	q, err := qrcode.NewWithForcedVersion(text, int(v), forcedLevel[l])
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	g, err := grid.FromBools(q.Bitmap())
	if err != nil {
		return nil, err
	}
	return sized(g, v)
}

// Plan encodes symbols with a fixed data mask.  The whole text is
// encoded in a single segment: numeric if it is all digits,
// alphanumeric if it only uses the alphanumeric set, byte otherwise.
type Plan struct {
	Mask int // data mask, 0 to 7
}

// Encode implements Encoder.
func (p Plan) Encode(text string, v Version, l Level) (*grid.Grid, error) {
	if err := check(v, l); err != nil {
		return nil, err
	}
	if p.Mask < 0 || 7 < p.Mask {
		return nil, ErrMask
	}
	plan, err := rsc.NewPlan(rsc.Version(v), rsc.Level(l), rsc.Mask(p.Mask))
	if err != nil {
		return nil, err
	}
	c, err := plan.Encode(segment(text))
	if err != nil {
		return nil, err
	}
	g, err := grid.FromBitmap(c.Bitmap, c.Size, c.Stride)
	if err != nil {
		return nil, err
	}
	return sized(g, v)
}

// alphanumeric mode character set
const alphaSet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

func segment(text string) rsc.Encoding {
	num, alpha := text != "", text != ""
	for i := 0; i < len(text) && alpha; i++ {
		c := text[i]
		num = num && '0' <= c && c <= '9'
		alpha = strings.IndexByte(alphaSet, c) >= 0
	}
	switch {
	case num:
		return rsc.Num(text)
	case alpha:
		return rsc.Alpha(text)
	}
	return rsc.String(text)
}

// Lookup returns the Encoder called name: "forced" (or "") or "plan".
func Lookup(name string, mask int) (Encoder, error) {
	switch name {
	case "", "forced":
		return Forced{}, nil
	case "plan":
		if mask < 0 || 7 < mask {
			return nil, ErrMask
		}
		return Plan{mask}, nil
	}
	return nil, fmt.Errorf("qr: unknown encoder %q", name)
}

func check(v Version, l Level) error {
	if !v.Valid() {
		return ErrVersion
	}
	if !l.Valid() {
		return ErrLevel
	}
	return nil
}

func sized(g *grid.Grid, v Version) (*grid.Grid, error) {
	if g.Size() != v.Size() {
		return nil, SizeError{v, g.Size()}
	}
	return g, nil
}
