// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coding implements QR symbol details needed for rendering:
// versions, error correction levels, structural pattern masks and
// adapters for symbol encoders.
package coding // import "github.com/unixdj/qrgen/coding"

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrLevel   = errors.New("qr: invalid level")
	ErrVersion = errors.New("qr: invalid version")
)

// A Version represents a QR version.
// The version specifies the size of the QR code:
// a QR code with version v has 4v+17 pixels on a side.
// Versions run from 1 to 40:
// the larger the version, the more information the code can store.
type Version int

const (
	MinVersion Version = 1  // Minimum QR version
	MaxVersion Version = 40 // Maximum QR version
)

// Valid reports whether v is a QR version.
func (v Version) Valid() bool {
	return MinVersion <= v && v <= MaxVersion
}

// Size returns the number of modules on a side of a QR code of
// version v.
func (v Version) Size() int {
	return 4*int(v) + 17
}

func (v Version) String() string {
	return strconv.Itoa(int(v))
}

// A Level represents a QR error correction level.
// From least to most tolerant of errors, they are L, M, Q, H.
type Level int

const (
	L Level = iota // 20% redundant
	M              // 38% redundant
	Q              // 55% redundant
	H              // 65% redundant
)

const levels = "LMQH"

// ParseLevel parses a level name, case insensitive.
func ParseLevel(s string) (Level, error) {
	if len(s) == 1 {
		if i := strings.IndexByte(levels, s[0]&^0x20); i >= 0 {
			return Level(i), nil
		}
	}
	return 0, ErrLevel
}

// Valid reports whether l is one of L, M, Q and H.
func (l Level) Valid() bool {
	return L <= l && l <= H
}

func (l Level) String() string {
	if !l.Valid() {
		return "Level(" + strconv.Itoa(int(l)) + ")"
	}
	return levels[l : l+1]
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, ErrLevel
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// SizeError is returned when an encoder produces a symbol whose size
// does not match the requested version.
type SizeError struct {
	Version Version
	Size    int
}

func (e SizeError) Error() string {
	return "qr: symbol size " + strconv.Itoa(e.Size) +
		" does not match version " + e.Version.String() +
		" (want " + strconv.Itoa(e.Version.Size()) + ")"
}
