// Copyright 2011 The Go Authors.  All rights reserved.
// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrgen

/*
PNG Text

Images are encoded losslessly by image/png.  Text entries are added as
ancillary chunks after IHDR, before the image data: "tEXt" when the
value is representable in Latin-1, "iTXt" with UTF-8 otherwise.
*/

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrFormat = errors.New("qr: unsupported image format")
	ErrPNG    = errors.New("qr: invalid PNG stream")
	ErrText   = errors.New("qr: invalid text keyword")
)

// A Text is a PNG text entry.
type Text struct {
	Key   string // 1-79 Latin-1 characters
	Value string
}

var software = Text{"Software", "qrgen https://github.com/unixdj/qrgen"}

const pngHeader = "\x89PNG\r\n\x1a\n"

// A chunkWriter writes PNG chunks to a buffer.
type chunkWriter struct {
	buf bytes.Buffer
	tmp [4]byte
}

func (w *chunkWriter) writeChunk(name string, data ...[]byte) {
	n := 0
	for _, d := range data {
		n += len(d)
	}
	binary.BigEndian.PutUint32(w.tmp[:], uint32(n))
	w.buf.Write(w.tmp[:])
	crc := crc32.NewIEEE()
	io.WriteString(crc, name)
	w.buf.WriteString(name)
	for _, d := range data {
		crc.Write(d)
		w.buf.Write(d)
	}
	binary.BigEndian.PutUint32(w.tmp[:], crc.Sum32())
	w.buf.Write(w.tmp[:])
}

var latin1 = charmap.ISO8859_1

func validKey(k string) bool {
	if k == "" || len(k) > 79 || k[0] == ' ' || k[len(k)-1] == ' ' ||
		strings.Contains(k, "  ") {
		return false
	}
	for i := 0; i < len(k); i++ {
		if c := k[i]; c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

func (w *chunkWriter) writeText(t Text) error {
	if !validKey(t.Key) {
		return ErrText
	}
	t.Value = strings.ToValidUTF8(t.Value, "\uFFFD")
	if v, err := latin1.NewEncoder().String(t.Value); err == nil {
		w.writeChunk("tEXt", []byte(t.Key), []byte{0}, []byte(v))
	} else {
		// keyword, NUL, uncompressed, method, no language tag and
		// translated keyword
		w.writeChunk("iTXt", []byte(t.Key), []byte{0, 0, 0, 0, 0},
			[]byte(t.Value))
	}
	return nil
}

// EncodePNG writes img to w as PNG with the given text entries and a
// Software entry.
func EncodePNG(w io.Writer, img image.Image, text ...Text) error {
	var src bytes.Buffer
	err := imaging.Encode(&src, img, imaging.PNG,
		imaging.PNGCompressionLevel(png.BestCompression))
	if err != nil {
		return err
	}
	b := src.Bytes()
	// Signature and IHDR: 8 + 4+4+13+4 bytes.
	const ihdrEnd = len(pngHeader) + 25
	if len(b) < ihdrEnd || string(b[12:16]) != "IHDR" {
		return ErrPNG
	}
	var cw chunkWriter
	cw.buf.Grow(len(b) + 256)
	cw.buf.Write(b[:ihdrEnd])
	for _, t := range append([]Text{software}, text...) {
		if err := cw.writeText(t); err != nil {
			return err
		}
	}
	cw.buf.Write(b[ihdrEnd:])
	_, err = cw.buf.WriteTo(w)
	return err
}

// ReadText returns the text entries of a PNG stream, in order.
// Compressed entries are skipped.
func ReadText(r io.Reader) ([]Text, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(b, []byte(pngHeader)) {
		return nil, ErrPNG
	}
	b = b[len(pngHeader):]
	var text []Text
	for len(b) >= 12 {
		n := binary.BigEndian.Uint32(b)
		if uint64(n) > uint64(len(b)-12) {
			return nil, ErrPNG
		}
		name, data := string(b[4:8]), b[8:8+n]
		if crc32.ChecksumIEEE(b[4:8+n]) != binary.BigEndian.Uint32(b[8+n:]) {
			return nil, ErrPNG
		}
		b = b[12+n:]
		switch name {
		case "tEXt":
			k, v, ok := bytes.Cut(data, []byte{0})
			if !ok {
				return nil, ErrPNG
			}
			s, err := latin1.NewDecoder().Bytes(v)
			if err != nil {
				return nil, err
			}
			text = append(text, Text{string(k), string(s)})
		case "iTXt":
			k, rest, ok := bytes.Cut(data, []byte{0})
			if !ok || len(rest) < 2 {
				return nil, ErrPNG
			}
			if rest[0] != 0 {
				continue
			}
			// skip language tag and translated keyword
			_, rest, ok = bytes.Cut(rest[2:], []byte{0})
			if ok {
				_, rest, ok = bytes.Cut(rest, []byte{0})
			}
			if !ok {
				return nil, ErrPNG
			}
			text = append(text, Text{string(k), string(rest)})
		case "IEND":
			return text, nil
		}
	}
	return nil, ErrPNG
}

// Base64PNG returns img encoded as PNG in standard base64, for
// embedding in JSON requests.
func Base64PNG(img image.Image, text ...Text) (string, error) {
	var b bytes.Buffer
	if err := EncodePNG(&b, img, text...); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b.Bytes()), nil
}

// SaveImage writes img to filename in a lossless format chosen by the
// extension: PNG with text entries, BMP or TIFF.  Other extensions
// fail with ErrFormat.
func SaveImage(filename string, img image.Image, text ...Text) error {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
	case ".bmp", ".tif", ".tiff":
		return imaging.Save(img, filename)
	default:
		return ErrFormat
	}
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
		0666)
	if err != nil {
		return err
	}
	err = EncodePNG(f, img, text...)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
