// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrgen_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/unixdj/qrgen"
	"github.com/unixdj/qrgen/coding"
	"github.com/unixdj/qrgen/render"
)

func generate(t *testing.T, text string, opt qrgen.Options, seed uint64) *image.NRGBA {
	t.Helper()
	g, err := qrgen.New(text, opt)
	if err != nil {
		t.Fatal(err)
	}
	img, err := g.Generate(qrgen.NewRand(seed))
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	res, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", err
	}
	return res.GetText(), nil
}

func TestGenerateDecodes(t *testing.T) {
	const text = "interstruct.com"
	img := generate(t, text, qrgen.DefaultOptions(), 1)
	if b := img.Bounds(); b != image.Rect(0, 0, 512, 512) {
		t.Fatalf("bounds %v, want 512×512", b)
	}
	got, err := decode(img)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got != text {
		t.Errorf("decoded %q, want %q", got, text)
	}
}

func TestGeneratePlanDecodes(t *testing.T) {
	const text = "HTTPS://INTERSTRUCT.COM/"
	opt := qrgen.DefaultOptions()
	opt.Encoder, opt.Mask, opt.Version = "plan", 2, 3
	opt.TransformAmount = 1
	got, err := decode(generate(t, text, opt, 9))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got != text {
		t.Errorf("decoded %q, want %q", got, text)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	opt := qrgen.DefaultOptions()
	a := generate(t, "interstruct.com", opt, 42)
	b := generate(t, "interstruct.com", opt, 42)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("same seed, different images")
	}
	c := generate(t, "interstruct.com", opt, 43)
	if bytes.Equal(a.Pix, c.Pix) {
		t.Error("different seeds, identical images")
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		f    func(*qrgen.Options)
		want error
	}{
		{func(o *qrgen.Options) { o.Version = 0 }, coding.ErrVersion},
		{func(o *qrgen.Options) { o.Version = -3 }, coding.ErrVersion},
		{func(o *qrgen.Options) { o.Version = 41 }, coding.ErrVersion},
		{func(o *qrgen.Options) { o.Level = 9 }, coding.ErrLevel},
		{func(o *qrgen.Options) { o.PixelSize = 0 }, render.ErrGeometry},
		{func(o *qrgen.Options) { o.Padding = -1 }, render.ErrGeometry},
		{func(o *qrgen.Options) { o.ImageSize = -512 }, render.ErrGeometry},
		{func(o *qrgen.Options) { o.Encoder, o.Mask = "plan", 8 }, coding.ErrMask},
	}
	for i, tt := range tests {
		opt := qrgen.DefaultOptions()
		tt.f(&opt)
		if _, err := qrgen.New("x", opt); !errors.Is(err, tt.want) {
			t.Errorf("case %d: err = %v, want %v", i, err, tt.want)
		}
	}
}

// Text that does not fit the version fails before rendering.
func TestGenerateTooLong(t *testing.T) {
	opt := qrgen.DefaultOptions()
	opt.Version = 1
	g, err := qrgen.New(strings.Repeat("interstruct.com ", 4), opt)
	if err != nil {
		t.Fatal(err)
	}
	img, err := g.Generate(qrgen.NewRand(1))
	if err == nil || img != nil {
		t.Errorf("Generate = %v, %v; want error", img != nil, err)
	}
}

func TestGenerateNilRand(t *testing.T) {
	g, err := qrgen.New("interstruct.com", qrgen.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(nil); err != nil {
		t.Error(err)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	g, err := qrgen.New("interstruct.com", qrgen.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	fn := filepath.Join(dir, "code.png")
	if err := g.Save(fn, qrgen.NewRand(3)); err != nil {
		t.Fatal(err)
	}
	want, _ := g.Generate(qrgen.NewRand(3))

	f, err := os.Open(fn)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b != want.Bounds() {
		t.Fatalf("bounds %v, want %v", b, want.Bounds())
	}
	for y := 0; y < 512; y++ {
		for x := 0; x < 512; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			c := want.NRGBAAt(x, y)
			if uint8(r>>8) != c.R || uint8(g>>8) != c.G || uint8(b>>8) != c.B {
				t.Fatalf("(%d,%d) = %v, want %v", x, y, img.At(x, y), c)
			}
		}
	}

	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	text, err := qrgen.ReadText(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(text) != 3 || text[1] != (qrgen.Text{Key: "Title", Value: "interstruct.com"}) ||
		text[2].Key != "parameters" ||
		!strings.Contains(text[2].Value, "version: 4") {
		t.Errorf("text entries %q", text)
	}

	if err := g.Save(filepath.Join(dir, "code.jpg"), nil); err != qrgen.ErrFormat {
		t.Errorf("saving JPEG: err = %v, want %v", err, qrgen.ErrFormat)
	}
	if err := g.Save(filepath.Join(dir, "code.bmp"), nil); err != nil {
		t.Errorf("saving BMP: %v", err)
	}
}

func TestPNGText(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	in := []qrgen.Text{
		{Key: "parameters", Value: "Steps: 10, Sampler: Euler a"},
		{Key: "Comment", Value: "café"},
		{Key: "Description", Value: "二维码"},
	}
	var b bytes.Buffer
	if err := qrgen.EncodePNG(&b, img, in...); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(b.Bytes())); err != nil {
		t.Fatalf("image/png: %v", err)
	}
	out, err := qrgen.ReadText(&b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out[1:]); diff != "" {
		t.Errorf("text entries (-want +got):\n%s", diff)
	}
	if out[0].Key != "Software" {
		t.Errorf("first entry %q, want Software", out[0].Key)
	}

	for _, k := range []string{"", " lead", "trail ", "two  spaces", "tab\t",
		strings.Repeat("k", 80)} {
		err := qrgen.EncodePNG(&b, img, qrgen.Text{Key: k, Value: "v"})
		if err != qrgen.ErrText {
			t.Errorf("key %q: err = %v, want %v", k, err, qrgen.ErrText)
		}
	}
}

// Values that are not valid UTF-8 are written with replacement
// characters.
func TestPNGTextInvalidUTF8(t *testing.T) {
	var b bytes.Buffer
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	if err := qrgen.EncodePNG(&b, img, qrgen.Text{Key: "Title", Value: "caf\xe9"}); err != nil {
		t.Fatal(err)
	}
	out, err := qrgen.ReadText(&b)
	if err != nil {
		t.Fatal(err)
	}
	want := qrgen.Text{Key: "Title", Value: "caf\uFFFD"}
	if len(out) != 2 || out[1] != want {
		t.Errorf("text entries %q, want %q", out, want)
	}
}

func TestReadTextCorrupt(t *testing.T) {
	var b bytes.Buffer
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	if err := qrgen.EncodePNG(&b, img); err != nil {
		t.Fatal(err)
	}
	p := b.Bytes()
	for _, bad := range [][]byte{
		p[:len(p)-12], // no IEND
		p[1:],         // no signature
		p[:40],        // truncated chunk
	} {
		if _, err := qrgen.ReadText(bytes.NewReader(bad)); err != qrgen.ErrPNG {
			t.Errorf("err = %v, want %v", err, qrgen.ErrPNG)
		}
	}
	p[40] ^= 0xff // corrupt the Software entry
	if _, err := qrgen.ReadText(bytes.NewReader(p)); err != qrgen.ErrPNG {
		t.Errorf("bad CRC: err = %v, want %v", err, qrgen.ErrPNG)
	}
}

func TestBase64PNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	s, err := qrgen.Base64PNG(img)
	if err != nil {
		t.Fatal(err)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatal(err)
	}
	c, err := png.DecodeConfig(bytes.NewReader(b))
	if err != nil || c.Width != 3 || c.Height != 2 {
		t.Errorf("DecodeConfig = %+v, %v", c, err)
	}
}

func TestLoadOptions(t *testing.T) {
	opt, err := qrgen.LoadOptions(strings.NewReader(`
version: 6
level: q
pixel_size: 12
bg_color: "#102030"
pattern_color: red
code_scale: 0.9
`))
	if err != nil {
		t.Fatal(err)
	}
	want := qrgen.DefaultOptions()
	want.Version = 6
	want.Level = coding.Q
	want.PixelSize = 12
	want.Background = render.Color{0x10, 0x20, 0x30}
	want.Pattern = render.Color{0xff, 0, 0}
	want.CodeScale = 0.9
	if diff := cmp.Diff(want, opt); diff != "" {
		t.Errorf("options (-want +got):\n%s", diff)
	}

	opt, err = qrgen.LoadOptions(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(qrgen.DefaultOptions(), opt); diff != "" {
		t.Errorf("empty document (-want +got):\n%s", diff)
	}

	for _, doc := range []string{
		"colour: red\n",
		"level: x\n",
		"bg_color: '#12'\n",
		"version: [4]\n",
	} {
		if _, err := qrgen.LoadOptions(strings.NewReader(doc)); err == nil {
			t.Errorf("%q: no error", doc)
		}
	}
}

func TestOptionsRoundTrip(t *testing.T) {
	opt := qrgen.DefaultOptions()
	opt.Quiet = render.Color{1, 2, 3}
	got, err := qrgen.LoadOptions(strings.NewReader(opt.String()))
	if err != nil {
		t.Fatalf("%v\n%s", err, opt)
	}
	if diff := cmp.Diff(opt, got); diff != "" {
		t.Errorf("options (-want +got):\n%s", diff)
	}
}

func ExampleGenerator_Generate() {
	g, err := qrgen.New("interstruct.com", qrgen.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	img, err := g.Generate(qrgen.NewRand(1))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(img.Bounds())
	// Output: (0,0)-(512,512)
}
