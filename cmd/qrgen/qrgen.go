// Qrgen renders styled QR codes.
package main

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mdp/qrterminal/v3"
	"github.com/pborman/getopt/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"

	"rsc.io/qr"

	"github.com/unixdj/qrgen"
	"github.com/unixdj/qrgen/coding"
	"github.com/unixdj/qrgen/render"
)

var log = logrus.WithField("component", "qrgen")

var g = struct {
	opt     qrgen.Options // generator options
	conf    string        // options file
	fn      string        // output file
	seed    uint64        // random seed
	text    []qrgen.Text  // extra PNG text entries
	latin1  bool          // Latin-1 byte mode
	preview bool          // terminal preview
	debug   bool          // debug logging
}{
	opt: qrgen.DefaultOptions(),
}

func printUsage(w io.Writer) {
	cl := getopt.CommandLine
	fmt.Fprint(w, "Styled QR code generator\nUsage: ", cl.Program(), " ",
		cl.UsageLine(), ` [string ...]
If no string is given, data is read from standard input and the final
newline is stripped.  Options given on the command line override the
options file.

`)
	var b bytes.Buffer
	cl.PrintOptions(&b)
	w.Write(b.Bytes())
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

func usage() {
	printUsage(os.Stderr)
	os.Exit(2)
}

func help() {
	printUsage(os.Stdout)
	os.Exit(0)
}

func version() {
	fmt.Println(`qrgen version 0.1.0
Copyright (c) 2024 Vadim Vygonets`)
	os.Exit(0)
}

// colour is a getopt.Value setting a render.Color.
type colour struct{ c *render.Color }

func (c colour) String() string { return c.c.String() }

func (c colour) Set(s string, _ getopt.Option) error {
	return c.c.UnmarshalText([]byte(s))
}

// level is a getopt.Value setting a coding.Level.
type level struct{ l *coding.Level }

func (l level) String() string { return l.l.String() }

func (l level) Set(s string, _ getopt.Option) error {
	return l.l.UnmarshalText([]byte(s))
}

// textFlag is a getopt.Value adding PNG text entries.
type textFlag struct{}

func (textFlag) String() string { return "" }

func (textFlag) Set(s string, _ getopt.Option) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("%q: want key=value", s)
	}
	g.text = append(g.text, qrgen.Text{Key: k, Value: v})
	return nil
}

func parseFlags(args []string) {
	cli := g.opt // values set on the command line
	getopt.SetUsage(usage)
	getopt.Flag(opt(help), 'h', "show this help").SetFlag()
	getopt.Flag(opt(version), 'V', "print version and copyright").SetFlag()
	getopt.Flag(&g.conf, 'c', "read options from YAML file", "file")
	ver := getopt.Unsigned('v', 4, &getopt.UnsignedLimit{0, 8, 1, 40},
		"QR code version", "ver")
	getopt.FlagLong(level{&cli.Level}, "level", 'l',
		"error correction level, lowest to highest", "l|m|q|h")
	getopt.FlagLong(&cli.Encoder, "encoder", 'e',
		`symbol encoder: "forced" chooses the best data mask, `+
			`"plan" uses the one given by -k`, "forced|plan")
	getopt.Flag(&cli.Mask, 'k', "data mask for the plan encoder", "0-7")
	getopt.FlagLong(&cli.PixelSize, "pixel", 's',
		"image pixels per QR module", "pixels")
	getopt.FlagLong(&cli.Padding, "padding", 'm',
		"quiet zone width in image pixels", "pixels")
	getopt.FlagLong(&cli.ImageSize, "size", 'S',
		"width and height of the output image", "pixels")
	getopt.FlagLong(colour{&cli.Background}, "background", 'B',
		"background colour as 3 or 6 hex digits or a colour name",
		"RGB|name")
	getopt.FlagLong(colour{&cli.Quiet}, "quiet", 'Q',
		"quiet zone colour", "RGB|name")
	getopt.FlagLong(colour{&cli.Module}, "module", 'F',
		"data module colour", "RGB|name")
	getopt.FlagLong(colour{&cli.Pattern}, "pattern", 'P',
		"finder and alignment pattern colour", "RGB|name")
	getopt.FlagLong(&cli.TransformAmount, "transform", 't',
		"perspective displacement in modules; 0 disables", "amount")
	getopt.FlagLong(&cli.CodeScale, "scale", 'z',
		"code width relative to the output image", "scale")
	seed := getopt.Unsigned('r', 0, &getopt.UnsignedLimit{0, 64, 0, 0},
		"random seed for corner rounding [current time]", "seed")
	getopt.Flag(&g.latin1, '1', "convert input to Latin-1 for byte mode")
	getopt.FlagLong(textFlag{}, "text", 'T',
		"add a PNG text entry; may be repeated", "key=value")
	fno := getopt.Flag(&g.fn, 'o', `output file, or "-" for standard `+
		`output; format by suffix: .png, .bmp, .tif`, "file")
	getopt.Flag(&g.preview, 'p', "print a preview to the terminal")
	getopt.Flag(&g.debug, 'd', "debug logging")

	getopt.CommandLine.Parse(args)
	if g.debug {
		log.Logger.SetLevel(logrus.DebugLevel)
	}

	// Options file first, then flags set on the command line.
	if g.conf != "" {
		o, err := qrgen.LoadOptionsFile(g.conf)
		if err != nil {
			log.Fatal(err)
		}
		g.opt = o
		log.WithField("file", g.conf).Debug("options loaded")
	}
	cli.Version = coding.Version(*ver)
	overlay(&g.opt, &cli)

	if getopt.IsSet('r') {
		g.seed = uint64(*seed)
	} else {
		g.seed = uint64(time.Now().UnixNano())
	}
	if !fno.Seen() && isatty.IsTerminal(uintptr(syscall.Stdout)) {
		g.preview = true
		g.fn = ""
	} else if g.fn == "" {
		g.fn = "-"
	}
}

// overlay copies options set on the command line from cli to o.
func overlay(o, cli *qrgen.Options) {
	for _, f := range []struct {
		name rune
		set  func()
	}{
		{'v', func() { o.Version = cli.Version }},
		{'l', func() { o.Level = cli.Level }},
		{'e', func() { o.Encoder = cli.Encoder }},
		{'k', func() { o.Mask = cli.Mask }},
		{'s', func() { o.PixelSize = cli.PixelSize }},
		{'m', func() { o.Padding = cli.Padding }},
		{'S', func() { o.ImageSize = cli.ImageSize }},
		{'B', func() { o.Background = cli.Background }},
		{'Q', func() { o.Quiet = cli.Quiet }},
		{'F', func() { o.Module = cli.Module }},
		{'P', func() { o.Pattern = cli.Pattern }},
		{'t', func() { o.TransformAmount = cli.TransformAmount }},
		{'z', func() { o.CodeScale = cli.CodeScale }},
	} {
		if getopt.IsSet(f.name) {
			f.set()
		}
	}
}

// readInput returns the contents of r with CRLF line ends converted
// and the final newline stripped.
func readInput(r io.Reader) (string, error) {
	var b strings.Builder
	if _, err := io.Copy(&b, r); err != nil {
		return "", err
	}
	s, _ := strings.CutSuffix(
		strings.ReplaceAll(b.String(), "\r\n", "\n"), "\n")
	return s, nil
}

// previewWriter returns where the terminal preview goes: standard
// error if the image is written to standard output.
func previewWriter() io.Writer {
	if g.fn == "-" {
		return os.Stderr
	}
	return os.Stdout
}

// preview prints s to w as a half block QR code at the configured
// error correction level.
func preview(w io.Writer, s string) {
	qrterminal.GenerateWithConfig(s, qrterminal.Config{
		Level:          qr.Level(g.opt.Level),
		Writer:         w,
		QuietZone:      2,
		HalfBlocks:     true,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	logrus.SetOutput(os.Stderr)
	parseFlags(os.Args)

	var s string
	if args := getopt.Args(); len(args) != 0 {
		s = strings.Join(args, " ")
	} else {
		var err error
		if s, err = readInput(os.Stdin); err != nil {
			log.Fatal(err)
		}
	}
	if g.latin1 {
		var err error
		if s, err = charmap.ISO8859_1.NewEncoder().String(s); err != nil {
			log.Fatalf("%q: not representable in Latin-1", s)
		}
	}

	gen, err := qrgen.New(s, g.opt)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(logrus.Fields{
		"version": g.opt.Version,
		"level":   g.opt.Level,
		"encoder": g.opt.Encoder,
		"seed":    g.seed,
	}).Debug("generating")

	img, err := gen.Generate(qrgen.NewRand(g.seed))
	if err != nil {
		log.Fatal(err)
	}
	if g.preview {
		preview(previewWriter(), s)
	}
	if g.fn != "" {
		write(gen, img)
	}
}

func write(gen *qrgen.Generator, img image.Image) {
	text := append(gen.Metadata(), g.text...)
	var err error
	if g.fn == "-" {
		err = qrgen.EncodePNG(os.Stdout, img, text...)
	} else {
		err = qrgen.SaveImage(g.fn, img, text...)
	}
	if err != nil {
		log.Fatal(err)
	}
	log.WithField("file", g.fn).Debug("written")
}
