// Copyright 2024 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package qrgen

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadOptions reads YAML options from r over DefaultOptions.  Keys
// follow the field tags of Options and render.Params; unknown keys are
// an error.  An empty document leaves the defaults.
func LoadOptions(r io.Reader) (Options, error) {
	opt := DefaultOptions()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&opt); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("qr: options: %w", err)
	}
	return opt, nil
}

// LoadOptionsFile reads YAML options from the named file.
func LoadOptionsFile(name string) (Options, error) {
	f, err := os.Open(name)
	if err != nil {
		return Options{}, err
	}
	defer f.Close()
	opt, err := LoadOptions(f)
	if err != nil {
		return Options{}, fmt.Errorf("%s: %w", name, err)
	}
	return opt, nil
}

// String returns o as a YAML document.
func (o Options) String() string {
	b, err := yaml.Marshal(o)
	if err != nil {
		return err.Error()
	}
	return strings.TrimSuffix(string(b), "\n")
}
