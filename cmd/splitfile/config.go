// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// fileConfig is the shape of the optional -config YAML document. It
// only fills in options whose flag value is still zero; a flag given
// explicitly with its zero value (for example -start-depth 0) is not
// told apart from an unset one and is overridden by the file.
type fileConfig struct {
	Format       string `json:"format"`
	StartDepth   int    `json:"startDepth"`
	BufferSize   int    `json:"bufferSize"`
	MaxDocument  int    `json:"maxDocument"`
	DedupWindow  int    `json:"dedupWindow"`
	Compression  string `json:"compression"`
	OutputDir    string `json:"outputDir"`
}

func loadConfig(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading -config %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing -config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyConfig fills in zero-valued fields of the flag-parsed options
// from cfg. Non-zero flag values are kept; zero values are replaced
// whether or not the flag was given on the command line.
func (o *options) applyConfig(cfg *fileConfig) {
	if o.format == "" {
		o.format = cfg.Format
	}
	if o.startDepth == 0 {
		o.startDepth = cfg.StartDepth
	}
	if o.bufferSize == 0 {
		o.bufferSize = cfg.BufferSize
	}
	if o.maxDocument == 0 {
		o.maxDocument = cfg.MaxDocument
	}
	if o.dedupWindow == 0 {
		o.dedupWindow = cfg.DedupWindow
	}
	if o.compression == "" {
		o.compression = cfg.Compression
	}
	if o.outputDir == "" {
		o.outputDir = cfg.OutputDir
	}
}
