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

// Command splitfile is a CLI front end for package splitstream: it
// reads a file or stdin containing back-to-back XML, JSON, or UBJSON
// documents and writes each one out as it is recognized.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/rlyrenius/splitstream-go/scanner"
	"github.com/rlyrenius/splitstream-go/splitstream"
)

type options struct {
	format      string
	startDepth  int
	bufferSize  int
	maxDocument int
	dedupWindow int
	compression string
	outputDir   string

	configPath string
	source     string
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("splitfile: ")

	var o options
	flag.StringVar(&o.format, "format", "", "document format: xml, json, or ubjson (required unless set in -config)")
	flag.IntVar(&o.startDepth, "start-depth", 0, "nesting depth at which documents are delimited")
	flag.IntVar(&o.bufferSize, "bufsize", 0, fmt.Sprintf("read chunk size in bytes (default %d)", splitstream.DefaultBufferSize))
	flag.IntVar(&o.maxDocument, "max", 0, fmt.Sprintf("max document size in bytes (default %d)", splitstream.DefaultMaxDocumentSize))
	flag.IntVar(&o.dedupWindow, "dedup", 0, "drop documents byte-identical to one of the last N emitted (0 disables)")
	flag.StringVar(&o.compression, "compression", "", "input compression: none or zstd (default: auto-detect)")
	flag.StringVar(&o.outputDir, "out", "", "directory to write one file per document (default: only log the count to stderr)")
	flag.StringVar(&o.configPath, "config", "", "optional YAML file providing defaults for any flag above")
	flag.Parse()

	if o.configPath != "" {
		cfg, err := loadConfig(o.configPath)
		if err != nil {
			log.Fatal(err)
		}
		o.applyConfig(cfg)
	}

	if o.format == "" {
		log.Fatal("missing -format (xml, json, or ubjson)")
	}
	scan, err := scanner.ByName(o.format)
	if err != nil {
		log.Fatal(err)
	}

	args := flag.Args()
	if len(args) > 1 {
		log.Fatal("at most one input file may be given; omit it to read stdin")
	}
	var src io.Reader = os.Stdin
	if len(args) == 1 {
		o.source = args[0]
		f, err := os.Open(o.source)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		src = f
	} else {
		o.source = "<stdin>"
	}

	src, err = decompress(src, o.compression)
	if err != nil {
		log.Fatal(err)
	}

	runID := uuid.New()

	st := splitstream.NewState(o.startDepth)
	defer st.Close()
	st.EnableDedup(o.dedupWindow)

	drv, err := splitstream.NewDriver(st, scan, src, o.bufferSize, o.maxDocument)
	if err != nil {
		log.Fatal(err)
	}

	if o.outputDir != "" {
		if err := os.MkdirAll(o.outputDir, 0755); err != nil {
			log.Fatal(err)
		}
	}

	count := 0
	for {
		doc, err := drv.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("%s: %v", o.source, err)
		}
		if o.outputDir != "" {
			name := filepath.Join(o.outputDir, fmt.Sprintf("%s-%06d%s", runID, count, extFor(o.format)))
			if err := os.WriteFile(name, doc.Bytes(), 0644); err != nil {
				doc.Release(st)
				log.Fatal(err)
			}
		}
		doc.Release(st)
		count++
	}
	log.Printf("%s: split %d document(s) [run %s]", o.source, count, runID)
}

// decompress wraps src in a zstd decompressor when requested or, if
// mode is empty, when the stream's leading four bytes are the zstd
// frame magic number. A stream that starts with a skippable frame is
// not detected.
func decompress(src io.Reader, mode string) (io.Reader, error) {
	if mode == "none" {
		return src, nil
	}
	br := bufio.NewReader(src)
	if mode == "zstd" || (mode == "" && looksLikeZstd(br)) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening zstd stream: %w", err)
		}
		return zr.IOReadCloser(), nil
	}
	return br, nil
}

var zstdMagic = [4]byte{0x28, 0xb5, 0x2f, 0xfd}

func looksLikeZstd(br *bufio.Reader) bool {
	peek, err := br.Peek(4)
	if err != nil {
		return false
	}
	return [4]byte{peek[0], peek[1], peek[2], peek[3]} == zstdMagic
}

func extFor(format string) string {
	switch format {
	case "xml":
		return ".xml"
	case "json":
		return ".json"
	case "ubjson":
		return ".ubj"
	default:
		return ""
	}
}
