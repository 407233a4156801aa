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

// Package scanner implements the three resumable, format-specific
// tokenizer state machines that package splitstream drives over
// successive input chunks: XML, JSON, and UBJSON.
//
// Each function in this package satisfies splitstream.ScanFunc and may
// be passed directly to (*splitstream.State).Next.
package scanner

import (
	"fmt"

	"github.com/rlyrenius/splitstream-go/splitstream"
)

// ByName looks up one of the built-in scanners by its spec.md §6
// format name ("xml", "json", or "ubjson").
func ByName(format string) (splitstream.ScanFunc, error) {
	switch format {
	case "xml":
		return XML, nil
	case "json":
		return JSON, nil
	case "ubjson":
		return UBJSON, nil
	default:
		return nil, fmt.Errorf("%w: %q", splitstream.ErrUnknownFormat, format)
	}
}
