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

package scanner

import "github.com/rlyrenius/splitstream-go/splitstream"

const (
	jsonInit = iota
	jsonDocument
	jsonString
)

// JSON splits a stream of back-to-back JSON values. It is
// deliberately lenient: it tracks matched brackets and string quoting
// only, and never validates numbers, literals, commas, or colons. See
// spec.md §4.3.2.
//
// start_out is assigned on every container open seen at the start
// depth (not only the outermost Init→Document transition); spec.md's
// Open Questions section resolves the ambiguity this way so that
// start_depth > 0 emits one document per sibling, matching the XML
// scanner's convention.
func JSON(st *splitstream.State, buf []byte) (end int, start int, startSet bool) {
	state := st.Sub
	backslash := st.Counter[0]
	pos := 0
	set := false

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		switch state {
		case jsonInit:
			switch c {
			case '[', '{':
				pos, set = i, true
				st.Depth++
				state = jsonDocument
			case '"':
				state = jsonString
			}

		case jsonDocument:
			switch c {
			case '[', '{':
				if st.Depth == st.StartDepth && st.StartDepth > 0 {
					pos, set = i, true
				}
				st.Depth++
			case ']', '}':
				st.Depth--
				if st.Depth == st.StartDepth {
					st.Last = c
					st.Sub = jsonDocument
					st.Counter[0] = 0
					if set {
						return i + 1, pos, true
					}
					return i + 1, 0, false
				}
			case '"':
				state = jsonString
			}

		case jsonString:
			switch c {
			case '"':
				if backslash&1 == 0 {
					state = jsonDocument
				}
				backslash = 0
			case '\\':
				backslash++
			default:
				backslash = 0
			}
		}
		st.Last = c
	}

	st.Sub = state
	st.Counter[0] = backslash
	if set {
		return 0, pos, true
	}
	return 0, 0, false
}
