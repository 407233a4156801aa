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
	ubjsonInit = iota
	ubjsonDocument
	ubjsonString // really: skip N opaque payload bytes
	ubjsonLengthType
	ubjsonLength
)

// UBJSON splits a stream of back-to-back Universal Binary JSON values.
// Containers ('[', '{' / ']', '}') are tracked exactly like the JSON
// scanner; everything else is advanced over by counting the fixed or
// length-prefixed payload width implied by its type marker, without
// ever interpreting the payload bytes themselves. 64-bit length
// prefixes are not supported and fall back to plain Document scanning
// (see spec.md §4.3.3).
func UBJSON(st *splitstream.State, buf []byte) (end int, start int, startSet bool) {
	state := st.Sub
	remaining := st.Counter[0]
	value := st.Counter[1]
	pos := 0
	set := false

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		wasInit := state == ubjsonInit
		switch state {
		case ubjsonInit, ubjsonDocument:
			switch c {
			case '[', '{':
				if wasInit || (st.Depth == st.StartDepth && st.StartDepth > 0) {
					pos, set = i, true
				}
				st.Depth++
				state = ubjsonDocument
			case ']', '}':
				st.Depth--
				if st.Depth == st.StartDepth && !wasInit {
					st.Last = c
					st.Sub = state
					st.Counter[0], st.Counter[1] = 0, 0
					if set {
						return i + 1, pos, true
					}
					return i + 1, 0, false
				}
			case 'S', 'H':
				state = ubjsonLengthType
			case 'C', 'i', 'U':
				remaining = 1
				state = ubjsonString
			case 'I':
				remaining = 2
				state = ubjsonString
			case 'l', 'd':
				remaining = 4
				state = ubjsonString
			case 'L', 'D':
				remaining = 8
				state = ubjsonString
			}

		case ubjsonString:
			remaining--
			if remaining <= 0 {
				remaining = 0
				state = ubjsonDocument
			}

		case ubjsonLengthType:
			switch c {
			case 'i', 'U':
				remaining, value = 1, 0
				state = ubjsonLength
			case 'I':
				remaining, value = 2, 0
				state = ubjsonLength
			case 'l':
				remaining, value = 4, 0
				state = ubjsonLength
			default:
				// 64-bit lengths ('L') are not supported; fall back
				// to plain Document scanning rather than reject.
				remaining = 0
				state = ubjsonDocument
			}

		case ubjsonLength:
			value = (value << 8) | int(c)
			remaining--
			if remaining <= 0 {
				remaining, value = value, 0
				state = ubjsonString
				if remaining == 0 {
					// zero-length payload: nothing to skip
					state = ubjsonDocument
				}
			}
		}
		st.Last = c
	}

	st.Sub = state
	st.Counter[0] = remaining
	st.Counter[1] = value
	if set {
		return 0, pos, true
	}
	return 0, 0, false
}
