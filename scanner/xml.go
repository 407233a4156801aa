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

// XML tokenizer sub-states. xmlInit is 0 so it doubles as every
// scanner's shared "Init" value (see splitstream.State.Sub).
const (
	xmlInit = iota
	xmlDocument
	xmlElementOrComment
	xmlCommentOrInstruction
	xmlBeginElement
	xmlEndElement
	xmlInstruction
	xmlComment
	xmlCdata
)

// XML splits a stream of back-to-back XML elements. It is lenient: it
// does not validate well-formedness, accepts "-->" after any run of
// two or more dashes (not exactly three, which strict XML requires),
// and does not understand entities, namespaces, or DOCTYPEs beyond
// what is needed to track nesting depth. Comments, processing
// instructions and declarations that lie between documents are not part
// of any emitted document. See spec.md §4.3.1.
func XML(st *splitstream.State, buf []byte) (end int, start int, startSet bool) {
	state := st.Sub
	dashRun := st.Counter[0]
	bracketRun := st.Counter[1]
	pos := 0
	set := false

	// markupEnd is the state after a comment, processing instruction or
	// declaration closes: at the start depth it lies between documents,
	// so the scanner returns to Init and the next '<' starts a document.
	markupEnd := func() int {
		if st.Depth == st.StartDepth {
			return xmlInit
		}
		return xmlDocument
	}

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		switch state {
		case xmlInit, xmlDocument:
			if c == '<' {
				if state == xmlInit || (st.Depth == st.StartDepth && st.StartDepth > 0) {
					pos, set = i, true
				}
				state = xmlElementOrComment
			}

		case xmlElementOrComment:
			switch c {
			case '>':
				state = xmlDocument
				if st.Last != '/' {
					st.Depth++
				} else if st.Depth == st.StartDepth {
					st.Last = c
					st.Sub = xmlDocument
					st.Counter[0], st.Counter[1] = 0, 0
					if set {
						return i + 1, pos, true
					}
					return i + 1, 0, false
				}
			case '/':
				state = xmlEndElement
			case '?':
				state = xmlInstruction
			case '!':
				state = xmlCommentOrInstruction
			default:
				state = xmlBeginElement
			}

		case xmlCommentOrInstruction:
			switch c {
			case '-':
				if dashRun > 0 {
					dashRun = 0
					state = xmlComment
				} else {
					dashRun++
				}
			case '[':
				dashRun = 0
				state = xmlCdata
			case '>':
				dashRun = 0
				state = markupEnd()
			default:
				dashRun = 0
				state = xmlInstruction
			}

		case xmlBeginElement:
			if c == '>' {
				state = xmlDocument
				if st.Last != '/' {
					st.Depth++
				} else if st.Depth == st.StartDepth {
					st.Last = c
					st.Sub = xmlDocument
					st.Counter[0], st.Counter[1] = 0, 0
					if set {
						return i + 1, pos, true
					}
					return i + 1, 0, false
				}
			}

		case xmlEndElement:
			if c == '>' {
				st.Depth--
				if st.Depth == st.StartDepth {
					st.Last = c
					st.Sub = xmlDocument
					st.Counter[0], st.Counter[1] = 0, 0
					if set {
						return i + 1, pos, true
					}
					return i + 1, 0, false
				}
				state = xmlDocument
			}

		case xmlInstruction:
			if c == '>' {
				state = markupEnd()
			}

		case xmlComment:
			switch c {
			case '-':
				dashRun++
			case '>':
				if dashRun >= 2 {
					dashRun = 0
					state = markupEnd()
				}
			default:
				dashRun = 0
			}

		case xmlCdata:
			switch c {
			case ']':
				bracketRun++
			case '>':
				if bracketRun >= 2 {
					bracketRun = 0
					state = xmlDocument
				}
				bracketRun = 0
			default:
				bracketRun = 0
			}
		}
		// Last records every byte, including ones that change the
		// sub-state, so a '/' left over from an earlier self-closing
		// sibling cannot make a later "<c>" look self-closing.
		st.Last = c
	}

	st.Sub = state
	st.Counter[0] = dashRun
	st.Counter[1] = bracketRun
	if set {
		return 0, pos, true
	}
	return 0, 0, false
}
