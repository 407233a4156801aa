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

package splitstream_test

import (
	"testing"

	"github.com/rlyrenius/splitstream-go/scanner"
	"github.com/rlyrenius/splitstream-go/splitstream"
)

// feed drives input through st one byte at a time -- the harshest
// possible chunking -- and collects every document the scanner emits,
// draining any trailing Rescan state at the end.
func feed(t *testing.T, st *splitstream.State, scan splitstream.ScanFunc, input string) []string {
	t.Helper()
	var got []string
	emit := func(doc splitstream.Document) {
		if doc.Len() == 0 {
			return
		}
		got = append(got, string(doc.Bytes()))
		doc.Release(st)
	}
	for i := 0; i < len(input); i++ {
		emit(st.Next(1<<20, []byte{input[i]}, scan))
	}
	// drain: an empty buf still rescans any tail left in Rescan state,
	// and the C source's own GetNextDocumentFromFile loops on a
	// zero-length read exactly this way at EOF.
	for {
		doc := st.Next(1<<20, nil, scan)
		if doc.Len() == 0 {
			break
		}
		emit(doc)
	}
	return got
}

func assertDocs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d documents %q, want %d %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("document %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestXMLBackToBackElements(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	got := feed(t, st, scanner.XML, "<a/><b></b>")
	assertDocs(t, got, []string{"<a/>", "<b></b>"})
}

func TestXMLNestedSingleDocument(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	got := feed(t, st, scanner.XML, "<a><b/><c><d/></c></a>")
	assertDocs(t, got, []string{"<a><b/><c><d/></c></a>"})
}

func TestXMLCommentAndInstructionSkipped(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	got := feed(t, st, scanner.XML, "<!-- c --><?pi x?><a/>")
	assertDocs(t, got, []string{"<a/>"})
}

func TestXMLCommentLenientClose(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	// spec.md's lenient rule: any run of >= 2 dashes followed by '>'
	// closes a comment, not exactly "--". "<!-- ---->" has four dashes
	// before the close and must still be consumed entirely as comment.
	got := feed(t, st, scanner.XML, "<!-- ---->\n<a/>")
	assertDocs(t, got, []string{"<a/>"})
}

func TestXMLCdataNotMistakenForComment(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	got := feed(t, st, scanner.XML, "<a><![CDATA[<b>]]></a>")
	assertDocs(t, got, []string{"<a><![CDATA[<b>]]></a>"})
}

func TestXMLStartDepthSplitsSiblings(t *testing.T) {
	st := splitstream.NewState(1)
	defer st.Close()
	got := feed(t, st, scanner.XML, "<root><a/><b/></root>")
	assertDocs(t, got, []string{"<a/>", "<b/>"})
}

func TestJSONBackToBackValues(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	got := feed(t, st, scanner.JSON, `{"x":1}[1,2]`)
	assertDocs(t, got, []string{`{"x":1}`, `[1,2]`})
}

func TestJSONEscapedStringAcrossByteBoundary(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	got := feed(t, st, scanner.JSON, `{"a":"x\"]}y"}`)
	assertDocs(t, got, []string{`{"a":"x\"]}y"}`})
}

func TestJSONStartDepthSplitsSiblings(t *testing.T) {
	st := splitstream.NewState(1)
	defer st.Close()
	got := feed(t, st, scanner.JSON, `[{"a":1},{"b":2}]`)
	assertDocs(t, got, []string{`{"a":1}`, `{"b":2}`})
}

func TestUBJSONBackToBackObjects(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	got := feed(t, st, scanner.UBJSON, "{U\x01a}{U\x02bc}")
	assertDocs(t, got, []string{"{U\x01a}", "{U\x02bc}"})
}

func TestUBJSONLengthPrefixStraddlesChunkBoundary(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	// 'S' (string) + 'U' (uint8 length type) + length byte + that many
	// payload bytes, split one byte at a time across the length field
	// and the payload it governs.
	got := feed(t, st, scanner.UBJSON, "{SU\x03abc}")
	assertDocs(t, got, []string{"{SU\x03abc}"})
}

func TestOversizeDocumentDropsThenResyncs(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	var got []string
	feedWithMax := func(max int, input string) {
		for i := 0; i < len(input); i++ {
			doc := st.Next(max, []byte{input[i]}, scanner.JSON)
			if doc.Len() > 0 {
				got = append(got, string(doc.Bytes()))
				doc.Release(st)
			}
		}
	}
	// first document is larger than max and must be silently dropped;
	// the second, small document must still be recognized afterward.
	feedWithMax(10, `{"too":"big"}{"ok":1}`)
	assertDocs(t, got, []string{`{"ok":1}`})
}

func TestDedupWindowDropsRepeat(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	st.EnableDedup(4)
	got := feed(t, st, scanner.JSON, `{"a":1}{"a":1}{"b":2}`)
	assertDocs(t, got, []string{`{"a":1}`, `{"b":2}`})
}

func TestEmptyInputYieldsNoDocuments(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	got := feed(t, st, scanner.XML, "")
	if len(got) != 0 {
		t.Fatalf("expected no documents, got %q", got)
	}
}

func TestWhitespaceBetweenDocumentsIgnored(t *testing.T) {
	st := splitstream.NewState(0)
	defer st.Close()
	got := feed(t, st, scanner.JSON, "  {\"a\":1}  \n  {\"b\":2}  ")
	assertDocs(t, got, []string{`{"a":1}`, `{"b":2}`})
}

func TestCloseWithoutLeakedDocumentDoesNotPanic(t *testing.T) {
	st := splitstream.NewState(0)
	doc := st.Next(1<<20, []byte(`{"a":1}`), scanner.JSON)
	doc.Release(st)
	st.Close() // must not panic: the document was released first
}

func TestCloseWithLeakedDocumentPanics(t *testing.T) {
	st := splitstream.NewState(0)
	doc := st.Next(1<<20, []byte(`{"a":1}`), scanner.JSON)
	if doc.Len() == 0 {
		t.Fatal("expected a completed document")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected Close to panic on a leaked document")
		}
		doc.Release(st)
	}()
	st.Close()
}
