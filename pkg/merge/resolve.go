package merge

import (
	"strings"

	"github.com/benjaminschreck/go-docxmerge/pkg/merge/xml"
)

// Resolve substitutes the placeholders in the character data of a document
// part. Markup is copied through byte for byte.
//
// Word splits text into runs wherever formatting, spell checking or editing
// history changes, so one placeholder can end up spread over several text
// nodes: `<w:t>{{na</w:t></w:r><w:r><w:t>me}}</w:t>`. Text nodes are
// therefore accumulated from the first one that opens a placeholder until
// every opened placeholder is closed; the substituted text is written into
// the last of them and the others are emptied. When nothing in the
// accumulated text resolves, or a placeholder is still open at the end of
// the part, the text nodes are left exactly as they were.
//
// It returns the rewritten content and the number of placeholders resolved.
func Resolve(content string, r Resolver) (string, int) {
	segments := xml.Split(content)
	out := make([]string, len(segments))

	var (
		pending  []int
		acc      strings.Builder
		resolved int
	)
	reset := func() {
		pending = pending[:0]
		acc.Reset()
	}
	flush := func() {
		text, n := Substitute(acc.String(), r)
		if n > 0 {
			for _, idx := range pending[:len(pending)-1] {
				out[idx] = ""
			}
			out[pending[len(pending)-1]] = xml.Escape(text)
			resolved += n
		}
		reset()
	}

	for i, seg := range segments {
		out[i] = seg.Raw
		if seg.Kind != xml.Text {
			continue
		}

		text := xml.Unescape(seg.Raw)
		if len(pending) == 0 && !opensPlaceholder(text) {
			continue
		}
		pending = append(pending, i)
		acc.WriteString(text)

		switch state := placeholderState(acc.String()); state {
		case stateClosed:
			flush()
		case stateNoPlaceholder:
			reset()
		}
	}

	if resolved == 0 {
		return content, 0
	}
	return strings.Join(out, ""), resolved
}

// opensPlaceholder reports whether text contains a start marker, or ends in
// the first half of one that the next text node may complete
func opensPlaceholder(text string) bool {
	return strings.Contains(text, PlaceholderStart) || strings.HasSuffix(text, "{")
}

type accumulatorState int

const (
	stateOpen accumulatorState = iota
	stateClosed
	stateNoPlaceholder
)

// placeholderState classifies accumulated text: closed once the last start
// marker has a matching end marker, open while a start marker (or half of
// one) is still waiting for more text.
func placeholderState(text string) accumulatorState {
	last := strings.LastIndex(text, PlaceholderStart)
	if last == -1 {
		if strings.HasSuffix(text, "{") {
			return stateOpen
		}
		return stateNoPlaceholder
	}
	if !strings.Contains(text[last+len(PlaceholderStart):], PlaceholderEnd) {
		return stateOpen
	}
	if strings.HasSuffix(text, "{") {
		return stateOpen
	}
	return stateClosed
}
