// Package xml splits raw WordprocessingML into markup and character data
// without re-encoding it. Concatenating the Raw field of every segment
// returned by Split reproduces the input byte for byte, which is what lets
// the merge engine rewrite text runs while leaving namespaces, attributes and
// element order exactly as Word wrote them.
package xml

import "strings"

// SegmentKind distinguishes markup from character data
type SegmentKind int

const (
	// Markup covers tags, comments, CDATA sections, processing instructions
	// and declarations.
	Markup SegmentKind = iota
	// Text is character data between two markup segments, still escaped.
	Text
)

func (k SegmentKind) String() string {
	switch k {
	case Markup:
		return "markup"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Segment is a contiguous slice of the source document
type Segment struct {
	Kind SegmentKind
	Raw  string
	// Offset is the byte position of Raw in the source
	Offset int
}

// Split breaks content into alternating markup and text segments.
// Unterminated markup at the end of the input is returned as one markup
// segment.
func Split(content string) []Segment {
	segments := make([]Segment, 0, strings.Count(content, "<")*2)
	pos := 0
	for pos < len(content) {
		if content[pos] != '<' {
			next := strings.IndexByte(content[pos:], '<')
			end := len(content)
			if next != -1 {
				end = pos + next
			}
			segments = append(segments, Segment{Kind: Text, Raw: content[pos:end], Offset: pos})
			pos = end
			continue
		}

		end := markupEnd(content, pos)
		segments = append(segments, Segment{Kind: Markup, Raw: content[pos:end], Offset: pos})
		pos = end
	}
	return segments
}

// markupEnd returns the offset just past the markup starting at pos
func markupEnd(content string, pos int) int {
	rest := content[pos:]
	var terminator string
	switch {
	case strings.HasPrefix(rest, "<!--"):
		terminator = "-->"
	case strings.HasPrefix(rest, "<![CDATA["):
		terminator = "]]>"
	case strings.HasPrefix(rest, "<?"):
		terminator = "?>"
	}
	if terminator != "" {
		if idx := strings.Index(rest[2:], terminator); idx != -1 {
			return pos + 2 + idx + len(terminator)
		}
		return len(content)
	}

	// Element tag: '>' inside a quoted attribute value does not close it
	var quote byte
	for i := pos + 1; i < len(content); i++ {
		c := content[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i + 1
		}
	}
	return len(content)
}

// TagName returns the qualified element name of a tag segment such as
// `<w:p w:rsidR="00A1">` or `</w:p>`, and whether the segment closes the
// element. Non-element markup yields an empty name.
func TagName(raw string) (name string, closing bool, selfClosing bool) {
	if len(raw) < 3 || raw[0] != '<' {
		return "", false, false
	}
	switch raw[1] {
	case '!', '?':
		return "", false, false
	case '/':
		closing = true
		raw = raw[2:]
	default:
		raw = raw[1:]
	}
	end := strings.IndexAny(raw, " \t\r\n/>")
	if end == -1 {
		end = len(raw)
	}
	name = raw[:end]
	selfClosing = !closing && strings.HasSuffix(raw, "/>")
	return name, closing, selfClosing
}
