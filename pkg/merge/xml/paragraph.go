package xml

import "strings"

// ParagraphTag is the qualified name of a WordprocessingML paragraph
const ParagraphTag = "w:p"

// Span is a half-open byte range [Start, End) of the source
type Span struct {
	Start int
	End   int
}

// Paragraphs returns the spans of the innermost paragraph elements in
// content, in document order. Paragraphs that contain other paragraphs
// (text boxes, for instance) are not reported; their children are.
// Unbalanced paragraph tags are ignored.
func Paragraphs(content string) []Span {
	type open struct {
		start    int
		hasChild bool
	}

	var (
		stack []open
		spans []Span
	)
	for _, seg := range Split(content) {
		if seg.Kind != Markup {
			continue
		}
		name, closing, selfClosing := TagName(seg.Raw)
		if name != ParagraphTag || selfClosing {
			continue
		}
		if !closing {
			if len(stack) > 0 {
				stack[len(stack)-1].hasChild = true
			}
			stack = append(stack, open{start: seg.Offset})
			continue
		}
		if len(stack) == 0 {
			continue
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !top.hasChild {
			spans = append(spans, Span{Start: top.start, End: seg.Offset + len(seg.Raw)})
		}
	}
	return spans
}

// PlainText concatenates the character data of content, dropping markup.
// Entities are left encoded.
func PlainText(content string) string {
	var b strings.Builder
	for _, seg := range Split(content) {
		if seg.Kind == Text {
			b.WriteString(seg.Raw)
		}
	}
	return b.String()
}

// RemoveParagraphs deletes every innermost paragraph whose plain text
// satisfies drop. It returns the rewritten content and the number of
// paragraphs removed.
func RemoveParagraphs(content string, drop func(text string) bool) (string, int) {
	spans := Paragraphs(content)
	if len(spans) == 0 {
		return content, 0
	}

	var (
		b       strings.Builder
		last    int
		removed int
	)
	b.Grow(len(content))
	for _, span := range spans {
		if !drop(PlainText(content[span.Start:span.End])) {
			continue
		}
		b.WriteString(content[last:span.Start])
		last = span.End
		removed++
	}
	if removed == 0 {
		return content, 0
	}
	b.WriteString(content[last:])
	return b.String(), removed
}
