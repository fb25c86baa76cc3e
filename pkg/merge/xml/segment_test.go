package xml

import (
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "empty",
			input: "",
			want:  []Segment{},
		},
		{
			name:  "text only",
			input: "Hello",
			want:  []Segment{{Kind: Text, Raw: "Hello", Offset: 0}},
		},
		{
			name:  "run with text",
			input: `<w:t xml:space="preserve">Hi {{name}}</w:t>`,
			want: []Segment{
				{Kind: Markup, Raw: `<w:t xml:space="preserve">`, Offset: 0},
				{Kind: Text, Raw: "Hi {{name}}", Offset: 26},
				{Kind: Markup, Raw: "</w:t>", Offset: 37},
			},
		},
		{
			name:  "quoted gt in attribute",
			input: `<w:x w:val="a>b">t</w:x>`,
			want: []Segment{
				{Kind: Markup, Raw: `<w:x w:val="a>b">`, Offset: 0},
				{Kind: Text, Raw: "t", Offset: 17},
				{Kind: Markup, Raw: "</w:x>", Offset: 18},
			},
		},
		{
			name:  "declaration and comment",
			input: `<?xml version="1.0"?><!-- a > b --><a/>`,
			want: []Segment{
				{Kind: Markup, Raw: `<?xml version="1.0"?>`, Offset: 0},
				{Kind: Markup, Raw: "<!-- a > b -->", Offset: 21},
				{Kind: Markup, Raw: "<a/>", Offset: 35},
			},
		},
		{
			name:  "cdata is markup",
			input: "<![CDATA[{{x}}]]>y",
			want: []Segment{
				{Kind: Markup, Raw: "<![CDATA[{{x}}]]>", Offset: 0},
				{Kind: Text, Raw: "y", Offset: 17},
			},
		},
		{
			name:  "unterminated tag",
			input: "a<w:t",
			want: []Segment{
				{Kind: Text, Raw: "a", Offset: 0},
				{Kind: Markup, Raw: "<w:t", Offset: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Split() returned %d segments, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitRoundTrip(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t>A &amp; B</w:t></w:r></w:p><w:sectPr/></w:body></w:document>`

	var b strings.Builder
	for _, seg := range Split(input) {
		b.WriteString(seg.Raw)
	}
	if b.String() != input {
		t.Errorf("round trip mismatch:\n got %s\nwant %s", b.String(), input)
	}
}

func TestTagName(t *testing.T) {
	tests := []struct {
		raw         string
		name        string
		closing     bool
		selfClosing bool
	}{
		{raw: "<w:p>", name: "w:p"},
		{raw: `<w:p w:rsidR="1">`, name: "w:p"},
		{raw: "</w:p>", name: "w:p", closing: true},
		{raw: "<w:p/>", name: "w:p", selfClosing: true},
		{raw: "<w:pPr>", name: "w:pPr"},
		{raw: "<!-- x -->", name: ""},
		{raw: "<?xml?>", name: ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, closing, selfClosing := TagName(tt.raw)
			if name != tt.name || closing != tt.closing || selfClosing != tt.selfClosing {
				t.Errorf("TagName(%q) = %q, %v, %v; want %q, %v, %v",
					tt.raw, name, closing, selfClosing, tt.name, tt.closing, tt.selfClosing)
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"A &amp; B", "A & B"},
		{"&lt;tag&gt;", "<tag>"},
		{"&quot;q&quot; &apos;", `"q" '`},
		{"&#123;&#x7D;", "{}"},
		{"&unknown; &", "&unknown; &"},
		{"&#xZZ;", "&#xZZ;"},
	}

	for _, tt := range tests {
		if got := Unescape(tt.input); got != tt.want {
			t.Errorf("Unescape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEscape(t *testing.T) {
	if got := Escape(`a < b & c > "d"`); got != `a &lt; b &amp; c &gt; "d"` {
		t.Errorf("Escape() = %q", got)
	}
}
