package xml

import (
	"strings"
	"testing"
)

func TestParagraphs(t *testing.T) {
	content := `<w:body>` +
		`<w:p><w:pPr/><w:r><w:t>one</w:t></w:r></w:p>` +
		`<w:p w:rsidR="1"><w:r><w:t>two</w:t></w:r></w:p>` +
		`<w:p/>` +
		`</w:body>`

	spans := Paragraphs(content)
	if len(spans) != 2 {
		t.Fatalf("Paragraphs() returned %d spans, want 2", len(spans))
	}
	if got := PlainText(content[spans[0].Start:spans[0].End]); got != "one" {
		t.Errorf("first paragraph text = %q", got)
	}
	if got := content[spans[1].Start:spans[1].End]; got != `<w:p w:rsidR="1"><w:r><w:t>two</w:t></w:r></w:p>` {
		t.Errorf("second paragraph = %q", got)
	}
}

func TestParagraphsNested(t *testing.T) {
	inner := `<w:p><w:r><w:t>inner</w:t></w:r></w:p>`
	content := `<w:p><w:r><w:t>outer</w:t></w:r><w:txbxContent>` + inner + `</w:txbxContent></w:p>`

	spans := Paragraphs(content)
	if len(spans) != 1 {
		t.Fatalf("Paragraphs() returned %d spans, want 1", len(spans))
	}
	if got := content[spans[0].Start:spans[0].End]; got != inner {
		t.Errorf("span = %q, want inner paragraph", got)
	}
}

func TestRemoveParagraphs(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		marker      string
		want        string
		wantRemoved int
	}{
		{
			name:        "directive split across runs",
			content:     `<w:p><w:r><w:t>{{#each</w:t></w:r><w:r><w:t> items}}</w:t></w:r></w:p><w:p><w:r><w:t>keep</w:t></w:r></w:p>`,
			marker:      "{{#each items}}",
			want:        `<w:p><w:r><w:t>keep</w:t></w:r></w:p>`,
			wantRemoved: 1,
		},
		{
			name:        "nothing matches",
			content:     `<w:p><w:r><w:t>keep</w:t></w:r></w:p>`,
			marker:      "{{/each}}",
			want:        `<w:p><w:r><w:t>keep</w:t></w:r></w:p>`,
			wantRemoved: 0,
		},
		{
			name:        "several paragraphs",
			content:     `<a><w:p><w:t>{{/each}}</w:t></w:p>x<w:p><w:t>{{/each}}</w:t></w:p></a>`,
			marker:      "{{/each}}",
			want:        `<a>x</a>`,
			wantRemoved: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, removed := RemoveParagraphs(tt.content, func(text string) bool {
				return strings.Contains(text, tt.marker)
			})
			if got != tt.want {
				t.Errorf("RemoveParagraphs() = %q, want %q", got, tt.want)
			}
			if removed != tt.wantRemoved {
				t.Errorf("removed = %d, want %d", removed, tt.wantRemoved)
			}
		})
	}
}
