package merge

import (
	"github.com/benjaminschreck/go-docxmerge/pkg/merge/xml"
)

// PartReport lists the template tokens found in one document part
type PartReport struct {
	Part string
	// Tokens holds each distinct token once, in order of first appearance
	Tokens []Token
}

// Placeholders returns the paths referenced by placeholders and helpers
func (r PartReport) Placeholders() []string {
	var paths []string
	seen := make(map[string]bool)
	for _, tok := range r.Tokens {
		switch tok.Type {
		case TokenVariable, TokenLength, TokenLower, TokenUpper:
			if !seen[tok.Value] {
				seen[tok.Value] = true
				paths = append(paths, tok.Value)
			}
		}
	}
	return paths
}

// Loops returns the paths named by each-directives
func (r PartReport) Loops() []string {
	var paths []string
	for _, tok := range r.Tokens {
		if tok.Type == TokenEach {
			paths = append(paths, tok.Value)
		}
	}
	return paths
}

// Unbound returns the loop paths and top-level placeholder paths that b
// has no value for. Placeholders that name a field of a loop item cannot be
// told apart from top-level ones here and are reported as well.
func (r PartReport) Unbound(b *Bindings) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, tok := range r.Tokens {
		var ok bool
		switch tok.Type {
		case TokenEndEach:
			continue
		case TokenEach:
			_, ok = b.Loop(tok.Value)
		default:
			_, ok = b.Resolve(tok)
		}
		if !ok && !seen[tok.Value] {
			seen[tok.Value] = true
			missing = append(missing, tok.Value)
		}
	}
	return missing
}

// Inspect scans the document parts of pkg for placeholders and loop
// directives. Text is read across runs, so split tokens are found whole.
func Inspect(pkg *Package) []PartReport {
	var reports []PartReport
	for _, name := range pkg.PartNames() {
		content, _ := pkg.Part(name)
		report := PartReport{Part: name}

		seen := make(map[string]bool)
		for _, tok := range Tokenize(xml.Unescape(xml.PlainText(content))) {
			if tok.Type == TokenText || seen[tok.Raw] {
				continue
			}
			seen[tok.Raw] = true
			report.Tokens = append(report.Tokens, tok)
		}
		reports = append(reports, report)
	}
	return reports
}

// MediaEntries returns the package entries m would accept a replacement for
func (p *Package) MediaEntries(m *MediaMap) []string {
	var entries []string
	for _, f := range p.files {
		if m.Accepts(f.Name) {
			entries = append(entries, f.Name)
		}
	}
	return entries
}
