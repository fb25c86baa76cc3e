package merge

import (
	"strings"

	"github.com/benjaminschreck/go-docxmerge/pkg/merge/xml"
)

// maxDirectiveLength bounds the character data collected for one token
// candidate; longer candidates are dropped as ordinary text.
const maxDirectiveLength = 1024

// scanState is the lexical state of the loop scanner
type scanState int

const (
	// stateOutside is character data outside any token candidate
	stateOutside scanState = iota
	// stateTagStart follows a '<' and tells element tags from comments,
	// declarations and processing instructions
	stateTagStart
	// stateInTag is an element tag between '<' and '>'
	stateInTag
	// stateInTagDoubleQuoted and stateInTagSingleQuoted are attribute values,
	// where '>' does not end the tag
	stateInTagDoubleQuoted
	stateInTagSingleQuoted
	// stateInDecl is markup starting with "<!" or "<?"; it ends at the next '>'
	stateInDecl
	// stateInTokenCandidate collects character data after an opening brace
	// while brace depth is tracked
	stateInTokenCandidate
	// stateInTokenTag and the states below mirror the tag states for markup
	// interrupting a token candidate; it is skipped so a directive split
	// over runs is still recognized
	stateInTokenTagStart
	stateInTokenTag
	stateInTokenTagDoubleQuoted
	stateInTokenTagSingleQuoted
	stateInTokenDecl
	numScanStates
)

var scanStateNames = [numScanStates]string{
	stateOutside:                "Outside",
	stateTagStart:               "TagStart",
	stateInTag:                  "InTag",
	stateInTagDoubleQuoted:      "InTagDoubleQuoted",
	stateInTagSingleQuoted:      "InTagSingleQuoted",
	stateInDecl:                 "InDecl",
	stateInTokenCandidate:       "InTokenCandidate",
	stateInTokenTagStart:        "InTokenTagStart",
	stateInTokenTag:             "InTokenTag",
	stateInTokenTagDoubleQuoted: "InTokenTagDoubleQuoted",
	stateInTokenTagSingleQuoted: "InTokenTagSingleQuoted",
	stateInTokenDecl:            "InTokenDecl",
}

func (s scanState) String() string {
	if s < 0 || s >= numScanStates {
		return "unknown"
	}
	return scanStateNames[s]
}

// charClass partitions input bytes for the transition table
type charClass int

const (
	classTagOpen charClass = iota
	classTagClose
	classBraceOpen
	classBraceClose
	classDoubleQuote
	classSingleQuote
	// classDeclMark is '!' or '?', which after '<' opens non-element markup
	classDeclMark
	classOther
	numCharClasses
)

func classify(c byte) charClass {
	switch c {
	case '<':
		return classTagOpen
	case '>':
		return classTagClose
	case '{':
		return classBraceOpen
	case '}':
		return classBraceClose
	case '"':
		return classDoubleQuote
	case '\'':
		return classSingleQuote
	case '!', '?':
		return classDeclMark
	default:
		return classOther
	}
}

// scanAction is the side effect attached to a transition
type scanAction int

const (
	actNone scanAction = iota
	actBegin
	actOpenBrace
	actCloseBrace
	actAppend
)

type transition struct {
	next   scanState
	action scanAction
}

// transitions is indexed by current state and character class. Actions on
// token candidates may override the next state (a candidate completes or is
// abandoned).
var transitions = buildTransitions()

// markupRows fills the rows of one family of markup states. Quotes are only
// tracked inside element tags, like xml.Split does.
func markupRows(t *[numScanStates][numCharClasses]transition, tagStart, tag, dq, sq, decl, exit scanState) {
	for c := range t[tagStart] {
		t[tagStart][c] = transition{tag, actNone}
	}
	t[tagStart][classDeclMark] = transition{decl, actNone}
	t[tagStart][classTagClose] = transition{exit, actNone}
	t[tagStart][classDoubleQuote] = transition{dq, actNone}
	t[tagStart][classSingleQuote] = transition{sq, actNone}

	t[tag][classTagClose] = transition{exit, actNone}
	t[tag][classDoubleQuote] = transition{dq, actNone}
	t[tag][classSingleQuote] = transition{sq, actNone}
	t[dq][classDoubleQuote] = transition{tag, actNone}
	t[sq][classSingleQuote] = transition{tag, actNone}
	t[decl][classTagClose] = transition{exit, actNone}
}

func buildTransitions() [numScanStates][numCharClasses]transition {
	var t [numScanStates][numCharClasses]transition
	for s := range t {
		for c := range t[s] {
			t[s][c] = transition{scanState(s), actNone}
		}
	}

	t[stateOutside][classTagOpen] = transition{stateTagStart, actNone}
	t[stateOutside][classBraceOpen] = transition{stateInTokenCandidate, actBegin}
	markupRows(&t, stateTagStart, stateInTag, stateInTagDoubleQuoted, stateInTagSingleQuoted, stateInDecl, stateOutside)

	for c := range t[stateInTokenCandidate] {
		t[stateInTokenCandidate][c] = transition{stateInTokenCandidate, actAppend}
	}
	t[stateInTokenCandidate][classTagOpen] = transition{stateInTokenTagStart, actNone}
	t[stateInTokenCandidate][classBraceOpen] = transition{stateInTokenCandidate, actOpenBrace}
	t[stateInTokenCandidate][classBraceClose] = transition{stateInTokenCandidate, actCloseBrace}
	markupRows(&t, stateInTokenTagStart, stateInTokenTag, stateInTokenTagDoubleQuoted, stateInTokenTagSingleQuoted, stateInTokenDecl, stateInTokenCandidate)
	return t
}

// loopScanner walks document XML one byte at a time. Every byte is copied,
// either to the output or, inside a loop body, to the body capture; the
// lexical states only decide when a directive has been seen.
type loopScanner struct {
	part     string
	bindings *Bindings
	// scalars, when set, resolves placeholders outside loop bodies and
	// placeholders in a body that the item does not provide
	scalars  Resolver
	resolved int

	state     scanState
	depth     int
	candidate strings.Builder

	inBody   bool
	loopPath string
	items    []Item
	body     strings.Builder
	raw      strings.Builder
	out      strings.Builder

	directives map[string]bool
	expanded   int
	diags      []LoopDiagnostic
	failed     *LoopDiagnostic
}

// ExpandLoops expands every `{{#each path}} … {{/each}}` block in a
// document part against the loop table of b.
//
// The body between the directives is repeated once per item, in order, and
// `{{field}}` placeholders in each copy are resolved against that item.
// Afterwards every paragraph whose text still carries a loop directive is
// removed, which takes away the paragraphs that held only the directives.
//
// Loops do not nest. When a directive names a path with no bound sequence,
// when a second each-directive opens inside a body, or when a body is never
// closed, the part is returned unchanged and the failure is reported as a
// diagnostic. An end directive without a matching start is left in place and
// reported, without failing the part.
func ExpandLoops(part, content string, b *Bindings) (string, int, []LoopDiagnostic) {
	s := &loopScanner{part: part, bindings: b}
	return s.run(content), s.expanded, s.diags
}

// renderPart expands the loops of a part and resolves its placeholders
// against b in one pass. Each body copy is resolved against its item first
// and b second, and text outside loop bodies against b, so text a value put
// into the part is never scanned again. It returns the rendered part, the
// number of loops expanded and the number of placeholders resolved.
func renderPart(part, content string, b *Bindings) (string, int, int, []LoopDiagnostic) {
	s := &loopScanner{part: part, bindings: b, scalars: b}
	out := s.run(content)
	return out, s.expanded, s.resolved, s.diags
}

func (s *loopScanner) run(content string) string {
	s.directives = make(map[string]bool)
	s.out.Grow(len(content))

	for i := 0; i < len(content) && s.failed == nil; i++ {
		s.step(content[i])
	}
	if s.failed == nil && s.inBody {
		s.fail(s.loopPath, ReasonUnclosedLoop)
	}
	if s.failed != nil {
		s.diags = append(s.diags, *s.failed)
		s.expanded, s.resolved = 0, 0
		return content
	}
	s.flushRaw()
	if s.expanded == 0 && s.resolved == 0 {
		return content
	}
	if s.expanded == 0 {
		return s.out.String()
	}

	result, _ := xml.RemoveParagraphs(s.out.String(), func(text string) bool {
		for directive := range s.directives {
			if strings.Contains(text, directive) {
				return true
			}
		}
		return false
	})
	return result
}

// flushRaw moves the text collected outside loop bodies to the output
func (s *loopScanner) flushRaw() {
	raw := s.raw.String()
	s.raw.Reset()
	if s.scalars != nil {
		var n int
		raw, n = Resolve(raw, s.scalars)
		s.resolved += n
	}
	s.out.WriteString(raw)
}

// itemResolver resolves against a loop item, then against the scalars
type itemResolver struct {
	item    Item
	scalars Resolver
}

func (r itemResolver) Resolve(tok Token) (string, bool) {
	if v, ok := r.item.Resolve(tok); ok {
		return v, true
	}
	if r.scalars == nil {
		return "", false
	}
	return r.scalars.Resolve(tok)
}

func (s *loopScanner) step(c byte) {
	if s.inBody {
		s.body.WriteByte(c)
	} else {
		s.raw.WriteByte(c)
	}

	t := transitions[s.state][classify(c)]
	s.state = t.next

	switch t.action {
	case actBegin:
		s.depth = 1
		s.candidate.Reset()
		s.candidate.WriteByte(c)
	case actOpenBrace:
		s.depth++
		s.candidate.WriteByte(c)
	case actCloseBrace:
		s.depth--
		s.candidate.WriteByte(c)
		if s.depth == 0 {
			s.state = stateOutside
			s.complete(s.candidate.String())
		}
	case actAppend:
		// A single brace not followed by another is plain text
		if s.depth == 1 && s.candidate.Len() == 1 {
			s.state = stateOutside
			return
		}
		s.candidate.WriteByte(c)
		if s.candidate.Len() > maxDirectiveLength {
			s.state = stateOutside
		}
	}
}

// complete handles a balanced brace group collected outside markup
func (s *loopScanner) complete(raw string) {
	if !strings.HasPrefix(raw, PlaceholderStart) || !strings.HasSuffix(raw, PlaceholderEnd) || len(raw) < 4 {
		return
	}
	tok := parseToken(raw)

	switch tok.Type {
	case TokenEach:
		if s.inBody {
			s.fail(tok.Value, ReasonNestedLoop)
			return
		}
		items, ok := s.bindings.Loop(tok.Value)
		if !ok {
			s.fail(tok.Value, ReasonUnknownLoopVariable)
			return
		}
		s.directives[raw] = true
		s.inBody = true
		s.loopPath = tok.Value
		s.items = items
		s.body.Reset()
	case TokenEndEach:
		if !s.inBody {
			s.diags = append(s.diags, LoopDiagnostic{Part: s.part, Reason: ReasonUnmatchedEnd})
			return
		}
		s.directives[raw] = true
		s.emitBody()
	}
}

// emitBody renders the captured body once per item
func (s *loopScanner) emitBody() {
	s.flushRaw()
	body := s.body.String()
	for _, item := range s.items {
		rendered, n := Resolve(body, itemResolver{item: item, scalars: s.scalars})
		s.resolved += n
		s.out.WriteString(rendered)
	}
	s.expanded++
	s.inBody = false
	s.loopPath = ""
	s.items = nil
	s.body.Reset()
}

func (s *loopScanner) fail(path string, reason LoopFailure) {
	s.failed = &LoopDiagnostic{Part: s.part, Path: path, Reason: reason}
}
