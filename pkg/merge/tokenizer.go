package merge

import (
	"strings"
)

const (
	// PlaceholderStart opens a placeholder or directive
	PlaceholderStart = "{{"
	// PlaceholderEnd closes a placeholder or directive
	PlaceholderEnd = "}}"
)

// TokenType represents the type of a template token
type TokenType int

const (
	TokenText TokenType = iota
	TokenVariable
	TokenEach
	TokenEndEach
	TokenLength
	TokenLower
	TokenUpper
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenVariable:
		return "variable"
	case TokenEach:
		return "each"
	case TokenEndEach:
		return "end-each"
	case TokenLength:
		return "length"
	case TokenLower:
		return "lower"
	case TokenUpper:
		return "upper"
	default:
		return "unknown"
	}
}

// Token represents a parsed template token
type Token struct {
	Type TokenType
	// Value is the path a placeholder or directive refers to, or the literal
	// text for TokenText.
	Value string
	// Raw is the token exactly as written, braces included
	Raw string
}

// Resolver supplies values for placeholder tokens
type Resolver interface {
	Resolve(tok Token) (string, bool)
}

// Tokenize splits input into text and placeholder tokens in a single
// left-to-right pass. A start marker followed by another start marker before
// any end marker is treated as text, so "{{a {{b}}" yields the text "{{a "
// and the placeholder "b".
func Tokenize(input string) []Token {
	var tokens []Token
	for len(input) > 0 {
		start, end := nextToken(input)
		if start == -1 {
			tokens = append(tokens, Token{Type: TokenText, Value: input, Raw: input})
			break
		}
		if start > 0 {
			tokens = append(tokens, Token{Type: TokenText, Value: input[:start], Raw: input[:start]})
		}
		tokens = append(tokens, parseToken(input[start:end]))
		input = input[end:]
	}
	return tokens
}

// nextToken locates the first complete token in input and returns its
// bounds, or -1, -1.
func nextToken(input string) (int, int) {
	offset := 0
	for {
		start := strings.Index(input[offset:], PlaceholderStart)
		if start == -1 {
			return -1, -1
		}
		start += offset

		body := input[start+len(PlaceholderStart):]
		end := strings.Index(body, PlaceholderEnd)
		if end == -1 {
			return -1, -1
		}
		// Restart at a later start marker that opens before this one closes
		if inner := strings.LastIndex(body[:end], PlaceholderStart); inner != -1 {
			offset = start + len(PlaceholderStart) + inner
			continue
		}
		return start, start + len(PlaceholderStart) + end + len(PlaceholderEnd)
	}
}

// parseToken determines the type of token from its raw form
func parseToken(raw string) Token {
	content := strings.TrimSpace(raw[len(PlaceholderStart) : len(raw)-len(PlaceholderEnd)])
	if content == "" {
		return Token{Type: TokenText, Value: raw, Raw: raw}
	}

	parts := strings.Fields(content)
	keyword := parts[0]

	switch {
	case keyword == "#each":
		return Token{Type: TokenEach, Value: strings.Join(parts[1:], " "), Raw: raw}
	case keyword == "/each":
		return Token{Type: TokenEndEach, Raw: raw}
	case keyword == "lower" && len(parts) == 2:
		return Token{Type: TokenLower, Value: parts[1], Raw: raw}
	case keyword == "upper" && len(parts) == 2:
		return Token{Type: TokenUpper, Value: parts[1], Raw: raw}
	case strings.HasPrefix(content, "#") && len(parts) == 1 && len(content) > 1:
		return Token{Type: TokenLength, Value: content[1:], Raw: raw}
	default:
		return Token{Type: TokenVariable, Value: content, Raw: raw}
	}
}

// Substitute replaces every placeholder in text with the value r supplies for
// it. Each token is looked up exactly once and values are never rescanned,
// so a value that itself looks like a placeholder is emitted as is.
// Unresolved tokens are kept literally. It returns the new text and the
// number of tokens resolved.
func Substitute(text string, r Resolver) (string, int) {
	var (
		b        strings.Builder
		resolved int
	)
	b.Grow(len(text))
	for _, tok := range Tokenize(text) {
		if tok.Type == TokenText {
			b.WriteString(tok.Raw)
			continue
		}
		if value, ok := r.Resolve(tok); ok {
			b.WriteString(value)
			resolved++
			continue
		}
		b.WriteString(tok.Raw)
	}
	return b.String(), resolved
}
