package merge

import (
	"sort"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/benjaminschreck/go-docxmerge/pkg/merge/tree"
)

// ItemValueField is the field name under which a scalar sequence element is
// bound, so `{{#each tags}}{{this}}{{/each}}` renders each element.
const ItemValueField = "this"

// Item is the flat field set of one sequence element
type Item map[string]string

// Resolve looks up a placeholder against the item's own fields
func (it Item) Resolve(tok Token) (string, bool) {
	value, ok := it[tok.Value]
	if !ok {
		return "", false
	}
	switch tok.Type {
	case TokenVariable:
		return value, true
	case TokenLength:
		return strconv.Itoa(len([]rune(value))), true
	case TokenLower:
		return lower(value), true
	case TokenUpper:
		return upper(value), true
	}
	return "", false
}

// Casers keep state between calls, so each conversion gets its own
func lower(s string) string { return cases.Lower(language.Und).String(s) }

func upper(s string) string { return cases.Upper(language.Und).String(s) }

// Bindings is an immutable snapshot of the values a template is merged
// with: a scalar table keyed by dot path, and a loop table holding the item
// records of every sequence. Build one with Flatten; the zero value is an
// empty snapshot.
type Bindings struct {
	scalars map[string]string
	loops   map[string][]Item
	sizes   map[string]int
}

func newBindings() *Bindings {
	return &Bindings{
		scalars: make(map[string]string),
		loops:   make(map[string][]Item),
		sizes:   make(map[string]int),
	}
}

// Flatten binds a data tree. Mapping keys are joined with dots, scalars go to
// the scalar table and sequences to the loop table. Sequence elements that
// are mappings contribute their top-level scalar fields to an item; scalar
// elements become an item with the single field ItemValueField. Nested
// mappings and sequences inside an item, and null values anywhere, are not
// bound.
func Flatten(root *tree.Node) *Bindings {
	b := newBindings()
	b.flatten("", root)
	return b
}

// FlattenValue binds a plain Go value, see tree.FromValue
func FlattenValue(v any) *Bindings {
	return Flatten(tree.FromValue(v))
}

func (b *Bindings) flatten(path string, n *tree.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case tree.Mapping:
		if path != "" {
			b.sizes[path] = len(n.Fields)
		}
		for _, f := range n.Fields {
			b.flatten(joinPath(path, f.Key), f.Value)
		}
	case tree.Scalar:
		if path == "" {
			return
		}
		b.scalars[path] = n.Value
		b.sizes[path] = n.Len()
	case tree.Sequence:
		if path == "" {
			return
		}
		items := make([]Item, 0, len(n.Items))
		for _, el := range n.Items {
			items = append(items, itemOf(el))
		}
		b.loops[path] = items
		b.sizes[path] = len(items)
	}
}

func itemOf(n *tree.Node) Item {
	item := make(Item)
	if n == nil {
		return item
	}
	switch n.Kind {
	case tree.Scalar:
		item[ItemValueField] = n.Value
	case tree.Mapping:
		for _, f := range n.Fields {
			if f.Value != nil && f.Value.Kind == tree.Scalar {
				item[f.Key] = f.Value.Value
			}
		}
	}
	return item
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// Scalar returns the value bound at path
func (b *Bindings) Scalar(path string) (string, bool) {
	if b == nil {
		return "", false
	}
	v, ok := b.scalars[path]
	return v, ok
}

// Loop returns the items bound at path
func (b *Bindings) Loop(path string) ([]Item, bool) {
	if b == nil {
		return nil, false
	}
	items, ok := b.loops[path]
	return items, ok
}

// Len returns the length recorded at path: the item count of a sequence, the
// key count of a mapping, or the rune count of a string.
func (b *Bindings) Len(path string) (int, bool) {
	if b == nil {
		return 0, false
	}
	n, ok := b.sizes[path]
	return n, ok
}

// ScalarKeys returns the bound scalar paths in sorted order
func (b *Bindings) ScalarKeys() []string {
	return sortedKeys(b.scalarMap())
}

// LoopKeys returns the bound loop paths in sorted order
func (b *Bindings) LoopKeys() []string {
	if b == nil {
		return nil
	}
	keys := make([]string, 0, len(b.loops))
	for k := range b.loops {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Bindings) scalarMap() map[string]string {
	if b == nil {
		return nil
	}
	return b.scalars
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve looks up a placeholder against the scalar table. Loop directives
// never resolve here.
func (b *Bindings) Resolve(tok Token) (string, bool) {
	switch tok.Type {
	case TokenVariable:
		return b.Scalar(tok.Value)
	case TokenLength:
		n, ok := b.Len(tok.Value)
		if !ok {
			return "", false
		}
		return strconv.Itoa(n), true
	case TokenLower:
		v, ok := b.Scalar(tok.Value)
		if !ok {
			return "", false
		}
		return lower(v), true
	case TokenUpper:
		v, ok := b.Scalar(tok.Value)
		if !ok {
			return "", false
		}
		return upper(v), true
	}
	return "", false
}

// withScalars returns a copy of b with extra scalars laid over it
func (b *Bindings) withScalars(extra map[string]string) *Bindings {
	out := newBindings()
	if b != nil {
		for k, v := range b.scalars {
			out.scalars[k] = v
		}
		for k, v := range b.loops {
			out.loops[k] = v
		}
		for k, v := range b.sizes {
			out.sizes[k] = v
		}
	}
	for k, v := range extra {
		out.scalars[k] = v
		out.sizes[k] = len([]rune(v))
	}
	return out
}
