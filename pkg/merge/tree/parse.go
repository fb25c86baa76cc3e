package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format names a serialization a data tree can be parsed from
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnknownFormat is returned when a data format cannot be determined
var ErrUnknownFormat = errors.New("unknown data format")

// FormatFromPath picks a format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Parse decodes data in the given format
func Parse(data []byte, format Format) (*Node, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	case FormatTOML:
		return ParseTOML(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ParseFile reads and decodes a data file, choosing the format by extension
func ParseFile(path string) (*Node, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return Parse(data, format)
}

// ParseJSON decodes a JSON document, keeping object keys in source order
func ParseJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON data: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to parse JSON data: unexpected data after top-level value")
	}
	return n, nil
}

func decodeJSON(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &Node{Kind: Mapping}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				value, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				n.Set(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{Kind: Sequence}
			for dec.More() {
				item, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				n.Items = append(n.Items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return NewString(t), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case bool:
		return NewBool(t), nil
	case nil:
		return NewNull(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// ParseYAML decodes a YAML document, keeping mapping keys in source order.
// Aliases are expanded and merge keys (<<) applied.
func ParseYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML data: %w", err)
	}
	return fromYAML(&doc), nil
}

func fromYAML(y *yaml.Node) *Node {
	if y == nil {
		return NewNull()
	}

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return NewNull()
		}
		return fromYAML(y.Content[0])
	case yaml.AliasNode:
		return fromYAML(y.Alias)
	case yaml.SequenceNode:
		n := &Node{Kind: Sequence, Items: make([]*Node, 0, len(y.Content))}
		for _, item := range y.Content {
			n.Items = append(n.Items, fromYAML(item))
		}
		return n
	case yaml.MappingNode:
		n := &Node{Kind: Mapping}
		var merged []Field
		for i := 0; i+1 < len(y.Content); i += 2 {
			key, value := y.Content[i], y.Content[i+1]
			if key.ShortTag() == "!!merge" {
				merged = append(merged, mergeFields(fromYAML(value))...)
				continue
			}
			n.Set(key.Value, fromYAML(value))
		}
		for _, f := range merged {
			if n.Get(f.Key) == nil {
				n.Set(f.Key, f.Value)
			}
		}
		return n
	case yaml.ScalarNode:
		switch y.ShortTag() {
		case "!!null":
			return NewNull()
		case "!!bool":
			if b, err := strconv.ParseBool(y.Value); err == nil {
				return NewBool(b)
			}
		case "!!int", "!!float":
			return NewNumber(y.Value)
		}
		return NewString(y.Value)
	}
	return NewNull()
}

func mergeFields(n *Node) []Field {
	switch n.Kind {
	case Mapping:
		return n.Fields
	case Sequence:
		var fields []Field
		for _, item := range n.Items {
			fields = append(fields, mergeFields(item)...)
		}
		return fields
	}
	return nil
}

// ParseTOML decodes a TOML document. TOML tables carry no key order once
// decoded, so keys are sorted.
func ParseTOML(data []byte) (*Node, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML data: %w", err)
	}
	return FromValue(doc), nil
}
