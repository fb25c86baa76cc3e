package merge

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/benjaminschreck/go-docxmerge/pkg/merge/tree"
)

// Template is an opened template package together with the values and
// image replacements it will be rendered with.
//
// A Template is not safe for concurrent use. Bind, AddPlaceholder and
// AddImage mutate it; render from one goroutine at a time, or give every
// goroutine its own Template over a shared Package.
type Template struct {
	pkg    *Package
	config *Config

	// bound is the snapshot of the last Bind call and manual holds the
	// AddPlaceholder entries. seq orders both so the later write wins.
	bound    *Bindings
	boundSeq uint64
	manual   map[string]manualValue
	seq      uint64

	media *MediaMap
}

type manualValue struct {
	value string
	seq   uint64
}

// NewTemplate creates a template over an opened package. A nil config
// selects the global configuration.
func NewTemplate(pkg *Package, config *Config) *Template {
	if config == nil {
		config = GetGlobalConfig()
	}
	config = NewConfigWithDefaults(config)
	return &Template{
		pkg:    pkg,
		config: config,
		manual: make(map[string]manualValue),
		media:  config.newMediaMap(),
	}
}

// Package returns the template's source package
func (t *Template) Package() *Package {
	return t.pkg
}

// Bind replaces the bound data with a snapshot of root. Values added with
// AddPlaceholder before this call are kept unless root binds the same path.
func (t *Template) Bind(root *tree.Node) {
	t.seq++
	t.bound = Flatten(root)
	t.boundSeq = t.seq
}

// BindValue binds a plain Go value such as map[string]any or a struct
func (t *Template) BindValue(v any) {
	t.Bind(tree.FromValue(v))
}

// BindData parses serialized data and binds it
func (t *Template) BindData(data []byte, format tree.Format) error {
	root, err := tree.Parse(data, format)
	if err != nil {
		return err
	}
	t.Bind(root)
	return nil
}

// BindFile parses a JSON, YAML or TOML file, chosen by extension, and binds it
func (t *Template) BindFile(path string) error {
	root, err := tree.ParseFile(path)
	if err != nil {
		return err
	}
	t.Bind(root)
	return nil
}

// AddPlaceholder binds a single scalar. key is a dot path, with or without
// the surrounding braces: "exam.title" and "{{exam.title}}" are the same key.
func (t *Template) AddPlaceholder(key, value string) {
	key = placeholderKey(key)
	if key == "" {
		return
	}
	t.seq++
	t.manual[key] = manualValue{value: value, seq: t.seq}
}

func placeholderKey(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, PlaceholderStart) && strings.HasSuffix(key, PlaceholderEnd) && len(key) >= len(PlaceholderStart)+len(PlaceholderEnd) {
		key = key[len(PlaceholderStart) : len(key)-len(PlaceholderEnd)]
	}
	return strings.TrimSpace(key)
}

// AddImage replaces the named image of the package with src on render.
// name is a file in the media directory ("image1.png") or a full entry path.
// Entries without an accepted image extension are left as they are.
func (t *Template) AddImage(name string, src MediaSource) {
	t.media.Add(name, src)
}

// RemoveImage drops a replacement added with AddImage
func (t *Template) RemoveImage(name string) {
	t.media.Remove(name)
}

// Media returns the template's image replacements
func (t *Template) Media() *MediaMap {
	return t.media
}

// Bindings returns the effective snapshot: the last bound data with the
// placeholders added after it, and the placeholders for paths it does not
// bind.
func (t *Template) Bindings() *Bindings {
	extra := make(map[string]string, len(t.manual))
	for key, mv := range t.manual {
		if _, bound := t.bound.Scalar(key); bound && mv.seq < t.boundSeq {
			continue
		}
		extra[key] = mv.value
	}
	return t.bound.withScalars(extra)
}

// PartResult is the outcome of rendering one document part
type PartResult struct {
	Part     string
	Content  string
	Loops    int
	Resolved int
}

// Changed reports whether rendering altered the part
func (r PartResult) Changed(original string) bool {
	return r.Content != original
}

// RenderParts renders every document part and returns them in package order.
// Loop blocks are expanded and placeholders resolved in a single pass, so
// text that a value puts into the document is never substituted again. A part
// whose loops cannot be expanded is returned exactly as it was and is
// reported in the diagnostics.
func (t *Template) RenderParts() ([]PartResult, Diagnostics, error) {
	return t.renderParts(GetLogger().WithField("render_id", uuid.NewString()))
}

func (t *Template) renderParts(logger *Logger) ([]PartResult, Diagnostics, error) {
	b := t.Bindings()

	var (
		results []PartResult
		diags   Diagnostics
	)
	for _, name := range t.pkg.PartNames() {
		content, _ := t.pkg.Part(name)
		rendered, loops, resolved, partDiags := renderPart(name, content, b)
		diags = append(diags, partDiags...)
		for _, d := range partDiags {
			logger.WithFields(Fields{"part": d.Part, "path": d.Path}).Warn("Loop not expanded: %s", d.Reason)
		}
		result := PartResult{Part: name, Content: rendered, Loops: loops, Resolved: resolved}

		if logger.IsDebugMode() {
			logger.WithFields(Fields{
				"part":     name,
				"loops":    result.Loops,
				"resolved": result.Resolved,
			}).Debug("Rendered document part")
		}
		results = append(results, result)
	}

	if t.config.StrictMode && len(diags) > 0 {
		return nil, diags, diags.Err()
	}
	return results, diags, nil
}

// Render writes the rendered package to w. Entries other than changed
// document parts and replaced images are copied from the template unchanged,
// in the same order.
//
// Loop directives that could not be expanded are returned as diagnostics;
// in strict mode they are returned as a *StrictModeError instead and nothing
// is written. If an error occurs while writing, w holds an incomplete
// package.
func (t *Template) Render(w io.Writer) (Diagnostics, error) {
	logger := GetLogger().WithField("render_id", uuid.NewString())

	results, diags, err := t.renderParts(logger)
	if err != nil {
		return diags, err
	}

	parts := make(map[string]string)
	for _, r := range results {
		original, _ := t.pkg.Part(r.Part)
		if r.Changed(original) {
			parts[r.Part] = r.Content
		}
	}

	if err := Assemble(w, t.pkg, parts, t.media); err != nil {
		return diags, err
	}

	logger.WithFields(Fields{
		"parts":       len(parts),
		"images":      t.media.Len(),
		"diagnostics": len(diags),
	}).Debug("Rendered template")
	return diags, nil
}

// RenderBytes renders the package into memory
func (t *Template) RenderBytes() ([]byte, Diagnostics, error) {
	var buf bytes.Buffer
	diags, err := t.Render(&buf)
	if err != nil {
		return nil, diags, err
	}
	return buf.Bytes(), diags, nil
}

// Save renders the package to path. The output is written to a temporary
// file next to path and renamed over it once complete, so a failed render
// leaves any existing file at path untouched.
func (t *Template) Save(path string) (diags Diagnostics, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docxmerge-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, removeIfExists(tmp.Name()))
		}
	}()

	err = tmp.Chmod(0o644)
	if err == nil {
		diags, err = t.Render(tmp)
	}
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		return diags, err
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return diags, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return diags, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
