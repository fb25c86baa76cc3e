package merge

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEngineOpenFile(t *testing.T) {
	data := buildDocx(t, templateEntries(document(para("Hello {{name}}")))...)
	path := filepath.Join(t.TempDir(), "hello.docx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	engine := NewWithOptions(WithCache(4, time.Minute))

	first, err := engine.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	second, err := engine.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}

	if first == second {
		t.Error("each OpenFile call should return a fresh template")
	}
	if first.Package() != second.Package() {
		t.Error("the parsed package should come from the cache")
	}

	// Bindings on one template do not leak into another
	first.AddPlaceholder("name", "Ada")
	if _, ok := second.Bindings().Scalar("name"); ok {
		t.Error("templates from the same package share bindings")
	}

	engine.ClearCache()
	third, err := engine.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if third.Package() == first.Package() {
		t.Error("ClearCache should drop cached packages")
	}
}

func TestEngineOpenFileMissing(t *testing.T) {
	engine := NewWithOptions(WithCache(4, 0))
	_, err := engine.OpenFile(filepath.Join(t.TempDir(), "missing.docx"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !IsPackageError(err) {
		t.Errorf("error = %v, want PackageError", err)
	}
}

func TestEngineOpen(t *testing.T) {
	data := buildDocx(t, templateEntries(document(para("Hello {{name}}")))...)

	tmpl, err := NewWithOptions(WithStrictMode(true)).Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !tmpl.config.StrictMode {
		t.Error("template should inherit the engine configuration")
	}

	tmpl.AddPlaceholder("name", "Ada")
	out, _, err := tmpl.RenderBytes()
	if err != nil {
		t.Fatalf("RenderBytes() error = %v", err)
	}
	if doc := entryData(t, readDocx(t, out), MainDocumentPart); !strings.Contains(doc, "Hello Ada") {
		t.Errorf("document = %s", doc)
	}
}

func TestEngineOptions(t *testing.T) {
	engine := NewWithOptions(
		WithCache(7, time.Hour),
		WithStrictMode(true),
		WithImageExtensions(".svg"),
	)
	cfg := engine.Config()

	if cfg.CacheMaxSize != 7 || cfg.CacheTTL != time.Hour {
		t.Errorf("cache = %d/%v, want 7/1h", cfg.CacheMaxSize, cfg.CacheTTL)
	}
	if !cfg.StrictMode {
		t.Error("strict mode not applied")
	}
	if len(cfg.ImageExtensions) != 1 || cfg.ImageExtensions[0] != ".svg" {
		t.Errorf("ImageExtensions = %v", cfg.ImageExtensions)
	}
	if cfg.LogLevel == "" || cfg.MediaDir == "" {
		t.Error("unset fields should be filled with defaults")
	}
}
