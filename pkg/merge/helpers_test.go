package merge

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"
)

const (
	documentPrefix = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	documentSuffix = `<w:sectPr/></w:body></w:document>`
)

// document wraps body elements into a main document part
func document(body ...string) string {
	return documentPrefix + strings.Join(body, "") + documentSuffix
}

// para builds a paragraph with one run per text
func para(runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, r := range runs {
		b.WriteString(`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
		b.WriteString(r)
		b.WriteString("</w:t></w:r>")
	}
	b.WriteString("</w:p>")
	return b.String()
}

type zipEntry struct {
	name   string
	data   []byte
	method uint16
}

var pngBytes = []byte("\x89PNG\r\n\x1a\nsource-image")

// templateEntries returns the entries of a small but complete package
func templateEntries(doc string) []zipEntry {
	return []zipEntry{
		{name: "[Content_Types].xml", data: []byte(`<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`), method: zip.Deflate},
		{name: "_rels/.rels", data: []byte(`<?xml version="1.0"?><Relationships/>`), method: zip.Deflate},
		{name: "word/document.xml", data: []byte(doc), method: zip.Deflate},
		{name: "word/styles.xml", data: []byte(`<w:styles>{{not.a.part}}</w:styles>`), method: zip.Deflate},
		{name: "word/media/image1.png", data: pngBytes, method: zip.Store},
		{name: "word/media/image2.emf", data: []byte("emf-source"), method: zip.Store},
	}
}

// buildDocx writes entries into an in-memory package
func buildDocx(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := time.Date(2021, 3, 4, 5, 6, 8, 0, time.UTC)
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method, Modified: modified})
		if err != nil {
			t.Fatalf("failed to create %s: %v", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			t.Fatalf("failed to write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// openTemplate builds a package from entries and opens it as a template
func openTemplate(t *testing.T, config *Config, entries ...zipEntry) *Template {
	t.Helper()

	data := buildDocx(t, entries...)
	pkg, err := OpenPackage(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenPackage() error = %v", err)
	}
	return NewTemplate(pkg, config)
}

// readDocx returns the entries of a package in order
func readDocx(t *testing.T, data []byte) []zipEntry {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	var entries []zipEntry
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("failed to open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("failed to read %s: %v", f.Name, err)
		}
		entries = append(entries, zipEntry{name: f.Name, data: content, method: f.Method})
	}
	return entries
}

func entryNames(entries []zipEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

func entryData(t *testing.T, entries []zipEntry, name string) string {
	t.Helper()
	for _, e := range entries {
		if e.name == name {
			return string(e.data)
		}
	}
	t.Fatalf("entry %s not found", name)
	return ""
}

// quietLogger silences the global logger for the duration of a test
func quietLogger(t *testing.T) {
	t.Helper()
	previous := GetLogger()
	SetLogger(NewLogger(io.Discard, LogOff))
	t.Cleanup(func() { SetLogger(previous) })
}
