package merge

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMediaMapLookup(t *testing.T) {
	m := NewMediaMap("", nil)
	src := BytesSource("logo", []byte("new"))

	m.Add("image1.png", src)
	m.Add("word/media/image2.JPEG", src)
	m.Add("image3.emf", src)
	m.Add("/image4.jpg", src)

	tests := []struct {
		entry string
		want  bool
	}{
		{"word/media/image1.png", true},
		{"word/media/image2.JPEG", true},
		{"word/media/image3.emf", false},
		{"word/media/image4.jpg", true},
		{"word/media/image5.png", false},
		{"word/other/image1.png", false},
	}
	for _, tt := range tests {
		if _, got := m.Lookup(tt.entry); got != tt.want {
			t.Errorf("Lookup(%q) = %v, want %v", tt.entry, got, tt.want)
		}
	}

	want := []string{
		"word/media/image1.png",
		"word/media/image2.JPEG",
		"word/media/image3.emf",
		"word/media/image4.jpg",
	}
	if diff := cmp.Diff(want, m.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}

	m.Remove("image1.png")
	if _, ok := m.Lookup("word/media/image1.png"); ok {
		t.Error("removed image should not be replaced")
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
}

func TestMediaMapCustomExtensions(t *testing.T) {
	m := NewMediaMap("word/media", []string{"EMF", ".svg"})
	m.Add("image3.emf", BytesSource("", nil))

	if !m.Accepts("word/media/image3.emf") {
		t.Error("emf should be accepted")
	}
	if m.Accepts("word/media/image1.png") {
		t.Error("png should not be accepted with custom extensions")
	}
}

func TestNilMediaMap(t *testing.T) {
	var m *MediaMap
	if _, ok := m.Lookup("word/media/image1.png"); ok {
		t.Error("nil map should replace nothing")
	}
	if m.Len() != 0 || m.Entries() != nil {
		t.Error("nil map should be empty")
	}
}

func TestMediaSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logo.png")
	if err := os.WriteFile(path, []byte("file-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	dataURI, err := DataURISource("data:image/png;base64,aGVsbG8=")
	if err != nil {
		t.Fatalf("DataURISource() error = %v", err)
	}

	tests := []struct {
		name string
		src  MediaSource
		want string
	}{
		{"file", FileSource(path), "file-bytes"},
		{"bytes", BytesSource("mem", []byte("mem-bytes")), "mem-bytes"},
		{"data uri", dataURI, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := tt.src.Open()
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer rc.Close()
			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("read %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDataURI(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		wantMime string
		wantErr  bool
	}{
		{"png", "data:image/png;base64,aGVsbG8=", "image/png", false},
		{"jpeg", "data:image/jpeg;base64,aGVsbG8=", "image/jpeg", false},
		{"empty", "", "", true},
		{"not a data uri", "http://example.com/a.png", "", true},
		{"no comma", "data:image/png;base64", "", true},
		{"no data", "data:image/png;base64,", "", true},
		{"not base64", "data:image/png,hello", "", true},
		{"unsupported type", "data:image/tiff;base64,aGVsbG8=", "", true},
		{"bad base64", "data:image/png;base64,!!!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, _, err := parseDataURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDataURI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if mime != tt.wantMime {
				t.Errorf("parseDataURI() mime = %q, want %q", mime, tt.wantMime)
			}
		})
	}
}

func TestReadMediaSourceError(t *testing.T) {
	_, err := readMediaSource("word/media/image1.png", FileSource(filepath.Join(t.TempDir(), "missing.png")))
	if !IsMediaSourceError(err) {
		t.Fatalf("expected MediaSourceError, got %v", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected the not-exist cause to be kept, got %v", err)
	}
}
