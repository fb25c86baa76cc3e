package merge

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
)

// DefaultMediaDir is where WordprocessingML packages keep embedded images
const DefaultMediaDir = "word/media/"

// DefaultImageExtensions are the entry extensions eligible for replacement
var DefaultImageExtensions = []string{".jpeg", ".jpg", ".png", ".gif", ".bmp"}

// MediaSource supplies the bytes of a replacement image
type MediaSource interface {
	Open() (io.ReadCloser, error)
	// String names the source in errors and logs
	String() string
}

type fileSource string

// FileSource reads a replacement image from the file system at render time
func FileSource(path string) MediaSource {
	return fileSource(path)
}

func (f fileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

func (f fileSource) String() string {
	return fmt.Sprintf("file %q", string(f))
}

type bytesSource struct {
	name string
	data []byte
}

// BytesSource serves a replacement image from memory
func BytesSource(name string, data []byte) MediaSource {
	return &bytesSource{name: name, data: data}
}

func (b *bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (b *bytesSource) String() string {
	if b.name == "" {
		return fmt.Sprintf("%d bytes in memory", len(b.data))
	}
	return b.name
}

// DataURISource decodes a base64 data URI such as
// "data:image/png;base64,iVBORw0..." into a replacement image
func DataURISource(uri string) (MediaSource, error) {
	mimeType, data, err := parseDataURI(uri)
	if err != nil {
		return nil, err
	}
	return &bytesSource{name: "data URI (" + mimeType + ")", data: data}, nil
}

// parseDataURI parses a data URI and returns the MIME type and decoded data
func parseDataURI(dataURI string) (string, []byte, error) {
	if dataURI == "" {
		return "", nil, fmt.Errorf("empty data URI")
	}

	// Data URI format: data:[<mediatype>][;base64],<data>
	if !strings.HasPrefix(dataURI, "data:") {
		return "", nil, fmt.Errorf("invalid data URI format")
	}
	dataURI = dataURI[5:]

	commaIndex := strings.Index(dataURI, ",")
	if commaIndex == -1 {
		return "", nil, fmt.Errorf("invalid data URI format")
	}

	metadata := dataURI[:commaIndex]
	dataStr := dataURI[commaIndex+1:]
	if dataStr == "" {
		return "", nil, fmt.Errorf("no image data")
	}

	if !strings.HasSuffix(metadata, ";base64") {
		return "", nil, fmt.Errorf("missing base64 marker")
	}
	mimeType := strings.TrimSuffix(metadata, ";base64")

	switch mimeType {
	case "image/png", "image/jpeg", "image/bmp", "image/gif":
	default:
		return "", nil, fmt.Errorf("unsupported image type: %s", mimeType)
	}

	data, err := base64.StdEncoding.DecodeString(dataStr)
	if err != nil {
		return "", nil, fmt.Errorf("invalid base64 data: %w", err)
	}
	return mimeType, data, nil
}

// MediaMap associates image entries of a package with replacement sources.
// An entry is replaced only when it is registered, lives in the media
// directory, and has an accepted extension; anything else passes through
// unchanged, even if registered.
type MediaMap struct {
	dir        string
	extensions map[string]bool
	sources    map[string]MediaSource
}

// NewMediaMap creates an empty map for the given media directory and
// accepted extensions. Empty arguments select the defaults.
func NewMediaMap(dir string, extensions []string) *MediaMap {
	if dir == "" {
		dir = DefaultMediaDir
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	if len(extensions) == 0 {
		extensions = DefaultImageExtensions
	}

	m := &MediaMap{
		dir:        dir,
		extensions: make(map[string]bool, len(extensions)),
		sources:    make(map[string]MediaSource),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		m.extensions[ext] = true
	}
	return m
}

// EntryPath maps an image name to its package entry: "image1.jpeg" becomes
// "word/media/image1.jpeg". Names already inside the media directory are
// kept.
func (m *MediaMap) EntryPath(name string) string {
	name = strings.TrimPrefix(name, "/")
	if strings.HasPrefix(name, m.dir) {
		return name
	}
	return m.dir + name
}

// Add registers src as the replacement for the named image
func (m *MediaMap) Add(name string, src MediaSource) {
	m.sources[m.EntryPath(name)] = src
}

// Remove unregisters the named image
func (m *MediaMap) Remove(name string) {
	delete(m.sources, m.EntryPath(name))
}

// Accepts reports whether entry has an image extension eligible for
// replacement
func (m *MediaMap) Accepts(entry string) bool {
	return strings.HasPrefix(entry, m.dir) && m.extensions[strings.ToLower(path.Ext(entry))]
}

// Lookup returns the active replacement for a package entry
func (m *MediaMap) Lookup(entry string) (MediaSource, bool) {
	if m == nil {
		return nil, false
	}
	src, ok := m.sources[entry]
	if !ok || !m.Accepts(entry) {
		return nil, false
	}
	return src, true
}

// Entries returns the registered entry paths in sorted order
func (m *MediaMap) Entries() []string {
	if m == nil {
		return nil
	}
	entries := make([]string, 0, len(m.sources))
	for entry := range m.sources {
		entries = append(entries, entry)
	}
	sort.Strings(entries)
	return entries
}

// Len returns the number of registered replacements
func (m *MediaMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.sources)
}

// readMediaSource loads the whole replacement
func readMediaSource(entry string, src MediaSource) ([]byte, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, &MediaSourceError{Entry: entry, Source: src.String(), Cause: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &MediaSourceError{Entry: entry, Source: src.String(), Cause: err}
	}
	return data, nil
}
