package merge

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"unicode/utf8"
)

// MainDocumentPart is the body of a WordprocessingML package
const MainDocumentPart = "word/document.xml"

var documentPartPattern = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)

// IsDocumentPart reports whether an entry holds document text that
// placeholders and loops are resolved in: the main body, headers and footers.
func IsDocumentPart(name string) bool {
	return documentPartPattern.MatchString(name)
}

// Package is an opened template container. The entry list and the text of
// every document part are read once when the package is opened; the package
// is not modified afterwards and may be shared between templates.
type Package struct {
	reader *zip.Reader
	files  []*zip.File
	parts  map[string]string
	names  []string
}

// OpenPackage reads a package from r
func OpenPackage(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, NewPackageError("open", "", fmt.Errorf("failed to read zip file: %w", err))
	}

	pkg := &Package{
		reader: zr,
		files:  zr.File,
		parts:  make(map[string]string),
	}

	for _, file := range zr.File {
		if !IsDocumentPart(file.Name) {
			continue
		}
		content, err := readEntry(file)
		if err != nil {
			return nil, NewPackageError("read", file.Name, err)
		}
		if !utf8.Valid(content) {
			return nil, &PartEncodingError{Part: file.Name}
		}
		pkg.parts[file.Name] = string(content)
		pkg.names = append(pkg.names, file.Name)
	}

	// Check if this is a valid DOCX file by looking for required parts
	if _, ok := pkg.parts[MainDocumentPart]; !ok {
		return nil, NewPackageError("open", MainDocumentPart, fmt.Errorf("not a valid DOCX file: missing %s", MainDocumentPart))
	}

	return pkg, nil
}

// ReadPackage reads a whole package from a stream
func ReadPackage(r io.Reader) (*Package, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, NewPackageError("read", "", err)
	}
	return OpenPackage(bytes.NewReader(content), int64(len(content)))
}

// OpenPackageFile reads a package from a file path
func OpenPackageFile(path string) (*Package, error) {
	// The zip reader needs random access for the lifetime of the package,
	// so the file is read into memory instead of being held open
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewPackageError("open", path, err)
	}
	return OpenPackage(bytes.NewReader(content), int64(len(content)))
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	return content, nil
}

// Entries returns the entry names in container order
func (p *Package) Entries() []string {
	names := make([]string, len(p.files))
	for i, f := range p.files {
		names[i] = f.Name
	}
	return names
}

// PartNames returns the document parts in container order
func (p *Package) PartNames() []string {
	return append([]string(nil), p.names...)
}

// Part returns the XML text of a document part
func (p *Package) Part(name string) (string, bool) {
	content, ok := p.parts[name]
	return content, ok
}

// Entry returns the uncompressed bytes of any entry
func (p *Package) Entry(name string) ([]byte, error) {
	for _, f := range p.files {
		if f.Name == name {
			content, err := readEntry(f)
			if err != nil {
				return nil, NewPackageError("read", name, err)
			}
			return content, nil
		}
	}
	return nil, NewPackageError("read", name, fmt.Errorf("entry not found"))
}
