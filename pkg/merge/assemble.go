package merge

import (
	"archive/zip"
	"io"
)

// Assemble writes a new container to w with the entries of pkg in their
// original order. Entries named in parts are written with the given text,
// image entries with an active replacement in media get the replacement's
// bytes, and every other entry is copied verbatim without recompression.
//
// Any failure aborts the whole operation. Bytes already written to w are
// not a valid package in that case.
func Assemble(w io.Writer, pkg *Package, parts map[string]string, media *MediaMap) error {
	zw := zip.NewWriter(w)
	if comment := pkg.reader.Comment; comment != "" {
		if err := zw.SetComment(comment); err != nil {
			return NewPackageError("write", "", err)
		}
	}

	for _, file := range pkg.files {
		if content, ok := parts[file.Name]; ok {
			if err := writeEntry(zw, file, []byte(content)); err != nil {
				return err
			}
			continue
		}

		if src, ok := media.Lookup(file.Name); ok {
			data, err := readMediaSource(file.Name, src)
			if err != nil {
				return err
			}
			logger := GetLogger()
			if logger.IsDebugMode() {
				logger.WithFields(Fields{
					"entry":  file.Name,
					"source": src.String(),
					"bytes":  len(data),
				}).Debug("Replacing media entry")
			}
			if err := writeEntry(zw, file, data); err != nil {
				return err
			}
			continue
		}

		if err := zw.Copy(file); err != nil {
			return NewPackageError("copy", file.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return NewPackageError("finalize", "", err)
	}
	return nil
}

// writeEntry writes data under the name, method, timestamps and attributes
// of the source entry
func writeEntry(zw *zip.Writer, src *zip.File, data []byte) error {
	header := src.FileHeader
	header.CRC32 = 0
	header.CompressedSize = 0
	header.UncompressedSize = 0
	header.CompressedSize64 = 0
	header.UncompressedSize64 = 0
	header.Extra = nil

	fw, err := zw.CreateHeader(&header)
	if err != nil {
		return NewPackageError("create", src.Name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return NewPackageError("write", src.Name, err)
	}
	return nil
}
