// Package romloader loads a cartridge image from disk, transparently
// decompressing .zip, .gz and .7z archives so a host can point at
// whatever file a user picked without caring how it is packaged. This is
// a host-adjacent convenience, not part of the core's loadCartridge,
// which only ever accepts raw bytes.
package romloader

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bodgit/sevenzip"
)

// Load reads filename and returns the decompressed ROM image. Plain .gb
// and .gbc files are returned unchanged; .gz, .zip and .7z archives are
// decompressed and the first entry is returned.
func Load(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("romloader: %w", err)
	}

	switch filepath.Ext(filename) {
	case ".gb", ".gbc":
		return data, nil
	case ".gz":
		f, err := os.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("romloader: %w", err)
		}
		defer f.Close()
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("romloader: gzip: %w", err)
		}
		defer gz.Close()
		out, err := io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("romloader: gzip: %w", err)
		}
		return out, nil
	case ".zip":
		zr, err := zip.NewReader(newReaderAt(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("romloader: zip: %w", err)
		}
		entry, err := firstEntry(zr)
		if err != nil {
			return nil, err
		}
		return entry, nil
	case ".7z":
		zr, err := sevenzip.NewReader(newReaderAt(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("romloader: 7z: %w", err)
		}
		return firstSevenZipEntry(zr)
	default:
		return data, nil
	}
}

func firstEntry(zr *zip.Reader) ([]byte, error) {
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("romloader: zip: archive is empty")
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("romloader: zip: %w", err)
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("romloader: zip: %w", err)
	}
	return out, nil
}

func firstSevenZipEntry(zr *sevenzip.Reader) ([]byte, error) {
	if len(zr.File) == 0 {
		return nil, fmt.Errorf("romloader: 7z: archive is empty")
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("romloader: 7z: %w", err)
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("romloader: 7z: %w", err)
	}
	return out, nil
}

// readerAt adapts an in-memory byte slice to io.ReaderAt, since both
// zip.NewReader and sevenzip.NewReader require random access.
type readerAt struct {
	data []byte
}

func newReaderAt(data []byte) *readerAt {
	return &readerAt{data: data}
}

func (r *readerAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
