// SPDX-License-Identifier: MPL-2.0

package upload

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

// ErrDuplicateName is returned when two files in one archive share a base name.
var ErrDuplicateName = errors.New("duplicate file name in archive")

// WriteArchive writes a deflate zip of paths to w. Entries are stored under
// their base names, in the given order.
func WriteArchive(w io.Writer, paths []string) error {
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s (%s and %s)", ErrDuplicateName, name, prev, p)
		}
		seen[name] = p
	}

	zw := zip.NewWriter(w)
	for _, p := range paths {
		if err := addFile(zw, p); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("zip header for %s: %w", path, err)
	}
	hdr.Name = filepath.Base(path)
	hdr.Method = zip.Deflate
	if hdr.Modified.IsZero() {
		hdr.Modified = time.Now()
	}

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	return nil
}
