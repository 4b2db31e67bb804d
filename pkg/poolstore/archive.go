package poolstore

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Export writes function hash h's entire on-disk directory (object.json and
// every language's mapping files) as a zstd-compressed tar stream to w.
// This is a pool-maintenance convenience (SPEC_FULL.md §11 domain stack),
// not part of the core read/write path: it lets one object be moved between
// pools without walking the shard layout by hand. Grounded on the streaming
// zstd wrapper in the teacher's pkg/remote/compress.go.
func (s *Store) Export(h string, w io.Writer) error {
	fd, err := s.functionDir(h)
	if err != nil {
		return err
	}
	if _, err := os.Stat(fd); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: function %s", ErrNotFound, h)
		}
		return err
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("poolstore: create zstd writer: %w", err)
	}
	tw := tar.NewWriter(enc)

	walkErr := filepath.Walk(fd, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(fd, path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if rel == "." {
				return nil
			}
			hdr, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return err
			}
			hdr.Name = rel + "/"
			return tw.WriteHeader(hdr)
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if walkErr != nil {
		tw.Close()
		enc.Close()
		return fmt.Errorf("poolstore: export %s: %w", h, walkErr)
	}

	if err := tw.Close(); err != nil {
		enc.Close()
		return fmt.Errorf("poolstore: close tar writer: %w", err)
	}
	return enc.Close()
}

// Import reads a zstd-compressed tar stream produced by Export and writes
// its contents under function hash h's directory, creating parent
// directories as needed. Existing files are left untouched: a function
// object is immutable once created, and mapping files are content-addressed,
// so Import is always safe to re-run.
func (s *Store) Import(h string, r io.Reader) error {
	fd, err := s.functionDir(h)
	if err != nil {
		return err
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("poolstore: create zstd reader: %w", err)
	}
	defer dec.Close()

	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("poolstore: import %s: %w", h, err)
		}

		dest := filepath.Join(fd, hdr.Name)
		if hdr.Typeflag == tar.TypeDir {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("poolstore: mkdir %s: %w", dest, err)
			}
			continue
		}

		if _, err := os.Stat(dest); err == nil {
			continue // already present; content-addressed files never change.
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("poolstore: mkdir %s: %w", filepath.Dir(dest), err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return fmt.Errorf("poolstore: read entry %s: %w", hdr.Name, err)
		}
		if err := s.atomicWriteFile(filepath.Dir(dest), filepath.Base(dest), data); err != nil {
			return err
		}
	}
	return nil
}
