package artifact

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultArchivePath names a zip next to the capture directory.
func (s *Store) DefaultArchivePath() string {
	name := "captures_" + s.now().Format("20060102_150405") + ".zip"
	return filepath.Join(filepath.Dir(filepath.Clean(s.cfg.Dir)), name)
}

// Archive zips every current artifact into dest and returns its path.
// The zip is written to dest.tmp first and renamed on success.
func (s *Store) Archive(dest string) (string, error) {
	if dest == "" {
		dest = s.DefaultArchivePath()
	}

	entries, err := s.list()
	if err != nil {
		return "", err
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // dest comes from operator input
	if err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}

	zw := zip.NewWriter(f)
	for _, e := range entries {
		if err := addToZip(zw, e); err != nil {
			_ = zw.Close()
			_ = f.Close()
			_ = os.Remove(tmp)
			return "", err
		}
	}

	if err := zw.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalizing archive: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("renaming archive: %w", err)
	}

	s.logger.Info("created archive",
		slog.String("path", dest),
		slog.Int("files", len(entries)))
	return dest, nil
}

func addToZip(zw *zip.Writer, e entry) error {
	src, err := os.Open(e.path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", e.path, err)
	}
	defer src.Close() //nolint:errcheck

	hdr := &zip.FileHeader{
		Name:     filepath.Base(e.path),
		Method:   zip.Store, // JPEG data does not compress
		Modified: e.modTime,
	}
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding %s: %w", hdr.Name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("writing %s: %w", hdr.Name, err)
	}
	return nil
}
