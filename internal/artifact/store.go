// Package artifact owns the capture directory: it names new captures,
// verifies them after the device reports success, and enforces retention
// by age. Every call re-scans the directory; nothing is cached.
package artifact

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
)

// Config is the minimal runtime config the store needs.
type Config struct {
	Dir       string
	Pattern   string // strftime pattern, e.g. %Y%m%d_%H%M%S
	Extension string // without leading dot
}

// Stats summarizes the artifacts currently on disk.
type Stats struct {
	Count          int
	TotalSizeBytes int64
	Oldest         time.Time // zero when Count == 0
	Newest         time.Time // zero when Count == 0
}

// Empty reports whether no artifacts were found.
func (s Stats) Empty() bool { return s.Count == 0 }

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("count", s.Count),
		slog.Int64("total_size_bytes", s.TotalSizeBytes),
		slog.String("total_size", humanize.Bytes(uint64(s.TotalSizeBytes))), //nolint:gosec // sizes are non-negative
	}
	if !s.Empty() {
		attrs = append(attrs,
			slog.Time("oldest", s.Oldest),
			slog.Time("newest", s.Newest))
	}
	return slog.GroupValue(attrs...)
}

// Store manages captured images in a single directory.
type Store struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	lastBase string // base name handed out by the previous GenerateFilename
	seq      int
}

// New creates a store and ensures the capture directory exists.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, errors.New("artifact: capture dir required")
	}
	if cfg.Pattern == "" {
		return nil, errors.New("artifact: filename pattern required")
	}
	cfg.Extension = strings.TrimPrefix(cfg.Extension, ".")
	if cfg.Extension == "" {
		cfg.Extension = "jpg"
	}

	s := &Store{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "artifact")),
		now:    time.Now,
	}
	if err := s.EnsureDir(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the capture directory.
func (s *Store) Dir() string { return s.cfg.Dir }

// EnsureDir creates the capture directory if it does not exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil { //nolint:gosec // capture dir is shared with consumers
		return fmt.Errorf("creating capture directory: %w", err)
	}
	s.logger.Debug("capture directory ready", slog.String("dir", s.cfg.Dir))
	return nil
}

// GenerateFilename returns a destination path built from the current time
// and the configured pattern. ext overrides the configured extension when
// non-empty.
//
// Two calls inside the same pattern resolution window, or a name that
// already exists on disk, get a monotonic _N suffix instead of overwriting.
func (s *Store) GenerateFilename(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = s.cfg.Extension
	}

	base := strftime.Format(s.cfg.Pattern, s.now())
	if base == s.lastBase {
		s.seq++
	} else {
		s.lastBase = base
		s.seq = 0
	}

	for {
		name := base
		if s.seq > 0 {
			name = fmt.Sprintf("%s_%d", base, s.seq)
		}
		path := filepath.Join(s.cfg.Dir, name+"."+ext)
		if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
			return path
		}
		s.seq++
	}
}

// Verify reports whether path exists and holds at least one byte.
func (s *Store) Verify(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Error("file not found", slog.String("path", path))
		return false
	}
	if info.Size() == 0 {
		s.logger.Error("file is empty", slog.String("path", path))
		return false
	}
	s.logger.Debug("file verified",
		slog.String("path", path),
		slog.Int64("size", info.Size()))
	return true
}

// Delete removes a single artifact. It returns false if the file did not
// exist or could not be removed.
func (s *Store) Delete(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		s.logger.Error("failed to delete capture",
			slog.String("path", path),
			slog.Any("error", err))
		return false
	}
	s.logger.Debug("deleted capture", slog.String("path", path))
	return true
}

// Sweep deletes every artifact whose modification time is older than
// now - maxAgeDays. It is a no-op when maxAgeDays <= 0. A failure to
// delete one file is logged and the sweep continues.
func (s *Store) Sweep(maxAgeDays int) int {
	if maxAgeDays <= 0 {
		return 0
	}

	entries, err := s.list()
	if err != nil {
		s.logger.Error("cleanup failed", slog.Any("error", err))
		return 0
	}

	cutoff := s.now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)
	deleted := 0

	for _, e := range entries {
		if !e.modTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(e.path); err != nil {
			s.logger.Warn("failed to remove old capture",
				slog.String("file", filepath.Base(e.path)),
				slog.Any("error", err))
			continue
		}
		deleted++
		s.logger.Debug("deleted old capture", slog.String("file", filepath.Base(e.path)))
	}

	if deleted > 0 {
		s.logger.Info("cleanup removed old captures",
			slog.Int("count", deleted),
			slog.Int("max_age_days", maxAgeDays))
	}
	return deleted
}

// Stats scans the capture directory.
func (s *Store) Stats() (Stats, error) {
	entries, err := s.list()
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	for _, e := range entries {
		st.Count++
		st.TotalSizeBytes += e.size
		if st.Oldest.IsZero() || e.modTime.Before(st.Oldest) {
			st.Oldest = e.modTime
		}
		if e.modTime.After(st.Newest) {
			st.Newest = e.modTime
		}
	}
	return st, nil
}

type entry struct {
	path    string
	size    int64
	modTime time.Time
}

// list returns the regular files in the capture directory carrying the
// configured extension.
func (s *Store) list() ([]entry, error) {
	dirEntries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading capture directory: %w", err)
	}

	suffix := "." + strings.ToLower(s.cfg.Extension)
	var out []entry
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || !strings.HasSuffix(strings.ToLower(de.Name()), suffix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		out = append(out, entry{
			path:    filepath.Join(s.cfg.Dir, de.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return out, nil
}
