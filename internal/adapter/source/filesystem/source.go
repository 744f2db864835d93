// Package filesystem provides a track source that scans a local folder.
package filesystem

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tejashwikalptaru/tunescope/internal/adapter/source"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// Source lists the supported audio files below a root folder.
// Payloads are read when a track is loaded, not while scanning.
//
// Thread-safety: This implementation is thread-safe.
type Source struct {
	logger *slog.Logger

	mu   sync.RWMutex
	root string
}

// New creates a source rooted at root, which may be empty until SetRoot.
func New(root string, logger *slog.Logger) *Source {
	return &Source{
		root:   root,
		logger: logger.With(slog.String("adapter", "filesystem")),
	}
}

// Root returns the library folder.
func (s *Source) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// SetRoot changes the library folder for the next scan.
func (s *Source) SetRoot(root string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
}

// LoadLibrary walks the root recursively and returns one handle per supported
// file, ordered by path. Unreadable subdirectories are skipped.
func (s *Source) LoadLibrary(ctx context.Context) ([]*domain.TrackHandle, error) {
	root := s.Root()
	if root == "" {
		return nil, domain.NewValidationError("library.path", root, "no library folder chosen")
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, domain.NewServiceError("FilesystemSource", "LoadLibrary", "cannot open library folder", err)
	}
	if !info.IsDir() {
		return nil, domain.NewValidationError("library.path", root, "not a directory")
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				s.logger.Warn("skipping unreadable folder", slog.String("path", path), slog.Any("error", err))
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && domain.IsSupportedFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, domain.NewServiceError("FilesystemSource", "LoadLibrary", "scan failed", err)
	}

	sort.Strings(files)

	tracks := make([]*domain.TrackHandle, 0, len(files))
	for _, path := range files {
		meta := readTags(path)
		tracks = append(tracks, domain.NewTrackHandle(source.DisplayName(path, meta), path, materializer(path, meta)))
	}

	s.logger.Info("library scanned", slog.String("root", root), slog.Int("tracks", len(tracks)))
	return tracks, nil
}

func readTags(path string) *domain.TrackMetadata {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return source.ReadMetadata(f)
}

func materializer(path string, meta *domain.TrackMetadata) domain.MaterializeFunc {
	name := source.DisplayName(path, meta)
	return func(ctx context.Context) (*domain.TrackData, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		payload, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.NewServiceError("FilesystemSource", "Materialize", "read failed", err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return source.Materialized(name, path, payload, meta), nil
	}
}

var _ ports.RootedSource = (*Source)(nil)
