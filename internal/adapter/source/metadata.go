// Package source holds helpers shared by the track source adapters.
package source

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
)

// ReadMetadata extracts tag information from an audio file.
// It returns nil when the file carries no readable tags.
func ReadMetadata(r io.ReadSeeker) *domain.TrackMetadata {
	m, err := tag.ReadFrom(r)
	if err != nil || m == nil {
		return nil
	}

	meta := &domain.TrackMetadata{
		Title:  strings.TrimSpace(m.Title()),
		Artist: strings.TrimSpace(m.Artist()),
		Album:  strings.TrimSpace(m.Album()),
		Genre:  strings.TrimSpace(m.Genre()),
		Year:   m.Year(),
	}
	if *meta == (domain.TrackMetadata{}) {
		return nil
	}
	return meta
}

// DisplayName returns the tag-derived name, or the base file name when the
// track is untagged.
func DisplayName(path string, meta *domain.TrackMetadata) string {
	if name := meta.DisplayName(); name != "" {
		return name
	}
	return filepath.Base(path)
}

// Materialized builds the TrackData for a payload read from path.
func Materialized(name, path string, payload []byte, meta *domain.TrackMetadata) *domain.TrackData {
	return &domain.TrackData{
		Name:     name,
		Format:   domain.FormatFromPath(path),
		Payload:  payload,
		Metadata: meta,
	}
}
