package beepaudio

import (
	"bytes"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/tejashwikalptaru/tunescope/internal/domain"
)

// sniffFormat identifies the container from the payload's magic bytes.
// It falls back to the declared format when the header is not recognized.
func sniffFormat(payload []byte, declared string) string {
	switch {
	case len(payload) >= 12 && string(payload[:4]) == "RIFF" && string(payload[8:12]) == "WAVE":
		return "wav"
	case len(payload) >= 4 && string(payload[:4]) == "fLaC":
		return "flac"
	case len(payload) >= 4 && string(payload[:4]) == "OggS":
		return "ogg"
	case len(payload) >= 3 && string(payload[:3]) == "ID3":
		return "mp3"
	case len(payload) >= 2 && payload[0] == 0xFF && payload[1]&0xE0 == 0xE0:
		return "mp3"
	}

	if declared == "oga" {
		return "ogg"
	}
	return declared
}

// decode opens a streamer over the in-memory payload.
func decode(data *domain.TrackData) (beep.StreamSeekCloser, beep.Format, error) {
	r := bytes.NewReader(data.Payload)

	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch sniffFormat(data.Payload, data.Format) {
	case "mp3":
		s, format, err = mp3.Decode(io.NopCloser(r))
	case "wav":
		s, format, err = wav.Decode(r)
	case "flac":
		s, format, err = flac.Decode(r)
	case "ogg":
		s, format, err = vorbis.Decode(io.NopCloser(r))
	default:
		return nil, beep.Format{}, domain.NewMediaError("decode", data.Name, "unrecognized audio format", domain.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, beep.Format{}, domain.NewMediaError("decode", data.Name, "decode failed", err)
	}
	return s, format, nil
}
