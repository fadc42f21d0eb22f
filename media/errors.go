// Package media fetches a video (remote link or local file) and turns it into
// audio: a WAV file for speech recognition and float PCM for analysis.
package media

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrNotFound          = fmt.Errorf("%w: not found", ErrSourceUnavailable)
	ErrTooLong           = fmt.Errorf("%w: too long", ErrSourceUnavailable)
	ErrUnsupported       = fmt.Errorf("%w: unsupported source", ErrSourceUnavailable)

	ErrDecode            = errors.New("decode failed")
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported format", ErrDecode)
	ErrCorrupt           = fmt.Errorf("%w: corrupt media", ErrDecode)
)

// classifyDecode maps ffmpeg/ffprobe stderr to the decode taxonomy.
func classifyDecode(stderr string) error {
	s := strings.ToLower(stderr)
	switch {
	case strings.Contains(s, "no such file"):
		return ErrNotFound
	case strings.Contains(s, "invalid data found"),
		strings.Contains(s, "moov atom not found"),
		strings.Contains(s, "error while decoding"),
		strings.Contains(s, "truncated"):
		return ErrCorrupt
	case strings.Contains(s, "does not contain any stream"),
		strings.Contains(s, "matches no streams"),
		strings.Contains(s, "unknown format"),
		strings.Contains(s, "decoder not found"),
		strings.Contains(s, "not supported"):
		return ErrUnsupportedFormat
	}
	return ErrDecode
}

// classifySource maps yt-dlp stderr to the source taxonomy.
func classifySource(stderr string) error {
	s := strings.ToLower(stderr)
	switch {
	case strings.Contains(s, "unsupported url"):
		return ErrUnsupported
	case strings.Contains(s, "404"),
		strings.Contains(s, "not found"),
		strings.Contains(s, "video unavailable"),
		strings.Contains(s, "private video"),
		strings.Contains(s, "has been removed"):
		return ErrNotFound
	}
	return ErrSourceUnavailable
}
