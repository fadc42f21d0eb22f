package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Info is what ffprobe reports about a media file.
type Info struct {
	Path       string
	FormatName string
	Duration   time.Duration
	HasVideo   bool
	Width      int
	Height     int
	HasAudio   bool
	AudioCodec string
	SampleRate int
	Channels   int
}

type probeResult struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// Probe reads container and stream metadata. A file without an audio stream
// is ErrUnsupportedFormat.
func (e *Executor) Probe(ctx context.Context, path string) (*Info, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		return nil, fmt.Errorf("%w: ffprobe: %s", classifyDecode(msg), msg)
	}

	info, err := parseProbe(out)
	if err != nil {
		return nil, err
	}
	info.Path = path
	if !info.HasAudio {
		return info, fmt.Errorf("%w: %s has no audio stream", ErrUnsupportedFormat, path)
	}
	return info, nil
}

func parseProbe(data []byte) (*Info, error) {
	var p probeResult
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: parse ffprobe output: %v", ErrCorrupt, err)
	}
	info := &Info{FormatName: p.Format.FormatName}
	if d, err := strconv.ParseFloat(p.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(d * float64(time.Second))
	}
	for _, s := range p.Streams {
		switch s.CodecType {
		case "video":
			if !info.HasVideo {
				info.HasVideo = true
				info.Width, info.Height = s.Width, s.Height
			}
		case "audio":
			if !info.HasAudio {
				info.HasAudio = true
				info.AudioCodec = s.CodecName
				info.Channels = s.Channels
				info.SampleRate, _ = strconv.Atoi(s.SampleRate)
			}
		}
	}
	return info, nil
}
