package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/accent-pipeline/logging"
)

// Executor runs ffmpeg and ffprobe.
type Executor struct {
	ffmpegPath  string
	ffprobePath string
	log         logrus.FieldLogger
}

// NewExecutor resolves both binaries on PATH (or as given).
func NewExecutor(ffmpegPath, ffprobePath string, log logrus.FieldLogger) (*Executor, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	ff, err := exec.LookPath(ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	fp, err := exec.LookPath(ffprobePath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	return &Executor{
		ffmpegPath:  ff,
		ffprobePath: fp,
		log:         logging.WithComponent(log, "ffmpeg"),
	}, nil
}

// run executes ffmpeg with args, streaming stdout to out when non-nil. A
// failed run is classified from stderr.
func (e *Executor) run(ctx context.Context, out io.Writer, args ...string) error {
	args = append([]string{"-y", "-hide_banner", "-nostdin", "-loglevel", "error"}, args...)
	e.log.WithField("args", strings.Join(args, " ")).Debug("executing ffmpeg")

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if out != nil {
		cmd.Stdout = out
	}
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		return fmt.Errorf("%w: ffmpeg: %v: %s", classifyDecode(msg), err, msg)
	}
	return nil
}

// AudioFormat describes the extracted audio track.
type AudioFormat struct {
	Codec       string
	SampleRate  int
	Channels    int
	MaxDuration int // seconds; 0 keeps everything
}

func (f AudioFormat) args() []string {
	args := []string{"-vn"}
	if f.Codec != "" {
		args = append(args, "-acodec", f.Codec)
	}
	if f.SampleRate > 0 {
		args = append(args, "-ar", fmt.Sprint(f.SampleRate))
	}
	if f.Channels > 0 {
		args = append(args, "-ac", fmt.Sprint(f.Channels))
	}
	if f.MaxDuration > 0 {
		args = append(args, "-t", fmt.Sprint(f.MaxDuration))
	}
	return args
}

// ExtractAudio writes the input's audio track to output in the given format.
func (e *Executor) ExtractAudio(ctx context.Context, input, output string, format AudioFormat) error {
	e.log.WithFields(logrus.Fields{
		"input":       input,
		"output":      output,
		"codec":       format.Codec,
		"sample_rate": format.SampleRate,
	}).Info("extracting audio")

	args := append([]string{"-i", input}, format.args()...)
	args = append(args, output)
	return e.run(ctx, nil, args...)
}
