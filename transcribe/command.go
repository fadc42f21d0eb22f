package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/accent-pipeline/logging"
)

// Command runs a local recognizer binary (whisper.cpp's whisper-cli by
// default) and reads the transcript from its stdout. The placeholders
// {audio} and {offset_ms} in args are filled per call.
type Command struct {
	path string
	args []string
	log  logrus.FieldLogger
}

func NewCommand(path string, args []string, log logrus.FieldLogger) *Command {
	return &Command{path: path, args: args, log: logging.WithComponent(log, "transcribe.command")}
}

var timestampRe = regexp.MustCompile(`^\[[0-9:.]+ --> [0-9:.]+\]\s*`)

func (c *Command) Recognize(ctx context.Context, audioPath string, cal Calibration) (string, error) {
	bin, err := exec.LookPath(c.path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	offset := strconv.FormatInt(cal.Offset.Milliseconds(), 10)
	args := make([]string, len(c.args))
	for i, a := range c.args {
		a = strings.ReplaceAll(a, "{audio}", audioPath)
		args[i] = strings.ReplaceAll(a, "{offset_ms}", offset)
	}
	c.log.WithField("args", args).Debug("running local recognizer")

	out, err := exec.CommandContext(ctx, bin, args...).Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return "", fmt.Errorf("%w: %s: %s", ErrUnavailable, c.path, strings.TrimSpace(string(ee.Stderr)))
		}
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	text := cleanOutput(string(out))
	if text == "" {
		return "", ErrNoHypothesis
	}
	return text, nil
}

// cleanOutput joins the recognizer's lines, dropping timestamps and
// bracketed non-speech tags such as [BLANK_AUDIO].
func cleanOutput(s string) string {
	var parts []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(timestampRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if line == "" || (strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]")) {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}
