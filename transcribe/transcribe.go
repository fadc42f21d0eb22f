// Package transcribe turns an audio file into text on a best-effort basis:
// a primary network recognizer, a local fallback, and an empty string when
// neither produces anything.
package transcribe

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/accent-pipeline/logging"
)

var (
	// ErrUnavailable means the recognizer could not be reached or run.
	ErrUnavailable = errors.New("transcription unavailable")
	// ErrNoHypothesis means the recognizer ran but heard nothing it could
	// commit to. Only this error moves the chain on to the fallback.
	ErrNoHypothesis = errors.New("no confident hypothesis")
)

// Calibration describes the ambient-noise lead-in measured before
// recognition. Recognizers skip Offset and may use NoiseFloor as an energy
// threshold.
type Calibration struct {
	Offset     time.Duration
	NoiseFloor float64 // RMS of the lead-in
}

// Calibrate measures the first window of the waveform. The lead-in never
// covers the whole clip: at most half of it is used.
func Calibrate(samples []float64, sampleRate int, window time.Duration) Calibration {
	if sampleRate <= 0 || len(samples) == 0 || window <= 0 {
		return Calibration{}
	}
	n := int(window.Seconds() * float64(sampleRate))
	if n > len(samples)/2 {
		n = len(samples) / 2
	}
	if n == 0 {
		return Calibration{}
	}
	var acc float64
	for _, x := range samples[:n] {
		acc += x * x
	}
	return Calibration{
		Offset:     time.Duration(float64(n) / float64(sampleRate) * float64(time.Second)),
		NoiseFloor: math.Sqrt(acc / float64(n)),
	}
}

// Recognizer converts one audio file to text.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath string, cal Calibration) (string, error)
}

// Chain runs the primary recognizer and falls back to the secondary one
// when the primary has no hypothesis. Either may be nil.
type Chain struct {
	primary  Recognizer
	fallback Recognizer
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewChain(primary, fallback Recognizer, timeout time.Duration, log logrus.FieldLogger) *Chain {
	return &Chain{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		log:      logging.WithComponent(log, "transcribe"),
	}
}

// Transcribe never fails: every error path ends in "".
func (c *Chain) Transcribe(ctx context.Context, audioPath string, cal Calibration) string {
	if c == nil {
		return ""
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	log := c.log.WithField("audio", audioPath)

	if c.primary != nil {
		text, err := c.primary.Recognize(ctx, audioPath, cal)
		switch {
		case err == nil:
			log.WithField("recognizer", "primary").Debug("transcribed")
			return text
		case errors.Is(err, ErrNoHypothesis):
			log.WithError(err).Info("primary recognizer had no hypothesis; trying fallback")
		default:
			log.WithError(err).Warn("primary recognizer unavailable")
			return ""
		}
	}

	if c.fallback == nil {
		return ""
	}
	text, err := c.fallback.Recognize(ctx, audioPath, cal)
	if err != nil {
		log.WithError(err).Warn("fallback recognizer failed")
		return ""
	}
	log.WithField("recognizer", "fallback").Debug("transcribed")
	return text
}
