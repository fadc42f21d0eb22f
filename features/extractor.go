// Package features turns a decoded mono waveform into a named feature vector:
// spectral shape, MFCCs, chroma, energy, zero-crossing rate, tempo, pitch
// statistics and an energy-based speech rate.
package features

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/maastricht-university/accent-pipeline/logging"
)

var (
	// ErrExtraction marks every feature extraction problem.
	ErrExtraction = errors.New("feature extraction failed")
	// ErrNoAudio means there was nothing to analyse at all.
	ErrNoAudio = fmt.Errorf("%w: no audio samples", ErrExtraction)
)

type Options struct {
	FrameLength int
	HopLength   int
	NMFCC       int
	NMels       int
}

func DefaultOptions() Options {
	return Options{FrameLength: 2048, HopLength: 512, NMFCC: 13, NMels: 128}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FrameLength <= 0 {
		o.FrameLength = d.FrameLength
	}
	if o.HopLength <= 0 {
		o.HopLength = d.HopLength
	}
	if o.NMFCC <= 0 {
		o.NMFCC = d.NMFCC
	}
	if o.NMels <= 0 {
		o.NMels = d.NMels
	}
	return o
}

type Extractor struct {
	opts Options
	log  logrus.FieldLogger
}

func NewExtractor(opts Options, log logrus.FieldLogger) *Extractor {
	return &Extractor{opts: opts.withDefaults(), log: logging.WithComponent(log, "features")}
}

func (e *Extractor) Options() Options { return e.opts }

// Extract always returns a fully populated vector. Stages that fail leave
// their entries at 0 and contribute to the returned error; ErrNoAudio is
// returned for an empty waveform or a non-positive sample rate.
func (e *Extractor) Extract(samples []float64, sampleRate int) (Vector, error) {
	v := make(Vector, 64)
	for _, n := range Names(e.opts.NMFCC) {
		v[n] = 0
	}
	if sampleRate <= 0 || len(samples) == 0 {
		if sampleRate > 0 {
			v[SampleRate] = float64(sampleRate)
		}
		return v, ErrNoAudio
	}

	duration := float64(len(samples)) / float64(sampleRate)
	v[Duration] = duration
	v[SampleRate] = float64(sampleRate)
	v[AudioLength] = float64(len(samples))

	var errs []error
	run := func(stage string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				errs = append(errs, fmt.Errorf("%w: %s: %v", ErrExtraction, stage, r))
				e.log.WithField("stage", stage).Warnf("stage failed: %v", r)
			}
		}()
		fn()
		e.log.WithField("stage", stage).Debug("stage done")
	}

	fl, hop := e.opts.FrameLength, e.opts.HopLength
	fr := frames(samples, fl, hop)

	var spec *spectrogram
	var power [][]float64
	run("stft", func() {
		spec = newSpectrogram(fr, fl, sampleRate)
		power = spec.power()
	})

	if spec != nil {
		run("spectral", func() {
			centroid := spectralCentroid(spec)
			setMeanStd(v, SpectralCentroidMean, SpectralCentroidStd, centroid)
			setMeanStd(v, BandwidthMean, BandwidthStd, spectralBandwidth(spec, centroid))
			setMeanStd(v, RolloffMean, RolloffStd, spectralRolloff(spec))
		})
		run("chroma", func() {
			var all []float64
			for _, row := range chroma(power, spec.freqs) {
				all = append(all, row...)
			}
			setMeanStd(v, ChromaMean, ChromaStd, all)
		})
		run("mfcc+tempo", func() {
			fb := melFilterbank(sampleRate, fl, e.opts.NMels)
			melDB := powerToDB(melSpectrogram(power, fb))
			for i, track := range mfcc(melDB, e.opts.NMFCC) {
				setMeanStd(v, MFCCMean(i), MFCCStd(i), track)
			}
			v[Tempo] = estimateTempo(onsetStrength(melDB), sampleRate, hop)
		})
		run("pitch", func() {
			p := voiced(pitchTrack(spec))
			if len(p) == 0 {
				return
			}
			mean, std := stat.PopMeanStdDev(p, nil)
			lo, hi := p[0], p[0]
			for _, x := range p {
				lo, hi = math.Min(lo, x), math.Max(hi, x)
			}
			v[PitchMean], v[PitchStd], v[PitchRange] = mean, std, hi-lo
		})
	}

	run("time-domain", func() {
		setMeanStd(v, ZCRMean, ZCRStd, zeroCrossingRate(fr))
		setMeanStd(v, RMSMean, RMSStd, rms(fr))
	})
	run("speech-rate", func() {
		if duration > 0 {
			v[SpeechRate] = float64(len(SpeechSegments(samples, fl, hop))) / duration
		}
	})
	run("quality", func() {
		v[AudioQuality] = Quality(samples, fl, hop).Score
	})

	for _, k := range v.Keys() {
		if x := v[k]; math.IsNaN(x) || math.IsInf(x, 0) {
			v[k] = SafeFloat(x)
			errs = append(errs, fmt.Errorf("%w: %s is not finite", ErrExtraction, k))
		}
	}
	return v, errors.Join(errs...)
}

func setMeanStd(v Vector, meanName, stdName string, xs []float64) {
	if len(xs) == 0 {
		return
	}
	mean, std := stat.PopMeanStdDev(xs, nil)
	v[meanName] = mean
	v[stdName] = std
}
