package features

import (
	"fmt"
	"math"
	"sort"
)

// Well-known feature names.
const (
	Duration     = "duration"
	SampleRate   = "sample_rate"
	AudioLength  = "audio_length"
	Tempo        = "tempo"
	PitchMean    = "pitch_mean"
	PitchStd     = "pitch_std"
	PitchRange   = "pitch_range"
	SpeechRate   = "speech_rate"
	AudioQuality = "audio_quality"

	SpectralCentroidMean = "spectral_centroid_mean"
	SpectralCentroidStd  = "spectral_centroid_std"
	ChromaMean           = "chroma_mean"
	ChromaStd            = "chroma_std"
	RolloffMean          = "rolloff_mean"
	RolloffStd           = "rolloff_std"
	ZCRMean              = "zcr_mean"
	ZCRStd               = "zcr_std"
	RMSMean              = "rms_mean"
	RMSStd               = "rms_std"
	BandwidthMean        = "bandwidth_mean"
	BandwidthStd         = "bandwidth_std"
)

func MFCCMean(i int) string { return fmt.Sprintf("mfcc_%d_mean", i) }
func MFCCStd(i int) string  { return fmt.Sprintf("mfcc_%d_std", i) }

// Vector maps feature names to values. A missing name reads as 0. Producers
// build it once and hand it off; nothing downstream writes to it.
type Vector map[string]float64

func (v Vector) Get(name string) float64 {
	if v == nil {
		return 0
	}
	return v[name]
}

func (v Vector) Has(name string) bool {
	_, ok := v[name]
	return ok
}

func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// Keys returns the feature names in lexical order.
func (v Vector) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Names lists every entry Extract populates for the given MFCC count.
func Names(nMFCC int) []string {
	names := []string{
		Duration, SampleRate, AudioLength,
		SpectralCentroidMean, SpectralCentroidStd,
		ChromaMean, ChromaStd,
		RolloffMean, RolloffStd,
		ZCRMean, ZCRStd,
		Tempo,
		PitchMean, PitchStd, PitchRange,
		RMSMean, RMSStd,
		BandwidthMean, BandwidthStd,
		SpeechRate, AudioQuality,
	}
	for i := 0; i < nMFCC; i++ {
		names = append(names, MFCCMean(i), MFCCStd(i))
	}
	return names
}

// SafeFloat maps NaN and ±Inf to 0.
func SafeFloat(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
