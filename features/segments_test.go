package features

import (
	"math"
	"reflect"
	"testing"
)

func burst(n int, on ...[2]int) []float64 {
	out := make([]float64, n)
	for _, r := range on {
		for i := r[0]; i < r[1]; i++ {
			out[i] = 1
		}
	}
	return out
}

func TestSpeechSegments_SingleBurst(t *testing.T) {
	// window energies: [0 0 0 2 4 4 2 0], threshold 0.45
	got := SpeechSegments(burst(20, [2]int{8, 14}), 4, 2)
	want := []Segment{{Start: 3, End: 7}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("segments = %v, want %v", got, want)
	}
}

func TestSpeechSegments_OpenRunClosedAtEnd(t *testing.T) {
	// window energies: [0 0 0 2 4 4 4 4]
	got := SpeechSegments(burst(20, [2]int{8, 20}), 4, 2)
	want := []Segment{{Start: 3, End: 8}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("segments = %v, want %v", got, want)
	}
}

func TestSpeechSegments_TwoBursts(t *testing.T) {
	got := SpeechSegments(burst(40, [2]int{4, 10}, [2]int{24, 30}), 4, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %v", got)
	}
	if got[0].End > got[1].Start {
		t.Fatalf("segments overlap: %v", got)
	}
}

func TestSpeechSegments_Degenerate(t *testing.T) {
	if got := SpeechSegments(nil, 2048, 512); got != nil {
		t.Fatalf("nil input gave %v", got)
	}
	// exactly one frame long: the window must fit strictly inside
	if got := SpeechSegments(make([]float64, 2048), 2048, 512); got != nil {
		t.Fatalf("frame-sized input gave %v", got)
	}
	if got := SpeechSegments(make([]float64, 10000), 2048, 512); len(got) != 0 {
		t.Fatalf("silence gave %v", got)
	}
	if got := SpeechSegments(burst(20, [2]int{0, 20}), 0, 2); got != nil {
		t.Fatalf("zero frame length gave %v", got)
	}
}

func TestQuality_DefaultsOnSilence(t *testing.T) {
	if q := Quality(nil, 2048, 512); q.Score != defaultQuality {
		t.Fatalf("empty input score = %v", q.Score)
	}
	if q := Quality(make([]float64, 4096), 2048, 512); q.Score != defaultQuality {
		t.Fatalf("silent input score = %v", q.Score)
	}
}

func TestQuality_SineWithinRange(t *testing.T) {
	s := sine(440, 0.5, 22050, 22050)
	q := Quality(s, 2048, 512)
	if q.Score < 0 || q.Score > 100 {
		t.Fatalf("score out of range: %v", q.Score)
	}
	if q.ClippingRatio != 0 {
		t.Fatalf("unexpected clipping: %v", q.ClippingRatio)
	}
	if math.Abs(q.DynamicRange-0.5) > 0.01 {
		t.Fatalf("dynamic range = %v", q.DynamicRange)
	}
	if q.VoicedRatio <= 0.9 {
		t.Fatalf("steady tone should be mostly voiced, got %v", q.VoicedRatio)
	}
}

func TestQuality_ClippingLowersScore(t *testing.T) {
	clean := sine(440, 0.5, 22050, 22050)
	clipped := make([]float64, len(clean))
	for i, x := range clean {
		clipped[i] = math.Max(-1, math.Min(1, x*4))
	}
	qc := Quality(clipped, 2048, 512)
	if qc.ClippingRatio <= 0 {
		t.Fatalf("expected clipping ratio > 0")
	}
}
