package accent

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/maastricht-university/accent-pipeline/features"
)

func TestProficiency(t *testing.T) {
	v := features.Vector{
		features.RMSMean:              0.02,
		features.ZCRMean:              0.5,
		features.SpectralCentroidMean: 1500,
		features.SpeechRate:           4,
		features.Tempo:                150,
	}
	// clarity 55, fluency 40, language 0
	got, err := Proficiency(v, "")
	if err != nil {
		t.Fatal(err)
	}
	if want := 0.4*55 + 0.3*40; math.Abs(got-want) > 1e-9 {
		t.Fatalf("proficiency = %v, want %v", got, want)
	}

	// 12 distinct words, one sentence: language 40
	tr := "the quick brown fox jumps over a lazy dog near my house."
	got, _ = Proficiency(v, tr)
	if want := 0.4*55 + 0.3*40 + 0.3*40; math.Abs(got-want) > 1e-9 {
		t.Fatalf("proficiency = %v, want %v", got, want)
	}

	if got, _ := Proficiency(features.Vector{}, ""); got != 0 {
		t.Fatalf("empty vector proficiency = %v", got)
	}
}

func TestLanguageScore(t *testing.T) {
	cases := map[string]float64{
		"":                     0,
		"   ":                  0,
		".":                    10,
		"hello":                20,
		"hello world":          20,
		"one. two":             20,
		"no no no no":          10,
		"yes. yes. yes. yes. ": 10,
	}
	for tr, want := range cases {
		if got := languageScore(tr); got != want {
			t.Errorf("languageScore(%q) = %v, want %v", tr, got, want)
		}
	}
}

func TestSummary(t *testing.T) {
	v := features.Vector{features.Duration: 5, features.SpeechRate: 7, features.RMSMean: 0.1}
	got := Summary("British", 85, "", v)
	want := "Strong indicators of British English accent detected. " +
		"Short audio sample may limit accuracy. " +
		"Fast speaking pace observed. " +
		"Clear audio quality. " +
		"Speech transcription unavailable - analysis based on audio features only."
	if got != want {
		t.Fatalf("summary:\n got %q\nwant %q", got, want)
	}

	v = features.Vector{features.Duration: 30, features.SpeechRate: 4, features.RMSMean: 0.03}
	got = Summary("Indian", 45, "only a few words", v)
	want = "Some characteristics of Indian English accent present. Normal speaking pace. Limited speech content detected."
	if got != want {
		t.Fatalf("summary:\n got %q\nwant %q", got, want)
	}

	long := strings.Repeat("word ", 21)
	v = features.Vector{features.Duration: 61, features.SpeechRate: 1, features.RMSMean: 0.001}
	got = Summary("Canadian", 10, long, v)
	want = "Accent classification uncertain. Possible Canadian influence. " +
		"Long audio sample provides good analysis depth. " +
		"Slow speaking pace observed. " +
		"Audio quality may affect accuracy. " +
		"Sufficient speech content for reliable analysis."
	if got != want {
		t.Fatalf("summary:\n got %q\nwant %q", got, want)
	}

	if got := Summary("American", 60, "", features.Vector{}); !strings.HasPrefix(got, "Moderate indicators of American") {
		t.Fatalf("summary = %q", got)
	}
}

func TestScore_Idempotent(t *testing.T) {
	v := exampleVector()
	a := Score(v, "can't dance in the bath")
	b := Score(v, "can't dance in the bath")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("results differ:\n%+v\n%+v", a, b)
	}
	if a.Accent != "British" {
		t.Fatalf("accent = %s", a.Accent)
	}
	if a.Details.TranscriptionLength != 5 || a.Details.AudioDuration != 40 {
		t.Fatalf("details = %+v", a.Details)
	}
}

func TestAnalysisResult_JSON(t *testing.T) {
	res := Score(exampleVector(), "")
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	details := m["technical_details"].(map[string]any)
	scores := details["all_accent_scores"].(map[string]any)
	if len(scores) != 5 || scores["British"] == nil {
		t.Fatalf("scores = %v", scores)
	}

	var back AnalysisResult
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, res) {
		t.Fatalf("decoded result differs:\n%+v\n%+v", back, res)
	}

	data, _ = json.Marshal(Sentinel(errors.New("boom")))
	if !strings.Contains(string(data), `"technical_details":{"error":"boom"}`) {
		t.Fatalf("sentinel json = %s", data)
	}
}

func TestSentinel_Pairs(t *testing.T) {
	s := Sentinel(errors.New("boom"))
	if got := s.Details.Pairs(); len(got) != 1 || got[0] != (Pair{"error", "boom"}) {
		t.Fatalf("pairs = %v", got)
	}
	if s.Summary != "Analysis failed: boom" {
		t.Fatalf("summary = %q", s.Summary)
	}
}

func TestAnalyzer_EmptyAudioIsSentinel(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	called := false
	tp := TranscriptFunc(func(context.Context) string { called = true; return "hi" })

	res := a.Analyze(context.Background(), nil, 16000, tp)
	if !res.Failed() || res.Accent != Unknown {
		t.Fatalf("expected sentinel, got %+v", res)
	}
	if !strings.Contains(res.Details.Error, "no audio") {
		t.Fatalf("error = %q", res.Details.Error)
	}
	if called {
		t.Fatal("transcript should not be fetched when there is no audio")
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	const sr = 16000
	samples := make([]float64, 2*sr)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*220*float64(i)/sr)
	}

	a := NewAnalyzer(features.NewExtractor(features.DefaultOptions(), nil), nil)
	res := a.Analyze(context.Background(), samples, sr, StaticTranscript("whilst colour"))
	if res.Failed() {
		t.Fatalf("unexpected failure: %s", res.Details.Error)
	}
	if _, ok := Parse(res.Accent); !ok {
		t.Fatalf("accent = %q", res.Accent)
	}
	if res.Transcript != "whilst colour" {
		t.Fatalf("transcript = %q", res.Transcript)
	}
	if res.Confidence < 0 || res.Confidence > 100 || res.Proficiency < 0 || res.Proficiency > 100 {
		t.Fatalf("out of range: %+v", res)
	}
	// 2 s of audio caps every score at 2/30 of its raw value
	for _, acc := range All {
		if s := res.Scores().Get(acc); s > 100*2.0/30+1e-9 {
			t.Fatalf("%s = %v exceeds quality-discounted maximum", acc, s)
		}
	}

	again := a.Analyze(context.Background(), samples, sr, StaticTranscript("whilst colour"))
	if !reflect.DeepEqual(res, again) {
		t.Fatal("Analyze is not deterministic")
	}
}
