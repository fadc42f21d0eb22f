package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/maastricht-university/accent-pipeline/accent"
	"github.com/maastricht-university/accent-pipeline/clients"
	"github.com/maastricht-university/accent-pipeline/config"
	"github.com/maastricht-university/accent-pipeline/features"
	"github.com/maastricht-university/accent-pipeline/logging"
	"github.com/maastricht-university/accent-pipeline/media"
	"github.com/maastricht-university/accent-pipeline/sink"
)

func testConfig(t *testing.T) *config.Root {
	t.Helper()
	c, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func needFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skip(bin + " not found in PATH")
		}
	}
}

// toneClip writes a short 16 kHz mono WAV with a pulsed tone.
func toneClip(t *testing.T, seconds int) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "clip.wav")
	cmd := exec.Command("ffmpeg", "-hide_banner", "-loglevel", "error", "-y",
		"-f", "lavfi", "-i", "sine=frequency=180:beep_factor=4:sample_rate=16000:duration="+strconv.Itoa(seconds),
		"-ac", "1", out)
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg: %v: %s", err, b)
	}
	return out
}

func newTestPipeline(t *testing.T, mutate func(c *config.Root)) (*Pipeline, *config.Root) {
	t.Helper()
	c := testConfig(t)
	c.Paths.Outputs = t.TempDir()
	c.Paths.Temp = t.TempDir()
	c.Transcribe.Fallback.Command = ""
	c.Services.ASR.URL = ""
	c.Services.Visualization.URL = ""
	if mutate != nil {
		mutate(c)
	}
	p, err := NewPipeline(context.Background(), c, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p, c
}

func assertEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("job dir not cleaned up: %d entries left in %s", len(entries), dir)
	}
}

func TestRun_LocalClip(t *testing.T) {
	needFFmpeg(t)

	var asrCalls int
	asr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		asrCalls++
		if r.URL.Path != "/transcribe" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"segments":[{"start":0,"end":2,"text":" I reckon the lift is"},{"start":2,"end":4,"text":"whilst the flat "}],"language":"en"}`))
	}))
	defer asr.Close()

	p, c := newTestPipeline(t, func(c *config.Root) { c.Services.ASR.URL = asr.URL })
	p.now = func() time.Time { return time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC) }

	out, err := p.Run(context.Background(), toneClip(t, 4))
	if err != nil {
		t.Fatal(err)
	}
	if asrCalls != 1 {
		t.Fatalf("asr calls = %d", asrCalls)
	}
	if out.Result.Failed() {
		t.Fatalf("unexpected sentinel: %+v", out.Result)
	}
	if _, ok := accent.Parse(out.Result.Accent); !ok {
		t.Fatalf("accent %q is not a known label", out.Result.Accent)
	}
	if out.Result.Transcript == "" || out.Result.Details.TranscriptionLength != 8 {
		t.Fatalf("transcript not carried through: %+v", out.Result)
	}
	if d := out.Features.Get(features.Duration); d < 3.9 || d > 4.1 {
		t.Fatalf("duration = %v", d)
	}
	if !strings.Contains(out.Report, "ACCENT ANALYSIS REPORT") {
		t.Fatalf("report missing title:\n%s", out.Report)
	}
	loc, ok := out.Published["local"]
	if !ok {
		t.Fatalf("published = %v", out.Published)
	}
	if _, err := os.Stat(filepath.Join(loc, "result.json")); err != nil {
		t.Fatal(err)
	}
	assertEmpty(t, c.Paths.Temp)
}

func TestRun_MissingSource(t *testing.T) {
	needFFmpeg(t)
	p, c := newTestPipeline(t, nil)

	_, err := p.Run(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"))
	if !errors.Is(err, media.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	assertEmpty(t, c.Paths.Temp)
}

func TestRun_CorruptSource(t *testing.T) {
	needFFmpeg(t)
	p, c := newTestPipeline(t, nil)

	bad := filepath.Join(t.TempDir(), "bad.mp4")
	if err := os.WriteFile(bad, []byte("not a video at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Run(context.Background(), bad); err == nil {
		t.Fatal("expected error for corrupt input")
	}
	assertEmpty(t, c.Paths.Temp)
}

func TestFeatures(t *testing.T) {
	needFFmpeg(t)
	p, c := newTestPipeline(t, nil)

	v, err := p.Features(context.Background(), toneClip(t, 2))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range features.Names(c.Features.NMFCC) {
		if !v.Has(name) {
			t.Fatalf("feature %s missing", name)
		}
	}
	assertEmpty(t, c.Paths.Temp)
}

func TestFeatures_TruncatesToMaxDuration(t *testing.T) {
	needFFmpeg(t)
	p, c := newTestPipeline(t, func(c *config.Root) { c.Audio.MaxDuration = 1 })

	v, err := p.Features(context.Background(), toneClip(t, 3))
	if err != nil {
		t.Fatal(err)
	}
	if d := v.Get(features.Duration); d < 0.9 || d > 1.1 {
		t.Fatalf("duration = %v, want about 1s", d)
	}
	assertEmpty(t, c.Paths.Temp)
}

type recordingSink struct {
	name string
	got  []sink.Bundle
	err  error
}

func (r *recordingSink) Name() string { return r.name }
func (r *recordingSink) Publish(_ context.Context, b sink.Bundle) (string, error) {
	r.got = append(r.got, b)
	if r.err != nil {
		return "", r.err
	}
	return "mem://" + b.JobID, nil
}

func TestPublish_ContinuesPastFailures(t *testing.T) {
	broken := &recordingSink{name: "broken", err: errors.New("down")}
	ok := &recordingSink{name: "mem"}
	p := &Pipeline{cfg: testConfig(t), log: logging.Discard()}
	p.AddSink(broken)
	p.AddSink(ok)

	out := &Outcome{
		JobID:     "job-1",
		Source:    "clip.mp4",
		Result:    accent.Score(features.Vector{features.Duration: 30}, ""),
		Report:    "r",
		Generated: time.Unix(0, 0),
	}
	p.publish(context.Background(), p.log, out)

	if len(broken.got) != 1 || len(ok.got) != 1 {
		t.Fatalf("sinks called %d/%d times", len(broken.got), len(ok.got))
	}
	if _, has := out.Published["broken"]; has {
		t.Fatal("failed sink should not be recorded")
	}
	if out.Published["mem"] != "mem://job-1" {
		t.Fatalf("published = %v", out.Published)
	}
	if ok.got[0].Report != "r" || ok.got[0].JobID != "job-1" {
		t.Fatalf("bundle = %+v", ok.got[0])
	}
}

func TestVisualize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate-radar" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"status":"ok","path":"/charts/job-2.png"}`))
	}))
	defer srv.Close()

	c := testConfig(t)
	c.Services.Visualization.URL = srv.URL
	p := &Pipeline{cfg: c, http: clients.NewHTTP(time.Second), log: logging.Discard()}

	v := features.Vector{features.Duration: 40, features.Tempo: 150, features.PitchStd: 60, features.SpeechRate: 5}
	out := &Outcome{JobID: "job-2", Result: accent.Score(v, "whilst")}
	p.visualize(context.Background(), p.log, out)
	if out.Chart != "/charts/job-2.png" {
		t.Fatalf("chart = %q", out.Chart)
	}
	cats, _ := got["categories"].([]any)
	if len(cats) != len(accent.All) || cats[0] != accent.All[0].String() {
		t.Fatalf("categories = %v", got["categories"])
	}

	out = &Outcome{JobID: "job-3", Result: accent.Sentinel(errors.New("x"))}
	p.visualize(context.Background(), p.log, out)
	if out.Chart != "" {
		t.Fatal("sentinel results should not be charted")
	}
}

func TestRadarRequest_Order(t *testing.T) {
	v := features.Vector{features.Duration: 40, features.Tempo: 150, features.PitchStd: 60, features.SpeechRate: 5}
	res := accent.Score(v, "whilst")
	req := radarRequest(res, "lbl", "out")
	if len(req.Values) != len(accent.All) {
		t.Fatalf("values = %v", req.Values)
	}
	for i, a := range accent.All {
		if req.Categories[i] != a.String() || req.Values[i] != res.Scores().Get(a) {
			t.Fatalf("entry %d = %s/%v", i, req.Categories[i], req.Values[i])
		}
	}
}
