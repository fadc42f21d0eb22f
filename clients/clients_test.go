package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeWav(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(p, []byte("RIFF....WAVE"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestASR_PostsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transcribe" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		body, _ := io.ReadAll(f)
		if hdr.Filename != "clip.wav" || string(body) != "RIFF....WAVE" {
			t.Errorf("got %s %q", hdr.Filename, body)
		}
		if got := r.FormValue("offset"); got != "1.000" {
			t.Errorf("offset = %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("language = %q", got)
		}
		_ = json.NewEncoder(w).Encode(ASRResp{
			Language: "en",
			Segments: []TransSeg{{0, 1, " hello "}, {1, 2, ""}, {2, 3, "world"}},
		})
	}))
	defer srv.Close()

	h := NewHTTP(5 * time.Second)
	resp, err := h.ASR(context.Background(), srv.URL, writeWav(t), ASROptions{Language: "en", Offset: 1, NoiseFloor: 0.01})
	if err != nil {
		t.Fatalf("ASR: %v", err)
	}
	if got := resp.Text(); got != "hello world" {
		t.Fatalf("text = %q", got)
	}
}

func TestASR_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTP(0).ASR(context.Background(), srv.URL, writeWav(t), ASROptions{})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
}

func TestASR_MissingFile(t *testing.T) {
	if _, err := NewHTTP(0).ASR(context.Background(), "http://127.0.0.1:1", "/nope.wav", ASROptions{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGenerateRadar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RadarReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if r.URL.Path != "/generate-radar" || len(req.Categories) != 2 || req.Label != "job-1" {
			t.Errorf("unexpected request %s %+v", r.URL.Path, req)
		}
		_ = json.NewEncoder(w).Encode(RadarResp{Status: "ok", Path: "/tmp/radar.png"})
	}))
	defer srv.Close()

	resp, err := NewHTTP(time.Second).GenerateRadar(context.Background(), srv.URL, RadarReq{
		Categories: []string{"American", "British"},
		Values:     []float64{10, 20},
		Label:      "job-1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Path != "/tmp/radar.png" {
		t.Fatalf("path = %q", resp.Path)
	}
}

func TestASRResp_NilText(t *testing.T) {
	var r *ASRResp
	if r.Text() != "" {
		t.Fatal("nil response should have empty text")
	}
}
