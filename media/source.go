package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/accent-pipeline/logging"
)

// SupportedSites are the platforms known to work; other hosts are tried
// anyway with a warning.
var SupportedSites = []string{
	"youtube.com", "youtu.be", "loom.com", "vimeo.com",
	"dailymotion.com", "streamable.com",
}

// direct media extensions fetched over plain HTTP without yt-dlp
var directExts = map[string]bool{
	".mp4": true, ".mkv": true, ".webm": true, ".avi": true, ".mov": true,
	".wav": true, ".mp3": true, ".m4a": true, ".flac": true, ".ogg": true,
}

// IsSupportedURL reports whether raw points at one of SupportedSites.
func IsSupportedURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, site := range SupportedSites {
		if host == site || strings.HasSuffix(host, "."+site) {
			return true
		}
	}
	return false
}

type SourceOptions struct {
	YTDLPPath   string
	MaxDuration int // seconds
	MaxHeight   int
}

// Downloader resolves a source (local path or URL) to a local media file.
type Downloader struct {
	opts SourceOptions
	http *http.Client
	log  logrus.FieldLogger
}

func NewDownloader(opts SourceOptions, log logrus.FieldLogger) *Downloader {
	if opts.YTDLPPath == "" {
		opts.YTDLPPath = "yt-dlp"
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = 720
	}
	return &Downloader{
		opts: opts,
		http: &http.Client{Timeout: 10 * time.Minute},
		log:  logging.WithComponent(log, "source"),
	}
}

// Format is the yt-dlp format selector.
func (d *Downloader) Format() string {
	return fmt.Sprintf("best[height<=%d]/best", d.opts.MaxHeight)
}

// Fetch returns a local path for src, downloading into dir when src is a
// URL. Local files are used in place.
func (d *Downloader) Fetch(ctx context.Context, src, dir string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", fmt.Errorf("%w: empty source", ErrNotFound)
	}
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return d.local(src)
	}
	switch u.Scheme {
	case "file":
		return d.local(u.Path)
	case "http", "https":
	default:
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupported, u.Scheme)
	}

	if directExts[strings.ToLower(path.Ext(u.Path))] {
		return d.direct(ctx, u, dir)
	}
	if !IsSupportedURL(src) {
		d.log.WithField("host", u.Hostname()).Warn("host is not on the supported list; trying anyway")
	}
	return d.ytdlp(ctx, src, dir)
}

func (d *Downloader) local(p string) (string, error) {
	fi, err := os.Stat(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	case fi.IsDir():
		return "", fmt.Errorf("%w: %s is a directory", ErrUnsupported, p)
	}
	return p, nil
}

func (d *Downloader) direct(ctx context.Context, u *url.URL, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", fmt.Errorf("%w: %s", ErrNotFound, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: %s", ErrSourceUnavailable, resp.Status)
	}

	out := filepath.Join(dir, "source"+strings.ToLower(path.Ext(u.Path)))
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	d.log.WithField("path", out).Info("downloaded media")
	return out, nil
}

// VideoInfo is the subset of yt-dlp's metadata the pipeline uses.
type VideoInfo struct {
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Ext      string  `json:"ext"`
	Uploader string  `json:"uploader"`
}

// Info asks yt-dlp for metadata without downloading.
func (d *Downloader) Info(ctx context.Context, src string) (*VideoInfo, error) {
	out, err := d.runYTDLP(ctx, "-J", "--no-playlist", "--skip-download", "--no-warnings", src)
	if err != nil {
		return nil, err
	}
	var info VideoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("%w: parse yt-dlp metadata: %v", ErrSourceUnavailable, err)
	}
	return &info, nil
}

func (d *Downloader) ytdlp(ctx context.Context, src, dir string) (string, error) {
	info, err := d.Info(ctx, src)
	if err != nil {
		return "", err
	}
	log := d.log.WithFields(logrus.Fields{"title": info.Title, "duration": info.Duration})
	if d.opts.MaxDuration > 0 && info.Duration > float64(d.opts.MaxDuration) {
		return "", fmt.Errorf("%w: %.0fs exceeds %ds", ErrTooLong, info.Duration, d.opts.MaxDuration)
	}

	out, err := d.runYTDLP(ctx,
		"-f", d.Format(),
		"--no-playlist", "--no-warnings", "--no-simulate",
		"--print", "after_move:filepath",
		"-o", filepath.Join(dir, "video.%(ext)s"),
		src,
	)
	if err != nil {
		return "", err
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	p := strings.TrimSpace(lines[len(lines)-1])
	if p == "" {
		return "", fmt.Errorf("%w: downloaded file not reported", ErrSourceUnavailable)
	}
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("%w: downloaded file missing: %v", ErrSourceUnavailable, err)
	}
	log.WithField("path", p).Info("downloaded video")
	return p, nil
}

func (d *Downloader) runYTDLP(ctx context.Context, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(d.opts.YTDLPPath)
	if err != nil {
		return nil, fmt.Errorf("%w: yt-dlp not found: %v", ErrSourceUnavailable, err)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		return nil, fmt.Errorf("%w: yt-dlp: %s", classifySource(msg), msg)
	}
	return out, nil
}
