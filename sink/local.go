package sink

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

// Local writes each bundle into its own session directory under root:
// result.json, features.json and report.txt.
type Local struct {
	root string
}

func NewLocal(root string) *Local { return &Local{root: root} }

func (l *Local) Name() string { return "local" }

func (l *Local) Publish(_ context.Context, b Bundle) (string, error) {
	dir, err := mkSessionDir(l.root, b)
	if err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "result.json"), b); err != nil {
		return "", err
	}
	if len(b.Features) > 0 {
		if err := writeJSON(filepath.Join(dir, "features.json"), b.Features); err != nil {
			return "", err
		}
	}
	if b.Report != "" {
		if err := os.WriteFile(filepath.Join(dir, "report.txt"), []byte(b.Report), 0o644); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func mkSessionDir(outputsRoot string, b Bundle) (string, error) {
	sid := "session_" + b.GeneratedAt.Format("20060102-150405")
	if b.JobID != "" {
		short := b.JobID
		if len(short) > 8 {
			short = short[:8]
		}
		sid += "_" + short
	}
	dir := filepath.Join(outputsRoot, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
