// Package sink publishes finished analyses: a local session directory,
// an S3 bucket and a Kafka topic.
package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/maastricht-university/accent-pipeline/accent"
	"github.com/maastricht-university/accent-pipeline/features"
)

// Bundle is everything one job produced.
type Bundle struct {
	JobID       string                `json:"job_id"`
	Source      string                `json:"source"`
	GeneratedAt time.Time             `json:"generated_at"`
	Result      accent.AnalysisResult `json:"result"`
	Features    features.Vector       `json:"features,omitempty"`
	Report      string                `json:"-"`
}

// Sink stores or forwards a bundle and reports where it went.
type Sink interface {
	Name() string
	Publish(ctx context.Context, b Bundle) (string, error)
}

func encode(b Bundle) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}
