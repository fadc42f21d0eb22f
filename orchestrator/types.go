package orchestrator

import (
	"time"

	"github.com/maastricht-university/accent-pipeline/accent"
	"github.com/maastricht-university/accent-pipeline/features"
	"github.com/maastricht-university/accent-pipeline/media"
)

// Stage names used in logs.
const (
	StageFetch     = "fetch"
	StageProbe     = "probe"
	StageExtract   = "extract"
	StageDecode    = "decode"
	StageAnalyze   = "analyze"
	StageReport    = "report"
	StagePublish   = "publish"
	StageVisualize = "visualize"
)

// Outcome is what one job produced.
type Outcome struct {
	JobID     string
	Source    string
	MediaPath string // only valid during the job for downloaded sources
	Media     *media.Info
	Result    accent.AnalysisResult
	Features  features.Vector
	Report    string
	Generated time.Time
	Published map[string]string // sink name -> location
	Chart     string            // radar chart path from the visualization service
}

// prepared is decoded audio ready for analysis.
type prepared struct {
	mediaPath string
	info      *media.Info
	wavPath   string
	samples   []float64
}
