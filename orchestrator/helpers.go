package orchestrator

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/accent-pipeline/accent"
	"github.com/maastricht-university/accent-pipeline/clients"
)

// stage runs fn and logs its duration; failures are logged at error level.
func stage(log logrus.FieldLogger, name string, fn func() error) error {
	l := log.WithField("stage", name)
	start := time.Now()
	l.Debug("stage started")
	if err := fn(); err != nil {
		l.WithError(err).WithField("elapsed", time.Since(start).Round(time.Millisecond)).Error("stage failed")
		return err
	}
	l.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("stage done")
	return nil
}

// radarRequest lays out the score breakdown in canonical accent order.
func radarRequest(res accent.AnalysisResult, label, outDir string) clients.RadarReq {
	scores := res.Scores()
	req := clients.RadarReq{Label: label, OutputDir: outDir}
	for _, a := range accent.All {
		req.Categories = append(req.Categories, a.String())
		req.Values = append(req.Values, scores.Get(a))
	}
	return req
}

func (p *Pipeline) visualize(ctx context.Context, log logrus.FieldLogger, out *Outcome) {
	url := p.cfg.Services.Visualization.URL
	if url == "" || out.Result.Failed() {
		return
	}
	_ = stage(log, StageVisualize, func() error {
		resp, err := p.http.GenerateRadar(ctx, url, radarRequest(out.Result, out.JobID, p.cfg.Paths.Outputs))
		if err != nil {
			return err
		}
		out.Chart = resp.Path
		return nil
	})
}

func (p *Pipeline) publish(ctx context.Context, log logrus.FieldLogger, out *Outcome) {
	if len(p.sinks) == 0 {
		return
	}
	out.Published = make(map[string]string, len(p.sinks))
	b := bundle(out)
	for _, s := range p.sinks {
		l := log.WithFields(logrus.Fields{"stage": StagePublish, "sink": s.Name()})
		loc, err := s.Publish(ctx, b)
		if err != nil {
			l.WithError(err).Warn("publish failed")
			continue
		}
		out.Published[s.Name()] = loc
		l.WithField("location", loc).Info("published")
	}
}
