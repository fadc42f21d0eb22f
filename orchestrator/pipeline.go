package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/accent-pipeline/accent"
	"github.com/maastricht-university/accent-pipeline/clients"
	cfg "github.com/maastricht-university/accent-pipeline/config"
	"github.com/maastricht-university/accent-pipeline/features"
	"github.com/maastricht-university/accent-pipeline/logging"
	"github.com/maastricht-university/accent-pipeline/media"
	"github.com/maastricht-university/accent-pipeline/report"
	"github.com/maastricht-university/accent-pipeline/sink"
	"github.com/maastricht-university/accent-pipeline/transcribe"
)

type Pipeline struct {
	cfg         *cfg.Root
	http        *clients.HTTP
	ff          *media.Executor
	source      *media.Downloader
	extractor   *features.Extractor
	analyzer    *accent.Analyzer
	transcriber *transcribe.Chain
	sinks       []sink.Sink
	closers     []func() error
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewPipeline wires every stage from configuration. ffmpeg and ffprobe must
// be installed; the ASR service, the local recognizer, the visualization
// service and the S3/Kafka sinks are optional.
func NewPipeline(ctx context.Context, c *cfg.Root, log logrus.FieldLogger) (*Pipeline, error) {
	if log == nil {
		log = logging.Discard()
	}
	ff, err := media.NewExecutor(c.FFmpeg.FFmpegPath, c.FFmpeg.FFprobePath, log)
	if err != nil {
		return nil, err
	}
	h := clients.NewHTTP(cfg.DurSeconds(c.Services.Timeout))

	var primary, fallback transcribe.Recognizer
	if c.Services.ASR.URL != "" {
		primary = transcribe.NewService(h, c.Services.ASR.URL)
	}
	if c.Transcribe.Fallback.Command != "" {
		fallback = transcribe.NewCommand(c.Transcribe.Fallback.Command, c.Transcribe.Fallback.Args, log)
	}

	ext := features.NewExtractor(features.Options{
		FrameLength: c.Features.FrameLength,
		HopLength:   c.Features.HopLength,
		NMFCC:       c.Features.NMFCC,
		NMels:       c.Features.NMels,
	}, log)

	p := &Pipeline{
		cfg:  c,
		http: h,
		ff:   ff,
		source: media.NewDownloader(media.SourceOptions{
			YTDLPPath:   c.Source.YTDLPPath,
			MaxDuration: c.Source.MaxDuration,
			MaxHeight:   c.Source.MaxHeight,
		}, log),
		extractor:   ext,
		analyzer:    accent.NewAnalyzer(ext, log),
		transcriber: transcribe.NewChain(primary, fallback, cfg.DurSeconds(c.Transcribe.Timeout), log),
		log:         logging.WithComponent(log, "pipeline"),
		now:         time.Now,
	}

	if c.Paths.Outputs != "" {
		p.AddSink(sink.NewLocal(c.Paths.Outputs))
	}
	if c.Sinks.S3.Bucket != "" {
		cli, err := sink.NewS3Client(ctx, c.Sinks.S3)
		if err != nil {
			return nil, err
		}
		p.AddSink(sink.NewS3(cli, c.Sinks.S3.Bucket, c.Sinks.S3.Prefix))
	}
	if len(c.Sinks.Kafka.Brokers) > 0 && c.Sinks.Kafka.Topic != "" {
		k, err := sink.NewKafka(c.Sinks.Kafka.Brokers, c.Sinks.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		p.AddSink(k)
		p.closers = append(p.closers, k.Close)
	}
	return p, nil
}

func (p *Pipeline) AddSink(s sink.Sink) { p.sinks = append(p.sinks, s) }

func (p *Pipeline) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// newJob assigns an id, applies the job timeout and creates the job's
// scratch directory. The returned cleanup removes it and must always run.
func (p *Pipeline) newJob(ctx context.Context) (string, string, context.Context, func(), error) {
	id := uuid.NewString()
	cancel := func() {}
	if t := p.cfg.Pipeline.JobTimeout; t > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.DurSeconds(t))
	}
	tmp, err := os.MkdirTemp(p.cfg.Paths.Temp, "accent-"+id[:8]+"-")
	if err != nil {
		cancel()
		return "", "", nil, nil, fmt.Errorf("create job dir: %w", err)
	}
	cleanup := func() {
		cancel()
		if err := os.RemoveAll(tmp); err != nil {
			p.log.WithError(err).WithField("dir", tmp).Warn("could not remove job dir")
		}
	}
	return id, tmp, ctx, cleanup, nil
}

// prepare fetches src and decodes it into the job directory. Every error
// here is fatal to the job.
func (p *Pipeline) prepare(ctx context.Context, log logrus.FieldLogger, src, tmp string) (*prepared, error) {
	var pr prepared
	var err error

	if err = stage(log, StageFetch, func() error {
		pr.mediaPath, err = p.source.Fetch(ctx, src, tmp)
		return err
	}); err != nil {
		return nil, err
	}
	if err = stage(log, StageProbe, func() error {
		pr.info, err = p.ff.Probe(ctx, pr.mediaPath)
		return err
	}); err != nil {
		return nil, err
	}

	pr.wavPath = filepath.Join(tmp, "audio."+p.cfg.Audio.Format)
	if err = stage(log, StageExtract, func() error {
		return p.ff.ExtractAudio(ctx, pr.mediaPath, pr.wavPath, media.AudioFormat{
			Codec:       p.cfg.Audio.Codec,
			SampleRate:  p.cfg.Audio.SampleRate,
			Channels:    p.cfg.Audio.Channels,
			MaxDuration: p.cfg.Audio.MaxDuration,
		})
	}); err != nil {
		return nil, err
	}
	if err = stage(log, StageDecode, func() error {
		pr.samples, err = p.ff.DecodePCM(ctx, pr.wavPath, p.cfg.Audio.SampleRate, p.cfg.Audio.MaxDuration)
		return err
	}); err != nil {
		return nil, err
	}
	return &pr, nil
}

// Run analyses one source (URL or local path). Source and decode failures
// are returned; anything later ends up in the result itself.
func (p *Pipeline) Run(ctx context.Context, src string) (*Outcome, error) {
	id, tmp, ctx, cleanup, err := p.newJob(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	log := p.log.WithFields(logrus.Fields{"job_id": id, "source": src})
	log.Info("job started")

	pr, err := p.prepare(ctx, log, src, tmp)
	if err != nil {
		return nil, err
	}

	out := &Outcome{JobID: id, Source: src, MediaPath: pr.mediaPath, Media: pr.info}
	sr := p.cfg.Audio.SampleRate
	_ = stage(log, StageAnalyze, func() error {
		cal := transcribe.Calibrate(pr.samples, sr, time.Duration(p.cfg.Transcribe.Calibration*float64(time.Second)))
		tp := accent.TranscriptFunc(func(ctx context.Context) string {
			return p.transcriber.Transcribe(ctx, pr.wavPath, cal)
		})
		out.Result, out.Features = p.analyzer.AnalyzeWithFeatures(ctx, pr.samples, sr, tp)
		return nil
	})

	_ = stage(log, StageReport, func() error {
		out.Generated = p.now()
		out.Report = report.Render(out.Result, out.Generated)
		return nil
	})

	p.publish(ctx, log, out)
	p.visualize(ctx, log, out)

	log.WithFields(logrus.Fields{
		"accent":     out.Result.Accent,
		"confidence": out.Result.Confidence,
	}).Info("job finished")
	return out, nil
}

// Features fetches and decodes src and returns its feature vector without
// scoring it.
func (p *Pipeline) Features(ctx context.Context, src string) (features.Vector, error) {
	id, tmp, ctx, cleanup, err := p.newJob(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	log := p.log.WithFields(logrus.Fields{"job_id": id, "source": src})
	pr, err := p.prepare(ctx, log, src, tmp)
	if err != nil {
		return nil, err
	}
	v, err := p.extractor.Extract(pr.samples, p.cfg.Audio.SampleRate)
	switch {
	case errors.Is(err, features.ErrNoAudio):
		return nil, err
	case err != nil:
		log.WithError(err).Warn("partial feature extraction")
	}
	return v, nil
}

func bundle(out *Outcome) sink.Bundle {
	return sink.Bundle{
		JobID:       out.JobID,
		Source:      out.Source,
		GeneratedAt: out.Generated,
		Result:      out.Result,
		Features:    out.Features,
		Report:      out.Report,
	}
}
