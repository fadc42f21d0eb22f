package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Service struct {
	URL string `yaml:"url" mapstructure:"url"`
}
type Services struct {
	ASR           Service `yaml:"asr" mapstructure:"asr"`
	Visualization Service `yaml:"visualization" mapstructure:"visualization"`
	Timeout       int     `yaml:"timeout" mapstructure:"timeout"` // seconds
}
type Audio struct {
	SampleRate  int    `yaml:"sample_rate" mapstructure:"sample_rate"`
	Channels    int    `yaml:"channels" mapstructure:"channels"`
	Format      string `yaml:"format" mapstructure:"format"`
	Codec       string `yaml:"codec" mapstructure:"codec"`
	MaxDuration int    `yaml:"max_duration" mapstructure:"max_duration"` // seconds
}
type Source struct {
	MaxDuration int    `yaml:"max_duration" mapstructure:"max_duration"` // seconds
	MaxHeight   int    `yaml:"max_height" mapstructure:"max_height"`
	YTDLPPath   string `yaml:"ytdlp_path" mapstructure:"ytdlp_path"`
}
type FFmpeg struct {
	FFmpegPath  string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path" mapstructure:"ffprobe_path"`
}
type Features struct {
	FrameLength int `yaml:"frame_length" mapstructure:"frame_length"`
	HopLength   int `yaml:"hop_length" mapstructure:"hop_length"`
	NMFCC       int `yaml:"n_mfcc" mapstructure:"n_mfcc"`
	NMels       int `yaml:"n_mels" mapstructure:"n_mels"`
}
type Fallback struct {
	Command string   `yaml:"command" mapstructure:"command"`
	Args    []string `yaml:"args" mapstructure:"args"`
}
type Transcribe struct {
	Timeout     int      `yaml:"timeout" mapstructure:"timeout"`         // seconds
	Calibration float64  `yaml:"calibration" mapstructure:"calibration"` // seconds of ambient noise
	Fallback    Fallback `yaml:"fallback" mapstructure:"fallback"`
}
type S3Sink struct {
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
	Region    string `yaml:"region" mapstructure:"region"`
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	PathStyle bool   `yaml:"path_style" mapstructure:"path_style"`
	// static credentials; empty means the default AWS chain
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
}
type KafkaSink struct {
	Brokers []string `yaml:"brokers" mapstructure:"brokers"`
	Topic   string   `yaml:"topic" mapstructure:"topic"`
}
type Sinks struct {
	S3    S3Sink    `yaml:"s3" mapstructure:"s3"`
	Kafka KafkaSink `yaml:"kafka" mapstructure:"kafka"`
}
type Root struct {
	Pipeline struct {
		Name       string `yaml:"name" mapstructure:"name"`
		Version    string `yaml:"version" mapstructure:"version"`
		LogLvl     string `yaml:"log_level" mapstructure:"log_level"`
		LogFormat  string `yaml:"log_format" mapstructure:"log_format"`
		JobTimeout int    `yaml:"job_timeout" mapstructure:"job_timeout"` // seconds
	} `yaml:"pipeline" mapstructure:"pipeline"`
	Audio      Audio      `yaml:"audio" mapstructure:"audio"`
	Source     Source     `yaml:"source" mapstructure:"source"`
	FFmpeg     FFmpeg     `yaml:"ffmpeg" mapstructure:"ffmpeg"`
	Services   Services   `yaml:"services" mapstructure:"services"`
	Features   Features   `yaml:"features" mapstructure:"features"`
	Transcribe Transcribe `yaml:"transcribe" mapstructure:"transcribe"`
	Paths      struct {
		Outputs string `yaml:"outputs" mapstructure:"outputs"`
		Temp    string `yaml:"temp" mapstructure:"temp"`
	} `yaml:"paths" mapstructure:"paths"`
	Sinks Sinks `yaml:"sinks" mapstructure:"sinks"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "accent-pipeline")
	v.SetDefault("pipeline.version", "0.1.0")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")
	v.SetDefault("pipeline.job_timeout", 900)

	v.SetDefault("audio.sample_rate", 22050)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("audio.format", "wav")
	v.SetDefault("audio.codec", "pcm_s16le")
	v.SetDefault("audio.max_duration", 300)

	v.SetDefault("source.max_duration", 1800)
	v.SetDefault("source.max_height", 720)
	v.SetDefault("source.ytdlp_path", "yt-dlp")

	v.SetDefault("ffmpeg.ffmpeg_path", "ffmpeg")
	v.SetDefault("ffmpeg.ffprobe_path", "ffprobe")

	v.SetDefault("features.frame_length", 2048)
	v.SetDefault("features.hop_length", 512)
	v.SetDefault("features.n_mfcc", 13)
	v.SetDefault("features.n_mels", 128)

	v.SetDefault("services.asr.url", "")
	v.SetDefault("services.visualization.url", "")
	v.SetDefault("services.timeout", 60)

	v.SetDefault("transcribe.timeout", 120)
	v.SetDefault("transcribe.calibration", 1.0)
	v.SetDefault("transcribe.fallback.command", "")
	v.SetDefault("transcribe.fallback.args", []string{"-m", "models/ggml-base.en.bin", "-f", "{audio}", "-ot", "{offset_ms}", "-nt", "-np"})

	v.SetDefault("paths.outputs", "outputs")
	v.SetDefault("paths.temp", "")

	v.SetDefault("sinks.s3.bucket", "")
	v.SetDefault("sinks.s3.prefix", "accent-reports")
	v.SetDefault("sinks.s3.region", "us-east-1")
	v.SetDefault("sinks.s3.endpoint", "")
	v.SetDefault("sinks.s3.path_style", false)
	v.SetDefault("sinks.s3.access_key", "")
	v.SetDefault("sinks.s3.secret_key", "")
	v.SetDefault("sinks.kafka.brokers", []string{})
	v.SetDefault("sinks.kafka.topic", "")
}

// Load reads configuration from path, or from the first config file found in the
// usual locations. A missing file is not an error: defaults and ACCENT_* env
// overrides still apply.
func Load(path string) (*Root, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("accent")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = guess()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func guess() string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	candidates := []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// Save writes the configuration as YAML.
func (r *Root) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
