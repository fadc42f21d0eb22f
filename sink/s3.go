package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/maastricht-university/accent-pipeline/config"
)

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads result.json and report.txt under <prefix>/<job id>/.
type S3 struct {
	cli    putter
	bucket string
	prefix string
}

func NewS3(cli *s3.Client, bucket, prefix string) *S3 {
	return &S3{cli: cli, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// NewS3Client builds a client from sink config. Static keys are used when
// set, otherwise the default AWS credential chain. A custom endpoint
// (MinIO, LocalStack) usually wants PathStyle.
func NewS3Client(ctx context.Context, c config.S3Sink) (*s3.Client, error) {
	var loaders []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		loaders = append(loaders, awsconfig.WithRegion(c.Region))
	}
	if c.AccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.PathStyle
	}), nil
}

func (s *S3) Name() string { return "s3" }

func (s *S3) key(jobID, name string) string {
	return path.Join(s.prefix, jobID, name)
}

func (s *S3) Publish(ctx context.Context, b Bundle) (string, error) {
	if s.bucket == "" {
		return "", fmt.Errorf("s3 sink: bucket is required")
	}
	data, err := encode(b)
	if err != nil {
		return "", err
	}
	if err := s.put(ctx, s.key(b.JobID, "result.json"), data, "application/json"); err != nil {
		return "", err
	}
	if b.Report != "" {
		if err := s.put(ctx, s.key(b.JobID, "report.txt"), []byte(b.Report), "text/plain; charset=utf-8"); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("s3://%s/%s/", s.bucket, path.Join(s.prefix, b.JobID)), nil
}

func (s *S3) put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.cli.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
