package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/maastricht-university/accent-pipeline/clients"
)

// Service recognizes speech through the remote ASR service.
type Service struct {
	http     *clients.HTTP
	url      string
	language string
}

func NewService(h *clients.HTTP, url string) *Service {
	return &Service{http: h, url: strings.TrimRight(url, "/"), language: "en"}
}

func (s *Service) Recognize(ctx context.Context, audioPath string, cal Calibration) (string, error) {
	resp, err := s.http.ASR(ctx, s.url, audioPath, clients.ASROptions{
		Language:   s.language,
		Offset:     cal.Offset.Seconds(),
		NoiseFloor: cal.NoiseFloor,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrNoHypothesis
	}
	return text, nil
}
