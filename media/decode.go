package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
)

// DecodePCM decodes the audio track of input to mono float samples at
// sampleRate, keeping at most maxDuration seconds (0 keeps everything).
func (e *Executor) DecodePCM(ctx context.Context, input string, sampleRate, maxDuration int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrDecode, sampleRate)
	}
	format := AudioFormat{Codec: "pcm_f32le", SampleRate: sampleRate, Channels: 1, MaxDuration: maxDuration}
	args := append([]string{"-i", input}, format.args()...)
	args = append(args, "-f", "f32le", "pipe:1")

	var out bytes.Buffer
	if err := e.run(ctx, &out, args...); err != nil {
		return nil, err
	}
	samples := pcmFloats(out.Bytes())
	e.log.WithField("samples", len(samples)).Debug("decoded pcm")
	return samples, nil
}

// pcmFloats reads little-endian float32 samples. A trailing partial sample
// is dropped.
func pcmFloats(b []byte) []float64 {
	out := make([]float64, len(b)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:])))
	}
	return out
}
