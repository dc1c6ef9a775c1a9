package mediatools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ProbeResult is the subset of ffprobe output stored on a video.
type ProbeResult struct {
	Width    int
	Height   int
	Duration int // whole seconds
	Raw      []byte
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Prober reads technical metadata with ffprobe.
type Prober struct {
	Binary string
	Run    Runner
}

func NewProber(binary string) *Prober {
	return &Prober{Binary: binaryOr(binary, "ffprobe"), Run: ExecRunner}
}

func (p *Prober) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ffprobe: empty path")
	}
	output, err := p.Run(ctx, binaryOr(p.Binary, "ffprobe"), "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return nil, err
	}
	return ParseProbe(output)
}

// ParseProbe decodes ffprobe JSON. Width and height come from the first
// video stream; the duration prefers the container value.
func ParseProbe(output []byte) (*ProbeResult, error) {
	var out probeOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("ffprobe parse: %w", err)
	}
	res := &ProbeResult{Raw: append([]byte(nil), output...)}

	streamDuration := ""
	for _, s := range out.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			res.Width, res.Height = s.Width, s.Height
			streamDuration = s.Duration
			break
		}
	}
	d := parseSeconds(out.Format.Duration)
	if d == 0 {
		d = parseSeconds(streamDuration)
	}
	res.Duration = int(math.Floor(d))
	return res, nil
}

func parseSeconds(value string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
