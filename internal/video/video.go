package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"time"

	"github.com/ivlev/drillanim/internal/system"
)

// Still is one rendered sample with its display duration.
type Still struct {
	Image    image.Image
	Duration time.Duration
}

// AnimationEncoder turns an ordered list of stills into a looping animation.
type AnimationEncoder interface {
	Encode(ctx context.Context, stills []Still) ([]byte, error)
}

// Transcoder converts an encoded animation file into a compressed video container.
type Transcoder interface {
	Transcode(ctx context.Context, input, output string) error
}

// FFmpegTranscoder converts a GIF into H.264 MP4 locally.
type FFmpegTranscoder struct {
	// Encoder is an ffmpeg encoder name; "" or "auto" picks the best available.
	Encoder string
	// Quality: CRF for libx264, CQ for NVENC, Q*100 kbit/s for VideoToolbox.
	// Zero picks a per-encoder default.
	Quality int
}

func (t *FFmpegTranscoder) Transcode(ctx context.Context, input, output string) error {
	encoder := t.Encoder
	if encoder == "" || encoder == "auto" {
		encoder = system.GetBestH264Encoder()
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", buildArgs(input, output, encoder, t.Quality)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg transcode error: %w, output: %s", err, out.String())
	}
	return nil
}

func buildArgs(input, output, encoder string, quality int) []string {
	args := []string{
		"-y",
		"-i", input,
		"-movflags", "+faststart",
		// H.264 needs even dimensions
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}

	// Качество в зависимости от энкодера
	switch encoder {
	case "h264_videotoolbox":
		if quality <= 0 {
			quality = 50
		}
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		if quality <= 0 {
			quality = 23
		}
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		if quality <= 0 {
			quality = 23
		}
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	return append(args, output)
}
