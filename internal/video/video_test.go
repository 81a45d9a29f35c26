package video

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"strings"
	"testing"
	"time"
)

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestGIFEncoderLoopsForever(t *testing.T) {
	stills := []Still{
		{Image: solid(color.White), Duration: 800 * time.Millisecond},
		{Image: solid(color.Black), Duration: 80 * time.Millisecond},
		{Image: solid(color.White), Duration: 800 * time.Millisecond},
	}
	data, err := (&GIFEncoder{Dither: true}).Encode(context.Background(), stills)
	if err != nil {
		t.Fatal(err)
	}
	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if anim.LoopCount != 0 {
		t.Errorf("Expected infinite loop (0), got %d", anim.LoopCount)
	}
	want := []int{80, 8, 80}
	if len(anim.Delay) != len(want) {
		t.Fatalf("Expected %d frames, got %d", len(want), len(anim.Delay))
	}
	for i := range want {
		if anim.Delay[i] != want[i] {
			t.Errorf("frame %d: expected delay %d, got %d", i, want[i], anim.Delay[i])
		}
	}
}

func TestGIFEncoderErrors(t *testing.T) {
	if _, err := (&GIFEncoder{}).Encode(context.Background(), nil); err != ErrNoStills {
		t.Errorf("Expected ErrNoStills, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&GIFEncoder{}).Encode(ctx, []Still{{Image: solid(color.White), Duration: time.Second}})
	if err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestDelayOf(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{1200 * time.Millisecond, 120},
		{40 * time.Millisecond, 4},
		{time.Millisecond, 1},
		{0, 1},
	}
	for _, tt := range tests {
		if got := delayOf(tt.d); got != tt.want {
			t.Errorf("delayOf(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestBuildArgsQuality(t *testing.T) {
	tests := []struct {
		encoder string
		quality int
		want    string
	}{
		{"libx264", 0, "-crf 23 -preset medium"},
		{"libx264", 18, "-crf 18 -preset medium"},
		{"h264_nvenc", 30, "-cq 30"},
		{"h264_videotoolbox", 75, "-b:v 7500k"},
	}
	for _, tt := range tests {
		args := strings.Join(buildArgs("in.gif", "out.mp4", tt.encoder, tt.quality), " ")
		if !strings.Contains(args, tt.want) {
			t.Errorf("%s: expected %q in %q", tt.encoder, tt.want, args)
		}
		if !strings.HasSuffix(args, "out.mp4") || !strings.Contains(args, "-c:v "+tt.encoder) {
			t.Errorf("%s: malformed args %q", tt.encoder, args)
		}
	}
}
