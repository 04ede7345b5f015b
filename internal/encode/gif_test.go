package encode

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/katharostech/cast2gif/internal/raster"
)

// solidFrame builds a frame filled with one color.
func solidFrame(index, w, h int, c color.RGBA) *raster.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return &raster.Frame{Index: index, Image: img}
}

// gradientFrame builds a frame with far more than 256 distinct colors.
func gradientFrame(index, w, h int) *raster.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x * y), A: 0xff})
		}
	}
	return &raster.Frame{Index: index, Image: img}
}

func TestGIF_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sink := NewGIF(&buf, 10)

	colors := []color.RGBA{
		{R: 0xff, A: 0xff},
		{G: 0xff, A: 0xff},
		{B: 0xff, A: 0xff},
	}
	for i, c := range colors {
		if err := sink.Submit(solidFrame(i, 8, 4, c)); err != nil {
			t.Fatalf("Submit(%d) error: %v", i, err)
		}
	}
	if err := sink.Finish(); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}

	decoded, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("DecodeAll() error: %v", err)
	}
	if len(decoded.Image) != 3 {
		t.Fatalf("decoded %d frames, want 3", len(decoded.Image))
	}
	if decoded.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0 (loop forever)", decoded.LoopCount)
	}
	if decoded.Config.Width != 8 || decoded.Config.Height != 4 {
		t.Errorf("logical screen = %dx%d, want 8x4", decoded.Config.Width, decoded.Config.Height)
	}
	for i, d := range decoded.Delay {
		if d != 10 {
			t.Errorf("frame %d delay = %d, want 10", i, d)
		}
	}
	for i, img := range decoded.Image {
		want := colors[i]
		r, g, b, _ := img.At(0, 0).RGBA()
		got := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 0xff}
		if got != want {
			t.Errorf("frame %d pixel = %+v, want %+v", i, got, want)
		}
	}
}

func TestGIF_DelayClamped(t *testing.T) {
	var buf bytes.Buffer
	sink := NewGIF(&buf, 0)
	if err := sink.Submit(solidFrame(0, 2, 2, color.RGBA{A: 0xff})); err != nil {
		t.Fatal(err)
	}
	if err := sink.Finish(); err != nil {
		t.Fatal(err)
	}

	decoded, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Delay[0] != 1 {
		t.Errorf("delay = %d, want clamp to 1", decoded.Delay[0])
	}
}

func TestGIF_OutOfOrderRejected(t *testing.T) {
	sink := NewGIF(new(bytes.Buffer), 5)
	if err := sink.Submit(solidFrame(0, 2, 2, color.RGBA{A: 0xff})); err != nil {
		t.Fatal(err)
	}
	if err := sink.Submit(solidFrame(2, 2, 2, color.RGBA{A: 0xff})); err == nil {
		t.Error("Submit() accepted a skipped index")
	}
	if err := sink.Submit(solidFrame(0, 2, 2, color.RGBA{A: 0xff})); err == nil {
		t.Error("Submit() accepted a duplicate index")
	}
}

func TestGIF_MismatchedSizeRejected(t *testing.T) {
	sink := NewGIF(new(bytes.Buffer), 5)
	if err := sink.Submit(solidFrame(0, 4, 4, color.RGBA{A: 0xff})); err != nil {
		t.Fatal(err)
	}
	if err := sink.Submit(solidFrame(1, 4, 5, color.RGBA{A: 0xff})); err == nil {
		t.Error("Submit() accepted a frame with different dimensions")
	}
}

func TestGIF_NoFrames(t *testing.T) {
	sink := NewGIF(new(bytes.Buffer), 5)
	if err := sink.Finish(); err == nil {
		t.Error("Finish() succeeded with no frames")
	}
}

func TestGIF_DitherFallback(t *testing.T) {
	var buf bytes.Buffer
	sink := NewGIF(&buf, 5)
	if err := sink.Submit(gradientFrame(0, 256, 64)); err != nil {
		t.Fatalf("Submit() error: %v", err)
	}
	if err := sink.Finish(); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}

	decoded, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("DecodeAll() error: %v", err)
	}
	if len(decoded.Image) != 1 {
		t.Fatalf("decoded %d frames, want 1", len(decoded.Image))
	}
	if n := len(decoded.Image[0].Palette); n > 256 {
		t.Errorf("palette has %d entries, want at most 256", n)
	}
}

func TestPalettize_ExactSmallPalette(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 0x10, A: 0xff})
	img.SetRGBA(1, 0, color.RGBA{G: 0x20, A: 0xff})
	img.SetRGBA(2, 0, color.RGBA{R: 0x10, A: 0xff})
	img.SetRGBA(3, 0, color.RGBA{B: 0x30, A: 0xff})

	out := palettize(img)
	if len(out.Palette) != 3 {
		t.Errorf("palette has %d entries, want 3", len(out.Palette))
	}
	for x := 0; x < 4; x++ {
		if got, want := out.At(x, 0), img.RGBAAt(x, 0); !sameColor(got, want) {
			t.Errorf("pixel %d = %+v, want %+v", x, got, want)
		}
	}
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}
