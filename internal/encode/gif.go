package encode

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"

	"github.com/katharostech/cast2gif/internal/raster"
)

// GIF accumulates palettized frames and writes an animated, infinitely
// looping GIF on Finish. Frames are palettized as they arrive so only the
// single-byte-per-pixel form is retained.
type GIF struct {
	w       io.Writer
	delayCS int
	width   int
	height  int
	next    int
	frames  []*image.Paletted
	delays  []int
}

// NewGIF creates a GIF sink. delayCS is the per-frame delay in
// centiseconds; values below 1 are clamped, matching the format's
// resolution.
func NewGIF(w io.Writer, delayCS int) *GIF {
	if delayCS < 1 {
		delayCS = 1
	}
	return &GIF{w: w, delayCS: delayCS}
}

// Submit adds one frame to the animation.
func (g *GIF) Submit(frame *raster.Frame) error {
	if frame.Index != g.next {
		return fmt.Errorf("frame %d submitted out of order, want %d", frame.Index, g.next)
	}
	bounds := frame.Image.Bounds()
	if g.next == 0 {
		g.width = bounds.Dx()
		g.height = bounds.Dy()
	} else if bounds.Dx() != g.width || bounds.Dy() != g.height {
		return fmt.Errorf("frame %d is %dx%d, want %dx%d", frame.Index, bounds.Dx(), bounds.Dy(), g.width, g.height)
	}

	g.frames = append(g.frames, palettize(frame.Image))
	g.delays = append(g.delays, g.delayCS)
	g.next++
	return nil
}

// Finish encodes the accumulated animation.
func (g *GIF) Finish() error {
	if len(g.frames) == 0 {
		return fmt.Errorf("no frames to encode")
	}
	anim := &gif.GIF{
		Image:     g.frames,
		Delay:     g.delays,
		LoopCount: 0, // loop forever
		Config: image.Config{
			Width:  g.width,
			Height: g.height,
		},
	}
	if err := gif.EncodeAll(g.w, anim); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}

// palettize converts a frame to paletted form. Terminal frames rarely use
// more than a handful of colors, so an exact palette is built whenever the
// frame fits in 256 colors; otherwise the frame is redrawn with error
// diffusion over the fixed Plan9 palette.
func palettize(img *image.RGBA) *image.Paletted {
	bounds := img.Bounds()
	index := make(map[color.RGBA]uint8, 64)
	var colors []color.Color

	out := image.NewPaletted(bounds, nil)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			idx, ok := index[c]
			if !ok {
				if len(colors) == 256 {
					return dither(img)
				}
				idx = uint8(len(colors))
				index[c] = idx
				colors = append(colors, c)
			}
			out.Pix[out.PixOffset(x, y)] = idx
		}
	}
	out.Palette = colors
	return out
}

func dither(img *image.RGBA) *image.Paletted {
	out := image.NewPaletted(img.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(out, img.Bounds(), img, img.Bounds().Min)
	return out
}
