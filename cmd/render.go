package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/katharostech/cast2gif/internal"
	"github.com/katharostech/cast2gif/internal/cast"
	"github.com/katharostech/cast2gif/internal/encode"
	"github.com/katharostech/cast2gif/internal/pipeline"
	"github.com/katharostech/cast2gif/internal/raster"
	"github.com/katharostech/cast2gif/internal/term"
	"github.com/katharostech/cast2gif/internal/theme"
)

var (
	renderOut      string
	renderFormat   string
	renderInterval float64
	renderWorkers  int
	renderTheme    string
	renderFont     string
	renderFontSize float64
	renderNoCursor bool
)

// renderCmd represents the render command
var renderCmd = &cobra.Command{
	Use:   "render <cast-file>",
	Short: "Render a cast recording to an animated image",
	Long: `Render an asciinema cast file to an animated GIF, or to a directory of
PNG frames with --format png.

The recording is sampled at a fixed interval (10 frames per second by
default); each sampled screen state becomes one output frame. A run either
produces a complete output file or fails without leaving one behind.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := renderOptions(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runRender(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output path (default: <cast>.gif, or <cast>-frames/ for png)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "gif", "Output format: gif or png")
	renderCmd.Flags().Float64Var(&renderInterval, "interval", 0.1, "Sampling interval in seconds")
	renderCmd.Flags().IntVar(&renderWorkers, "workers", 0, "Rasterization workers (default: number of CPUs)")
	renderCmd.Flags().StringVar(&renderTheme, "theme", theme.DefaultName, "Color theme: built-in name or YAML file")
	renderCmd.Flags().StringVar(&renderFont, "font", "", "Monospace TTF/OTF font file (default: embedded Go Mono)")
	renderCmd.Flags().Float64Var(&renderFontSize, "font-size", 14, "Font size in points")
	renderCmd.Flags().BoolVar(&renderNoCursor, "no-cursor", false, "Do not draw the cursor block")
}

// renderOpts is the validated configuration of one conversion run.
type renderOpts struct {
	castPath   string
	outPath    string
	format     string
	interval   float64
	workers    int
	themeName  string
	fontPath   string
	fontSize   float64
	showCursor bool
}

// renderOptions validates the render flags before any pipeline work starts.
func renderOptions(castPath string) (*renderOpts, error) {
	if renderInterval <= 0 {
		return nil, fmt.Errorf("invalid sampling interval %g: must be positive", renderInterval)
	}
	if renderFontSize <= 0 {
		return nil, fmt.Errorf("invalid font size %g: must be positive", renderFontSize)
	}
	workers := renderWorkers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		return nil, fmt.Errorf("invalid worker count %d: must be at least 1", renderWorkers)
	}

	format := strings.ToLower(renderFormat)
	switch format {
	case "gif", "png":
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: gif, png)", renderFormat)
	}

	out := renderOut
	if out == "" {
		base := strings.TrimSuffix(castPath, filepath.Ext(castPath))
		if format == "png" {
			out = base + "-frames"
		} else {
			out = base + ".gif"
		}
	}

	return &renderOpts{
		castPath:   castPath,
		outPath:    out,
		format:     format,
		interval:   renderInterval,
		workers:    workers,
		themeName:  renderTheme,
		fontPath:   renderFont,
		fontSize:   renderFontSize,
		showCursor: !renderNoCursor,
	}, nil
}

func runRender(ctx context.Context, opts *renderOpts) error {
	// First pass over the cast: header validation, duration and event
	// count for the progress display and the empty-session case.
	header, events, duration, err := cast.ReadInfo(opts.castPath)
	if err != nil {
		return err
	}
	totalFrames := term.FrameCount(duration, opts.interval, events)
	if totalFrames == 0 {
		internal.LogWarn("Recording has no events; nothing to render")
		return nil
	}
	internal.LogDebug("Rendering %d frame(s) from %d event(s) over %.2fs", totalFrames, events, duration)

	th, err := theme.Load(opts.themeName)
	if err != nil {
		return err
	}
	palette := theme.NewPalette(th)

	fonts, err := raster.LoadFontSet(opts.fontPath, opts.fontSize)
	if err != nil {
		return err
	}
	cache := raster.NewGlyphCache(fonts)
	renderer := raster.NewRenderer(palette, cache, fonts, header.Height, header.Width, opts.showCursor)

	w, h := renderer.Size()
	internal.LogDebug("Terminal %dx%d cells, frame %dx%d px, %d worker(s)", header.Width, header.Height, w, h, opts.workers)

	// Second pass: the actual replay feeding the pipeline.
	reader, closeCast, err := cast.Open(opts.castPath)
	if err != nil {
		return err
	}
	defer func() { _ = closeCast() }()

	sink, finalize, discard, err := openSink(opts)
	if err != nil {
		return err
	}

	engine := term.NewEngine(header.Height, header.Width)
	sampler := term.NewSampler(engine, opts.interval)
	feed := func(ctx context.Context, submit func(*term.Snapshot) error) error {
		return sampler.Run(reader, func(snap *term.Snapshot) error {
			if err := palette.ValidateSnapshot(snap); err != nil {
				return err
			}
			return submit(snap)
		})
	}

	progress := internal.NewRenderProgress(totalFrames)
	progress.Start(ctx)

	err = pipeline.Run(ctx, pipeline.Config{Workers: opts.workers}, feed, renderer, sink, progress)
	progress.Finish(err)
	if err != nil {
		discard()
		return err
	}
	if err := finalize(); err != nil {
		return err
	}

	internal.LogInfo("Wrote %s", opts.outPath)
	return nil
}

// openSink creates the output sink plus its commit and discard actions. The
// GIF path writes to a temporary file that is renamed into place only after
// a fully successful run, so a failed or cancelled run never leaves a file
// that looks complete.
func openSink(opts *renderOpts) (encode.Sink, func() error, func(), error) {
	switch opts.format {
	case "png":
		sink := encode.NewPNGDir(opts.outPath)
		finalize := func() error { return nil }
		discard := func() {
			if err := os.RemoveAll(opts.outPath); err != nil {
				internal.LogWarn("Failed to remove partial output %s: %v", opts.outPath, err)
			}
		}
		return sink, finalize, discard, nil

	default:
		tmpPath := opts.outPath + ".tmp"
		f, err := os.Create(tmpPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		delayCS := int(opts.interval*100 + 0.5)
		sink := encode.NewGIF(f, delayCS)

		finalize := func() error {
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			if err := os.Rename(tmpPath, opts.outPath); err != nil {
				return fmt.Errorf("failed to move output into place: %w", err)
			}
			return nil
		}
		discard := func() {
			_ = f.Close()
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				internal.LogWarn("Failed to remove partial output %s: %v", tmpPath, err)
			}
		}
		return sink, finalize, discard, nil
	}
}
