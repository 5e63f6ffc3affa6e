// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command gpudevinfo opens a native device, prints its capabilities and
// exercises the context lifecycle: an offscreen clear with an asynchronous
// readback, an optional simulated context loss, and a screenshot.
//
// Usage:
//
//	gpudevinfo [-backend noop] [-config attrs.toml] [-lose] [-output shot.png]
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/gpudev"
	_ "github.com/gogpu/gpudev/backend/wgpu"
	"github.com/gogpu/gpudev/native"
	"github.com/gogpu/gpudev/resource"
)

// loser is implemented by devices that can simulate a context loss.
type loser interface {
	Lose()
	Restore()
}

func main() {
	var (
		configPath = flag.String("config", "", "TOML attributes file")
		backend    = flag.String("backend", "", "preferred backend (vulkan, noop)")
		width      = flag.Int("width", 256, "drawing buffer width")
		height     = flag.Int("height", 256, "drawing buffer height")
		legacy     = flag.Bool("legacy", false, "request a Level1 context")
		power      = flag.String("power", native.PowerHighPerformance, "power preference (high-performance, low-power)")
		lose       = flag.Bool("lose", false, "simulate a context loss and restore")
		output     = flag.String("output", "", "write a PNG screenshot of the drawing buffer")
		thumb      = flag.Int("thumb", 0, "scale the screenshot to fit this many pixels per side")
		lang       = flag.String("lang", "", "report language (BCP 47)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	gpudev.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := fileConfig{Attributes: native.DefaultAttributes()}
	cfg.Attributes.Width, cfg.Attributes.Height = *width, *height
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			log.Fatal(err)
		}
	}
	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Attributes.PreferredBackend = *backend
		case "width":
			cfg.Attributes.Width = *width
		case "height":
			cfg.Attributes.Height = *height
		case "legacy":
			cfg.Attributes.PreferLegacy = *legacy
		case "power":
			cfg.Attributes.PowerPreference = *power
		case "lang":
			cfg.Report.Language = *lang
		}
	})

	err := run(cfg, options{
		verbose: *verbose,
		lose:    *lose,
		output:  *output,
		thumb:   *thumb,
	})
	if err != nil {
		log.Fatal(err)
	}
}

// options are the flags that drive run beyond the file config.
type options struct {
	verbose bool
	lose    bool
	output  string
	thumb   int
}

func run(cfg fileConfig, opts options) error {
	p := message.NewPrinter(language.Make(cfg.Report.Language))

	dev, err := native.Open(cfg.Attributes)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	ctx, err := gpudev.New(dev, gpudev.WithDebug(opts.verbose))
	if err != nil {
		dev.Release()
		return fmt.Errorf("create context: %w", err)
	}
	defer ctx.Destroy(gpudev.DestroyOptions{})

	printCaps(p, ctx)

	if err := exercise(ctx); err != nil {
		return fmt.Errorf("exercise: %w", err)
	}

	if opts.lose {
		if err := loseAndRestore(ctx); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		p.Printf("restored at %v, epoch %d\n", ctx.LastRestore().Timestamp, ctx.LastRestore().Epoch)
	}

	if opts.output != "" {
		if err := screenshot(ctx, opts.output, opts.thumb); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
		p.Printf("screenshot written to %s\n", opts.output)
	}

	printStats(p, ctx.Stats())
	return nil
}

func printCaps(p *message.Printer, ctx *gpudev.Context) {
	set := ctx.Caps()
	w, h := ctx.Device().DrawingBufferSize()
	p.Printf("level:                %v\n", set.Level)
	p.Printf("drawing buffer:       %d x %d\n", w, h)
	p.Printf("max texture size:     %d\n", set.Limits.MaxTextureSize)
	p.Printf("max 3D texture size:  %d\n", set.Limits.Max3DTextureSize)
	p.Printf("max renderbuffer:     %d\n", set.Limits.MaxRenderbufferSize)
	p.Printf("max draw buffers:     %d\n", set.Limits.MaxDrawBuffers)
	p.Printf("texture image units:  %d\n", set.Limits.MaxTextureImageUnits)
	p.Printf("extensions:\n")
	for _, ext := range set.Extensions() {
		p.Printf("  %s\n", ext)
	}
}

// exercise clears the drawing buffer and reads it back asynchronously,
// then reads an offscreen target through its framebuffer.
func exercise(ctx *gpudev.Context) error {
	w, h := ctx.Device().DrawingBufferSize()
	ctx.Clear(0.2, 0.4, 0.8, 1)

	pixels := make([]uint8, w*h*4)
	wait, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ctx.ReadPixelsAsync(0, 0, w, h, pixels).Await(wait); err != nil {
		return fmt.Errorf("read pixels: %w", err)
	}
	if err := ctx.WaitForGpuCommandsComplete().Await(wait); err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}

	rt, err := ctx.CreateRenderTarget(gpudev.RenderTargetDesc{Width: w, Height: h, Depth: true})
	if err != nil {
		return err
	}
	defer rt.Destroy()

	rt.Bind()
	if err := ctx.ReadPixels(0, 0, w, h, pixels); err != nil {
		return fmt.Errorf("read render target: %w", err)
	}
	ctx.UnbindFramebuffer()
	return nil
}

// loseAndRestore drops the device and brings every resource back.
func loseAndRestore(ctx *gpudev.Context) error {
	l, ok := ctx.Device().(loser)
	if !ok {
		return fmt.Errorf("device %T cannot simulate loss", ctx.Device())
	}
	if _, err := ctx.Create(resource.BufferDesc{Label: "survivor", Size: 64}); err != nil {
		return err
	}
	l.Lose()
	ctx.SetContextLost()
	l.Restore()
	if err := ctx.HandleContextRestored(nil); err != nil {
		return err
	}
	ctx.Clear(0.2, 0.4, 0.8, 1)
	return nil
}

func screenshot(ctx *gpudev.Context, path string, thumb int) error {
	img, err := ctx.DrawingBufferPixelData()
	if err != nil {
		return err
	}
	if thumb > 0 {
		img = gpudev.Thumbnail(img, thumb, thumb)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printStats(p *message.Printer, s resource.Stats) {
	p.Printf("resources:            %d\n", s.Resources.Total())
	for _, k := range resource.Kinds() {
		if n := s.Resources.Of(k); n > 0 {
			p.Printf("  %-18s  %d\n", k, n)
		}
	}
	p.Printf("draws:                %d\n", s.DrawCount)
	p.Printf("instances:            %d\n", s.InstanceCount)
}
