package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/richinsley/glbackend/cbackend"
	"github.com/richinsley/glbackend/glfwcontext"
	"github.com/richinsley/glbackend/graphics"
	"github.com/richinsley/glbackend/headless"
	"github.com/richinsley/glbackend/options"
	"github.com/richinsley/glbackend/renderer"
)

func init() {
	runtime.LockOSThread()
}

func runWindowed(ctx context.Context, opts *options.Options) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	win, err := glfwcontext.New(opts, true)
	if err != nil {
		return err
	}
	defer win.Shutdown()

	p := renderer.NewPresenter(win.Backend(),
		renderer.WithClearColor(opts.ClearColor),
		renderer.WithShouldClose(win.ShouldClose),
		renderer.WithPollEvents(win.PollEvents),
	)
	return present(ctx, p, opts.Frames)
}

func runHeadless(ctx context.Context, opts *options.Options) error {
	h, err := headless.NewHeadless(opts.Width, opts.Height, opts.GLMajor, opts.GLMinor)
	if err != nil {
		return err
	}
	defer h.Shutdown()

	frames := opts.Frames
	if frames == 0 {
		frames = 1
	}
	return present(ctx, renderer.NewPresenter(h.Backend(), renderer.WithClearColor(opts.ClearColor)), frames)
}

func present(ctx context.Context, p *renderer.Presenter, frames int) error {
	if err := p.Init(); err != nil {
		return err
	}
	err := p.Run(ctx, frames)
	log.Printf("Presented %d frame(s)", p.Frames())
	if errors.Is(err, graphics.ErrContextLost) {
		return fmt.Errorf("context lost, not recreating: %w", err)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	var configPath = flag.String("config", "", "Path to a TOML config file")
	var headlessMode = flag.Bool("headless", false, "Render to an EGL pbuffer instead of a window")
	var frames = flag.Int("frames", -1, "Number of frames to present (0 = until closed)")
	var width = flag.Int("width", 0, "Framebuffer width")
	var height = flag.Int("height", 0, "Framebuffer height")
	var debug = flag.Bool("debug", false, "Enable debug logging")
	var help = flag.Bool("help", false, "Show help message")

	flag.Parse()

	if *help {
		fmt.Println("External GL context backend demo")
		flag.PrintDefaults()
		return
	}

	opts := options.Default()
	if *configPath != "" {
		var err error
		opts, err = options.Load(*configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "headless":
			opts.Headless = *headlessMode
		case "frames":
			opts.Frames = *frames
		case "width":
			opts.Width = *width
		case "height":
			opts.Height = *height
		case "debug":
			opts.Debug = *debug
		}
	})
	if err := opts.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	if opts.Debug {
		cbackend.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if opts.Headless {
		log.Println("Starting headless presentation...")
		err = runHeadless(ctx, opts)
	} else {
		log.Println("Starting windowed presentation...")
		err = runWindowed(ctx, opts)
	}
	if err != nil {
		log.Fatalf("Presentation failed: %v", err)
	}
}
