// Package main is the terminal demo for the pixelstorm input core. It runs
// one canvas session against a tcell screen: drag to draw, keys p/e/b/w/i/h
// to switch tools, u/r for undo/redo, Esc or Ctrl-C to quit.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	"github.com/dshills/pixelstorm/internal/app"
	"github.com/dshills/pixelstorm/internal/canvas"
	"github.com/dshills/pixelstorm/internal/platform/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	session, err := app.NewSession(cfg, app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize session: %v\n", err)
		return 1
	}
	defer session.Close()

	terminal, err := term.NewTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	if err := terminal.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init terminal: %v\n", err)
		return 1
	}
	defer terminal.Fini()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		terminal.Fini()
		session.Close()
		os.Exit(0)
	}()

	width, height := terminal.Size()
	session.SetRect(canvas.Rect{Width: float64(width), Height: float64(height)})
	session.SetColor(canvas.Color{R: 255, G: 255, B: 255, A: 255})

	return loop(session, terminal)
}

func loop(session *app.Session, terminal *term.Terminal) int {
	var mouse term.MouseState

	render := func() {
		terminal.Render(session.Buffer(), session.View(), session.Rect())
	}
	render()

	for {
		switch ev := terminal.PollEvent().(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
				return 0
			case ev.Key() == tcell.KeyRune:
				if err := session.HandleKey(ev.Rune(), false); err != nil {
					return fail(err)
				}
				render()
			}
		case *tcell.EventMouse:
			x, y := ev.Position()
			raw, ok := mouse.Translate(x, y, ev.Buttons(), ev.When())
			if !ok {
				continue
			}
			if err := session.HandlePointer(raw); err != nil {
				// Malformed events are dropped upstream; anything else
				// surfacing here already went through recovery.
				continue
			}
			render()
		case *tcell.EventResize:
			w, h := ev.Size()
			session.SetRect(canvas.Rect{Width: float64(w), Height: float64(h)})
			render()
		case nil:
			return 0
		}
	}
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

// loadConfig merges flags over the YAML config over .env overrides.
func loadConfig() (app.Config, error) {
	// Best effort: a missing .env is not an error.
	_ = godotenv.Load()

	var (
		configPath  string
		width       int
		height      int
		logFile     string
		debug       bool
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML configuration file")
	flag.StringVar(&configPath, "c", "", "Path to YAML configuration file (shorthand)")
	flag.IntVar(&width, "width", 0, "Canvas width in pixels")
	flag.IntVar(&height, "height", 0, "Canvas height in pixels")
	flag.StringVar(&logFile, "log", "", "Log file path")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("pixelstorm %s (%s)\n", version, commit)
		os.Exit(0)
	}

	cfg := app.DefaultAppConfig()
	if configPath == "" {
		configPath = os.Getenv("PIXELSTORM_CONFIG")
	}
	if configPath != "" {
		loaded, err := app.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if v := os.Getenv("PIXELSTORM_CANVAS_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Canvas.Width = n
		}
	}
	if v := os.Getenv("PIXELSTORM_CANVAS_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Canvas.Height = n
		}
	}
	if v := os.Getenv("PIXELSTORM_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}

	if width > 0 {
		cfg.Canvas.Width = width
	}
	if height > 0 {
		cfg.Canvas.Height = height
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if debug {
		cfg.Log.Development = true
	}

	return cfg, cfg.Validate()
}
