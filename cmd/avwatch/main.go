package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dhavalsavalia/avwatch/internal/config"
	"github.com/dhavalsavalia/avwatch/internal/device"
	"github.com/dhavalsavalia/avwatch/internal/logging"
	"github.com/dhavalsavalia/avwatch/internal/ui"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var version = "dev"

func main() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(versionFlag, "v", false, "Print version and exit (shorthand)")

	configPath := flag.String("config", "", "Path to config file")
	initConfig := flag.Bool("init", false, "Generate example config file")
	noTUI := flag.Bool("no-tui", false, "Headless mode: print the inventory on every change")
	interval := flag.Duration("interval", 0, "Override detector.poll_interval")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("avwatch %s\n", version)
		os.Exit(0)
	}

	if *initConfig {
		path, err := config.GenerateExampleConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created config at %s\n", path)
		os.Exit(0)
	}

	// A .env in the working directory may carry AVWATCH_* overrides.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *interval != 0 {
		if *interval < config.MinPollInterval {
			fmt.Fprintf(os.Stderr, "Error: -interval must be at least %s\n", config.MinPollInterval)
			os.Exit(1)
		}
		cfg.Detector.PollInterval = config.Duration(*interval)
	}

	if *noTUI {
		if err := runHeadless(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newController wires the platform collaborators into a detector.
func newController(cfg *config.Config, logger zerolog.Logger) (*device.Controller, device.Enumerator) {
	enum := device.PlatformEnumerator()

	var source device.ChangeSource
	if cfg.Detector.NativeEnabled() {
		source = device.PlatformChangeSource(time.Duration(cfg.Detector.Debounce), logger)
	}

	ctrl := device.New(enum, source,
		device.WithInterval(time.Duration(cfg.Detector.PollInterval)),
		device.WithEnumerateTimeout(time.Duration(cfg.Detector.EnumerateTimeout)),
		device.WithLogger(logger),
	)
	return ctrl, enum
}

func runTUI(cfg *config.Config) error {
	logger, closeLog, err := logging.Open(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctrl, enum := newController(cfg, logger)

	model := ui.NewModel(cfg, ctrl, enum)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// runHeadless prints the inventory at start and after every change until
// interrupted.
func runHeadless(cfg *config.Config) error {
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	ctrl, enum := newController(cfg, logger)
	if !ctrl.Capabilities().MediaDevices {
		return device.ErrUnsupported
	}

	fmt.Printf("avwatch %s - Headless mode\n", version)

	printer := &inventoryPrinter{
		out:     os.Stdout,
		enum:    enum,
		kinds:   cfg.Display.KindSet(),
		timeout: time.Duration(cfg.Detector.EnumerateTimeout),
		log:     logger,
	}
	printer.print("initial")

	ctrl.RegisterObserver(printer)
	ctrl.Start()
	defer ctrl.Stop()

	logger.Info().Str("strategy", ctrl.State().String()).Msg("detecting device changes")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	ctrl.RemoveObserver(printer)
	return nil
}

// inventoryPrinter re-enumerates and prints the device list on each change.
type inventoryPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	enum    device.Enumerator
	kinds   map[device.Kind]bool
	timeout time.Duration
	log     zerolog.Logger
}

func (p *inventoryPrinter) DeviceChanged() {
	p.print("changed")
}

func (p *inventoryPrinter) print(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	devices, err := p.enum.Enumerate(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("device enumeration failed")
		return
	}

	var shown []device.Descriptor
	for _, d := range device.Snapshot(devices).Canonical() {
		if len(p.kinds) == 0 || p.kinds[d.Kind] {
			shown = append(shown, d)
		}
	}

	fmt.Fprintf(p.out, "\n[%s] %s: %d device(s)\n", time.Now().Format("15:04:05"), reason, len(shown))
	for _, d := range shown {
		label := d.Label
		if label == "" {
			label = "(unnamed)"
		}
		fmt.Fprintf(p.out, "  %-12s %s  %s\n", d.Kind, label, d.ID)
	}
}
