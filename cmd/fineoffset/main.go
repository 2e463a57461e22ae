package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lzrdig/FineOffsetNET/internal/app"
	"github.com/lzrdig/FineOffsetNET/internal/constants"
	"github.com/lzrdig/FineOffsetNET/internal/log"
	"github.com/lzrdig/FineOffsetNET/pkg/config"
)

const modeServe = "serve"

func main() {
	cfgFile := flag.String("config", "", "Path to YAML configuration file; built-in defaults are used when empty")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	mode := flag.String("mode", app.ModeSummary, "What to do: serve, status, settings, history, summary or none")
	format := flag.String("format", app.FormatText, "Output format: text, csv (history only), json or msgpack")
	count := flag.Int("count", 0, "Number of history records to read; 0 uses history_count from the configuration")
	device := flag.String("device", "", "hidraw device node, overrides station.device")
	address := flag.String("address", "", "host:port of a network bridge or emulator, overrides station.address")
	setTimezone := flag.Int("set-timezone", 0, "Set the console timezone in hours relative to CET (-12..12)")
	setReadPeriod := flag.Int("set-read-period", 0, "Set the minutes between history records (1..240)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fineoffset %s\n", constants.Version)
		os.Exit(0)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	provider, cfgData, err := loadConfig(*cfgFile, *device, *address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg := cfgData.Log
	logCfg.Debug = logCfg.Debug || *debug
	if err := log.Configure(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(provider, log.GetSugaredLogger())

	if *mode == modeServe {
		if err := application.Run(ctx); err != nil {
			log.Errorf("Application error: %v", err)
			log.Exit(1)
		}
		return
	}

	opts := app.QueryOptions{Mode: *mode, Format: *format, Count: *count}
	if *mode == "none" {
		opts.Mode = app.ModeNone
	}
	if set["set-timezone"] {
		opts.Timezone = setTimezone
	}
	if set["set-read-period"] {
		opts.ReadPeriod = setReadPeriod
	}
	if err := application.Query(ctx, opts, os.Stdout); err != nil {
		log.Errorf("Query failed: %v", err)
		log.Exit(1)
	}
}

// loadConfig reads cfgFile when given, applies flag overrides and returns a
// provider serving the result.
func loadConfig(cfgFile, device, address string) (config.ConfigProvider, *config.ConfigData, error) {
	cfgData := config.Default()
	if cfgFile != "" {
		filename, _ := filepath.Abs(cfgFile)
		loaded, err := config.NewYAMLProvider(filename).LoadConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
		}
		cfgData = loaded
	}

	if device != "" {
		cfgData.Station.Device = device
		cfgData.Station.Transport = config.TransportHIDRaw
	}
	if address != "" {
		cfgData.Station.Address = address
		if device == "" {
			cfgData.Station.Transport = config.TransportNetwork
		}
	}

	provider, err := config.NewStaticProvider(cfgData)
	if err != nil {
		return nil, nil, err
	}
	cfgData, err = provider.LoadConfig()
	return provider, cfgData, err
}
