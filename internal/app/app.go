package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lzrdig/FineOffsetNET/internal/controllers/restserver"
	"github.com/lzrdig/FineOffsetNET/internal/log"
	"github.com/lzrdig/FineOffsetNET/internal/transport"
	"github.com/lzrdig/FineOffsetNET/internal/types"
	"github.com/lzrdig/FineOffsetNET/internal/weatherstations"
	"github.com/lzrdig/FineOffsetNET/internal/weatherstations/fineoffset"
	"github.com/lzrdig/FineOffsetNET/pkg/config"
)

const readingBuffer = 64

type transportOpener func(ctx context.Context, cfg config.StationData, logger *zap.SugaredLogger) (transport.Transport, error)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
	open           transportOpener
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
		open:           weatherstations.OpenTransport,
	}
}

// openStation connects to the console described by the configuration.
func (a *App) openStation(ctx context.Context, wg *sync.WaitGroup, readings chan types.Reading) (*fineoffset.Station, *config.ConfigData, error) {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("error loading configuration: %w", err)
	}

	t, err := a.open(ctx, cfg.Station, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to station [%s]: %w", cfg.Station.Name, err)
	}

	station, err := fineoffset.NewStation(ctx, wg, cfg.Station, t, readings, a.logger)
	if err != nil {
		t.Close()
		return nil, nil, err
	}
	return station, cfg, nil
}

// Run polls the station and serves the REST API until ctx is cancelled or a
// component fails.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	g, gCtx := errgroup.WithContext(ctx)

	readings := make(chan types.Reading, readingBuffer)
	station, cfg, err := a.openStation(gCtx, &wg, readings)
	if err != nil {
		return err
	}
	defer station.Close()

	if err := startStation(station); err != nil {
		return err
	}

	g.Go(func() error {
		consumeReadings(gCtx, readings, a.logger)
		return nil
	})

	if cfg.RESTServer.Enabled {
		ctrl, err := restserver.NewController(cfg.RESTServer, station, a.logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return ctrl.Run(gCtx)
		})
	}

	log.Info("Application started successfully")

	err = g.Wait()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// startStation begins background polling of ws.
func startStation(ws weatherstations.WeatherStation) error {
	if err := ws.StartWeatherStation(); err != nil {
		return fmt.Errorf("could not start station [%s]: %w", ws.StationName(), err)
	}
	return nil
}

// consumeReadings logs readings published by the station until ctx is done.
func consumeReadings(ctx context.Context, readings <-chan types.Reading, logger *zap.SugaredLogger) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-readings:
			logger.Infow("reading",
				"station", r.StationName,
				"index", r.Index,
				"timestamp", r.Timestamp,
				"contact_lost", r.ContactLost,
				"values", r.ToMap(),
			)
		}
	}
}
