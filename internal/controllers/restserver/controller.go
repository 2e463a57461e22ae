package restserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lzrdig/FineOffsetNET/internal/log"
	"github.com/lzrdig/FineOffsetNET/internal/weatherstations/fineoffset"
	"github.com/lzrdig/FineOffsetNET/pkg/config"
)

const shutdownTimeout = 5 * time.Second

// StationSource is the station whose latest scan the server exposes.
type StationSource interface {
	StationName() string
	Location() *time.Location
	Snapshot() (fineoffset.Snapshot, error)
}

// Controller represents the REST server controller
type Controller struct {
	restConfig config.RESTServerData
	Server     http.Server
	station    StationSource
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller
func NewController(rc config.RESTServerData, station StationSource, logger *zap.SugaredLogger) (*Controller, error) {
	if station == nil {
		return nil, errors.New("REST server needs a station")
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Infof("rest.listen_addr not provided; defaulting to %v (all interfaces)", config.DefaultListenAddr)
		rc.ListenAddr = config.DefaultListenAddr
	}
	if rc.Port == 0 {
		logger.Infof("rest.port not provided; defaulting to %v", config.DefaultRESTPort)
		rc.Port = config.DefaultRESTPort
	}

	ctrl := &Controller{
		restConfig: rc,
		station:    station,
		logger:     logger,
	}
	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// Run serves until ctx is cancelled, then shuts the server down.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Infof("Starting REST server on %v...", c.Server.Addr)

	errc := make(chan error, 1)
	go func() {
		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			errc <- c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key)
		} else {
			errc <- c.Server.ListenAndServe()
		}
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("REST server error: %w", err)
	case <-ctx.Done():
		c.logger.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return c.Server.Shutdown(shutdownCtx)
	}
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware(c.logger))

	router.HandleFunc("/settings", c.handlers.GetSettings).Methods(http.MethodGet)
	router.HandleFunc("/history", c.handlers.GetHistory).Methods(http.MethodGet)
	router.HandleFunc("/latest", c.handlers.GetLatest).Methods(http.MethodGet)
	router.HandleFunc("/rain", c.handlers.GetRain).Methods(http.MethodGet)
	router.HandleFunc("/summary", c.handlers.GetSummary).Methods(http.MethodGet)
	router.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)
	router.HandleFunc("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.WritePrometheus(w, true)
	}).Methods(http.MethodGet)

	return router
}
