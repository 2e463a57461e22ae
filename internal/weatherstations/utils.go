package weatherstations

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lzrdig/FineOffsetNET/internal/transport"
	"github.com/lzrdig/FineOffsetNET/pkg/config"
)

const defaultSysRoot = "/sys"

// ValidateTransport validates that the configured transport can be opened
func ValidateTransport(cfg config.StationData) error {
	switch cfg.Transport {
	case config.TransportNetwork:
		if cfg.Address == "" {
			return fmt.Errorf("station [%s] network transport must define an address", cfg.Name)
		}
	case config.TransportAuto, config.TransportHIDRaw, "":
	default:
		return fmt.Errorf("station [%s] has unknown transport %q", cfg.Name, cfg.Transport)
	}
	return nil
}

// OpenTransport opens the configured link and wraps it with retries. The
// auto transport prefers an attached USB console and falls back to the
// network address when one is configured.
func OpenTransport(ctx context.Context, cfg config.StationData, logger *zap.SugaredLogger) (transport.Transport, error) {
	if err := ValidateTransport(cfg); err != nil {
		return nil, err
	}

	link, err := openLink(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	dev := transport.NewDevice(link, cfg.Timeout, logger)
	return transport.WithRetry(dev, cfg.Retries, cfg.RetryBackoff, logger), nil
}

func openLink(ctx context.Context, cfg config.StationData, logger *zap.SugaredLogger) (transport.Link, error) {
	if cfg.Transport == config.TransportNetwork {
		logger.Infof("connecting to station [%s] at %s", cfg.Name, cfg.Address)
		return transport.DialNetwork(ctx, cfg.Address, cfg.Timeout)
	}

	device := cfg.Device
	if device == "" {
		sysRoot := cfg.SysRoot
		if sysRoot == "" {
			sysRoot = defaultSysRoot
		}
		found, err := transport.FindHIDRaw(sysRoot)
		switch {
		case err == nil:
			device = found
		case errors.Is(err, transport.ErrNoDevice) && cfg.Transport == config.TransportAuto && cfg.Address != "":
			logger.Infof("no USB console attached, connecting to station [%s] at %s", cfg.Name, cfg.Address)
			return transport.DialNetwork(ctx, cfg.Address, cfg.Timeout)
		default:
			return nil, err
		}
	}

	logger.Infof("opening station [%s] on %s", cfg.Name, device)
	return transport.OpenHIDRaw(device)
}
