package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lsst/display-ds9/ds9"
	"github.com/lsst/display-ds9/internal/config"
	"github.com/lsst/display-ds9/internal/logging"
	"github.com/lsst/display-ds9/telemetry"
	"github.com/lsst/display-ds9/xpa"
)

func main() {
	cfgPath := flag.String("config", "", "Path to configuration file (optional)")
	target := flag.String("target", "", "XPA access point template (default: resolved from XPA_PORT)")
	get := flag.String("get", "", "Issue a get request with the given parameters")
	set := flag.String("set", "", "Issue a set request with the given parameters")
	data := flag.String("data", "", "Data to send with -set; use @path to stream a file")
	healthcheck := flag.Bool("healthcheck", false, "Check that the XPA client tools are reachable and exit")
	flag.Parse()

	cfg := &config.Config{}
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}
		cfg = loaded
	}

	logger, cleanup, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup logger")
	}
	defer cleanup()
	log.Logger = logger

	collector := telemetry.Collector(telemetry.Noop())
	if cfg.Telemetry.Enabled {
		provider := strings.ToLower(strings.TrimSpace(cfg.Telemetry.Provider))
		switch provider {
		case "", "prometheus":
			prom, err := telemetry.NewPrometheusCollector(nil)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to setup telemetry")
			}
			collector = prom
		default:
			logger.Fatal().Str("provider", cfg.Telemetry.Provider).Msg("unsupported telemetry provider")
		}
	}

	opener := xpa.NewCommandOpener(xpa.Settings{
		GetPath: cfg.Endpoint.GetPath,
		SetPath: cfg.Endpoint.SetPath,
		Timeout: cfg.Endpoint.Timeout.Duration,
	})
	manager := xpa.NewManager(opener, xpa.WithLogger(logger), xpa.WithCollector(collector))

	if *healthcheck {
		if _, err := manager.Acquire(false); err != nil {
			fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	point := *target
	if point == "" {
		point = cfg.Endpoint.AccessPoint
	}
	if point == "" {
		point = ds9.AccessPoint()
	}

	switch {
	case *get != "":
		out, err := manager.Get(nil, point, *get, "")
		if err != nil {
			logger.Fatal().Err(err).Str("params", *get).Msg("get failed")
		}
		fmt.Print(out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Println()
		}
	case *set != "":
		out, err := runSet(manager, point, *set, *data)
		if err != nil {
			logger.Fatal().Err(err).Str("params", *set).Msg("set failed")
		}
		if out != "" {
			fmt.Fprintln(os.Stderr, out)
			os.Exit(1)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runSet(manager *xpa.Manager, point, params, data string) (string, error) {
	if strings.HasPrefix(data, "@") {
		f, err := os.Open(strings.TrimPrefix(data, "@"))
		if err != nil {
			return "", fmt.Errorf("open data file: %w", err)
		}
		defer f.Close()
		return manager.SetFd(nil, point, params, "", f)
	}
	return manager.Set(nil, point, params, "", []byte(data), -1)
}
