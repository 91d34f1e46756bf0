package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hybridecologies/adcbridge/internal/logging"
	"github.com/hybridecologies/adcbridge/internal/observability"
	"github.com/hybridecologies/adcbridge/pkg/adc"
	"github.com/hybridecologies/adcbridge/pkg/chancfg"
	"github.com/hybridecologies/adcbridge/pkg/config"
	"github.com/hybridecologies/adcbridge/pkg/daq"
	"github.com/hybridecologies/adcbridge/pkg/transport"
)

func main() {
	var (
		configFlag  = flag.String("config", "config.yaml", "Configuration file path")
		portFlag    = flag.String("p", "", "Serial port override for the converter front-end (e.g. /dev/ttyUSB0)")
		mockFlag    = flag.Bool("mock", false, "Use mocked converter instead of serial port")
		httpFlag    = flag.String("http", "", "HTTP listen address override")
		metricsFlag = flag.String("metrics", "", "Metrics listen address override")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logging.New("info", "text").Error("failed to load configuration", logging.Err(err))
		os.Exit(1)
	}
	if *portFlag != "" {
		cfg.Device.Port = *portFlag
	}
	if *mockFlag {
		cfg.Device.Mock = true
	}
	if *httpFlag != "" {
		cfg.HTTP.Addr = *httpFlag
	}
	if *metricsFlag != "" {
		cfg.Metrics.Addr = *metricsFlag
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	// Converter front-end. A missing device is fatal: serving data without
	// one would be meaningless.
	var dev adc.Device
	if cfg.Device.Mock {
		mock := adc.NewMock()
		mock.EnableWaveform()
		dev = mock
		log.Info("using mocked converter front-end")
	} else {
		serialDev, err := adc.Open(cfg.Device.Port, cfg.Device.Baud)
		if err != nil {
			log.Error("converter front-end init failed", logging.String("port", cfg.Device.Port), logging.Err(err))
			os.Exit(1)
		}
		dev = serialDev
		log.Info("converter front-end connected", logging.String("port", cfg.Device.Port))
	}
	defer dev.Close()

	// Store starts at the documented defaults, then takes the bootstrap
	// sampling parameters.
	store := chancfg.New()
	if err := store.ApplySampleRate(cfg.Sampling.RateHz); err != nil {
		log.Error("invalid bootstrap sample rate", logging.Int("rate_hz", cfg.Sampling.RateHz), logging.Err(err))
		os.Exit(1)
	}
	if fellBack := store.ApplyDataRate(cfg.Sampling.DataRate); fellBack {
		log.Warn("unsupported bootstrap data rate, using default",
			logging.Int("requested", cfg.Sampling.DataRate),
			logging.Int("applied", int(store.Sampler().DataRate)))
	}
	if err := dev.SetDataRate(store.Sampler().DataRate); err != nil {
		log.Error("failed to push bootstrap data rate", logging.Err(err))
		os.Exit(1)
	}

	var emitter *transport.LineEmitter
	if cfg.SerialOut.Port != "" {
		emitter, err = transport.OpenLineEmitter(cfg.SerialOut.Port, cfg.SerialOut.Baud, cfg.SerialOut.Enabled, log)
		if err != nil {
			log.Error("failed to open serial output", logging.String("port", cfg.SerialOut.Port), logging.Err(err))
			os.Exit(1)
		}
		defer emitter.Close()
	} else if cfg.SerialOut.Enabled {
		emitter = transport.NewLineEmitter(os.Stdout, true, log)
	}

	collector := observability.NewCollector(nil)
	collector.SetSampleRate(store.Sampler().RateHz)

	opts := daq.Options{Log: log, Metrics: collector}
	if emitter != nil {
		opts.Emitter = emitter
	}
	loop := daq.New(store, dev, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go loop.Run(ctx)

	apiSrv := &http.Server{Addr: cfg.HTTP.Addr, Handler: transport.NewHandler(loop, log)}
	go func() {
		log.Info("serving protocol surface", logging.String("addr", cfg.HTTP.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server exited", logging.Err(err))
		}
	}()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux}
	go func() {
		log.Info("serving metrics", logging.String("addr", cfg.Metrics.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server exited", logging.Err(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", logging.Err(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics shutdown incomplete", logging.Err(err))
	}
}
