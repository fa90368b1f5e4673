// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Query-farm/fastrpc/conformance"
	"github.com/Query-farm/fastrpc/frpc"
	frpcotel "github.com/Query-farm/fastrpc/frpc/otel"
	"github.com/Query-farm/fastrpc/frpc/promstats"
)

// fileConfig is the YAML configuration file layout.
type fileConfig struct {
	Transport frpc.Config `yaml:"transport"`
	Serve     struct {
		Listen    string `yaml:"listen"`
		ChunkSize int    `yaml:"chunk_size"`
		Coding    string `yaml:"coding"`
		Level     int    `yaml:"level"`
		Metrics   string `yaml:"metrics"`
	} `yaml:"serve"`
}

var (
	configPath   string
	verbose      bool
	otelStdout   bool
	readTimeout  time.Duration
	writeTimeout time.Duration
	lineLimit    int64
	bodyLimit    int64

	listenAddr  string
	chunkSize   int
	coding      string
	level       int
	metricsAddr string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "frpc-conformance-go",
	Short:         "Exercise the FastRPC transport and value model",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Run the wire fixtures and print the results as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		hook, shutdown, err := otelHook(cmd.Context())
		if err != nil {
			return err
		}
		defer shutdown()

		results, ok := conformance.RunAll(cfg.Transport, nil, frpc.WithLogger(log), frpc.WithHook(hook))
		out, err := yaml.Marshal(results)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		if !ok {
			return errors.New("fixtures failed")
		}
		return nil
	},
}

var valuesCmd = &cobra.Command{
	Use:   "values",
	Short: "Print the canonical value tree as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		pool := frpc.NewPool(frpc.WithLocation(time.UTC))
		defer pool.Release()
		out, err := yaml.Marshal(conformance.ToNative(conformance.CanonicalCall(pool)))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an echo server over the FastRPC transport",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		otelH, shutdown, err := otelHook(ctx)
		if err != nil {
			return err
		}
		defer shutdown()

		var promH frpc.TransferHook
		if cfg.Serve.Metrics != "" {
			reg := prometheus.NewRegistry()
			ph, err := promstats.New(reg)
			if err != nil {
				return err
			}
			promH = ph
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			msrv := &http.Server{Addr: cfg.Serve.Metrics, Handler: mux}
			go func() {
				if err := msrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server", zap.Error(err))
				}
			}()
			defer msrv.Shutdown(context.Background()) //nolint:errcheck
		}

		ln, err := net.Listen("tcp", cfg.Serve.Listen)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "PORT:%d\n", ln.Addr().(*net.TCPAddr).Port)

		srv := &conformance.EchoServer{
			Config: cfg.Transport,
			Write: conformance.WriteOptions{
				ChunkSize: cfg.Serve.ChunkSize,
				Coding:    cfg.Serve.Coding,
				Level:     cfg.Serve.Level,
			},
			Hook:   frpc.MultiHook(otelH, promH),
			Logger: log,
		}
		return srv.Serve(ctx, ln)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&otelStdout, "otel-stdout", false, "export OpenTelemetry metrics to stdout")
	pf.DurationVar(&readTimeout, "read-timeout", 0, "read timeout (overrides config)")
	pf.DurationVar(&writeTimeout, "write-timeout", 0, "write timeout (overrides config)")
	pf.Int64Var(&lineLimit, "line-limit", 0, "header line size limit in bytes (overrides config)")
	pf.Int64Var(&bodyLimit, "body-limit", 0, "body size limit in bytes (overrides config)")

	sf := serveCmd.Flags()
	sf.StringVar(&listenAddr, "listen", "127.0.0.1:0", "listen address")
	sf.IntVar(&chunkSize, "chunk-size", 0, "respond with chunked framing using this chunk size")
	sf.StringVar(&coding, "coding", "", "response content coding: gzip, deflate or zstd")
	sf.IntVar(&level, "level", 0, "compression level")
	sf.StringVar(&metricsAddr, "metrics", "", "serve Prometheus metrics on this address")

	rootCmd.AddCommand(fixturesCmd, valuesCmd, configCmd, serveCmd)
}

// setup loads the configuration file, applies flag overrides and builds the
// logger.
func setup(cmd *cobra.Command) (*fileConfig, *zap.Logger, error) {
	cfg := &fileConfig{Transport: frpc.DefaultConfig()}
	cfg.Serve.Listen = "127.0.0.1:0"
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("read-timeout") {
		cfg.Transport.ReadTimeout = readTimeout
	}
	if flags.Changed("write-timeout") {
		cfg.Transport.WriteTimeout = writeTimeout
	}
	if flags.Changed("line-limit") {
		cfg.Transport.LineSizeLimit = lineLimit
	}
	if flags.Changed("body-limit") {
		cfg.Transport.BodySizeLimit = bodyLimit
	}
	if flags.Changed("listen") {
		cfg.Serve.Listen = listenAddr
	}
	if flags.Changed("chunk-size") {
		cfg.Serve.ChunkSize = chunkSize
	}
	if flags.Changed("coding") {
		cfg.Serve.Coding = coding
	}
	if flags.Changed("level") {
		cfg.Serve.Level = level
	}
	if flags.Changed("metrics") {
		cfg.Serve.Metrics = metricsAddr
	}

	zcfg := zap.NewProductionConfig()
	if verbose {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.OutputPaths = []string{"stderr"}
	log, err := zcfg.Build()
	if err != nil {
		return nil, nil, err
	}
	frpc.SetLogger(log)
	return cfg, log, nil
}

// otelHook returns a hook exporting to stdout when --otel-stdout is set.
func otelHook(ctx context.Context) (frpc.TransferHook, func(), error) {
	if !otelStdout {
		return nil, func() {}, nil
	}
	exp, err := stdoutmetric.New()
	if err != nil {
		return nil, nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
	hook := frpcotel.Instrument(frpcotel.OtelConfig{MeterProvider: provider})
	return hook, func() { _ = provider.Shutdown(context.WithoutCancel(ctx)) }, nil
}
