package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"xdao.co/zkcred/config"
	"xdao.co/zkcred/internal/logging"
	"xdao.co/zkcred/journal"
	"xdao.co/zkcred/rpc"

	_ "xdao.co/zkcred/journal/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("zkcredd", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "JSON config file")
	listen := fs.String("listen", "", "gRPC listen address (overrides config)")
	metricsListen := fs.String("metrics-listen", "", "HTTP address for /metrics (overrides config)")
	scheme := fs.String("scheme", "", "Signature scheme (overrides config)")
	logLevel := fs.String("log-level", "", "Log level (overrides config)")
	listBackends := fs.Bool("list-backends", false, "List journal backends and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *listBackends {
		for _, b := range journal.Backends() {
			if b.Description == "" {
				_, _ = fmt.Fprintf(out, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(out, "%s\t%s\n", b.Name, b.Description)
		}
		return 0
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			fmt.Fprintln(errOut, err)
			return 2
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *metricsListen != "" {
		cfg.MetricsListen = *metricsListen
	}
	if *scheme != "" {
		cfg.Scheme = *scheme
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		logger.Error("listen", zap.Error(err))
		return 1
	}
	if err := serve(ctx, cfg, lis, logger); err != nil {
		logger.Error("zkcredd stopped", zap.Error(err))
		return 1
	}
	return 0
}

// serve runs the gRPC server on lis, and the metrics endpoint when configured,
// until ctx is done or either server fails. lis is closed on return.
func serve(ctx context.Context, cfg config.Config, lis net.Listener, logger *zap.Logger) error {
	defer lis.Close()

	validator, err := cfg.Validator()
	if err != nil {
		return err
	}
	j, closeJournal, err := cfg.Journal.Open()
	if err != nil {
		return err
	}
	defer func() {
		if err := closeJournal(); err != nil {
			logger.Warn("close journal", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &rpc.Server{
		Validator:      validator,
		Journal:        j,
		Metrics:        rpc.NewMetrics(reg),
		MaxRecordBytes: cfg.MaxRecordBytes,
	}
	opts := []grpc.ServerOption{grpc.UnaryInterceptor(rpc.LoggingInterceptor(logger))}
	if cfg.MaxRecordBytes > 0 {
		// Room for the protobuf wrapper around the record.
		opts = append(opts, grpc.MaxRecvMsgSize(cfg.MaxRecordBytes+1024))
	}
	gs := grpc.NewServer(opts...)
	rpc.RegisterValidatorServer(gs, srv)
	reflection.Register(gs)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("zkcredd listening",
			zap.String("addr", lis.Addr().String()),
			zap.String("scheme", cfg.Scheme),
			zap.Int("journal_backends", len(cfg.Journal.Backends)))
		return gs.Serve(lis)
	})

	var metricsSrv *http.Server
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsSrv = &http.Server{Addr: cfg.MetricsListen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("metrics listening", zap.String("addr", cfg.MetricsListen))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		gs.GracefulStop()
		if metricsSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return metricsSrv.Shutdown(shutdownCtx)
		}
		return nil
	})
	return g.Wait()
}
