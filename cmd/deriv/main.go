package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/deriv/pkg/deriv/metrics"
)

// app holds state shared by all subcommands
type app struct {
	verbose     bool
	metricsAddr string
	timeout     time.Duration

	logger  *zap.Logger
	metrics *metrics.Metrics
	server  *http.Server
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "deriv",
		Short: "deriv - heuristic best-first derivation search",
		Long: `deriv proves goal facts from initial facts with disjunctive inference rules.

Every state is a set of facts; a rule whose premises hold adds one of its
conclusions. The search expands the most promising state first, guided by a
structural estimate or, optionally, a language-model oracle.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9090)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 5*time.Minute, "Operation timeout")

	root.AddCommand(newProveCmd(a))
	root.AddCommand(newDemoCmd(a))
	root.AddCommand(newSaturateCmd(a))
	root.AddCommand(newRunsCmd(a))
	return root
}

func (a *app) setup() error {
	config := zap.NewProductionConfig()
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	a.metrics = m

	if a.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		a.server = &http.Server{Addr: a.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		a.logger.Info("serving metrics", zap.String("addr", a.metricsAddr))
	}
	return nil
}

func (a *app) teardown() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.server.Shutdown(ctx)
		cancel()
	}
	_ = a.logger.Sync()
}

func (a *app) newContext() (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), a.timeout)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
