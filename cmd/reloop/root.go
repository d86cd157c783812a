package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rickchristie/reloop/config"
	"github.com/rickchristie/reloop/hooks"
	"github.com/rickchristie/reloop/log"
	"github.com/rickchristie/reloop/loggers"
	"github.com/rickchristie/reloop/metrics"
	"github.com/spf13/cobra"
)

// errNoAnswer ends a one-shot run whose failure was already printed.
var errNoAnswer = errors.New("no answer")

const (
	flagConfig      = "config"
	flagBackendURL  = "backend-url"
	flagLogLevel    = "log-level"
	flagMaxTurns    = "max-turns"
	flagMaxDepth    = "max-depth"
	flagMetricsAddr = "metrics-addr"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reloop [prompt]",
		Short: "Chat with a tool-using agent running on a text-completion backend",
		Long: `reloop answers each prompt with a ReAct-style agent loop over a ChatML transcript.
The agent can search Wikipedia, read the current time and delegate sub-tasks to a
fresh copy of itself.

Without arguments an interactive shell is started. With arguments they are joined
into a single prompt, answered once, and reloop exits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	flags := cmd.Flags()
	flags.String(flagConfig, "", "Path to a YAML configuration file")
	flags.String(flagBackendURL, "", "Base URL of the completion backend")
	flags.String(flagLogLevel, "", "Log level: debug, info, warn or error")
	flags.Int(flagMaxTurns, 0, "Maximum generations per conversation")
	flags.Int(flagMaxDepth, 0, "Maximum delegation depth (0 forbids delegation)")
	flags.String(flagMetricsAddr, "", "Listen address of the Prometheus /metrics endpoint")
	return cmd
}

// loadConfig reads the configuration file and environment, then applies the flags the user
// set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(flagConfig)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed(flagBackendURL) {
		cfg.Backend.URL, _ = flags.GetString(flagBackendURL)
	}
	if flags.Changed(flagLogLevel) {
		cfg.LogLevel, _ = flags.GetString(flagLogLevel)
	}
	if flags.Changed(flagMaxTurns) {
		cfg.Limits.MaxTurns, _ = flags.GetInt(flagMaxTurns)
	}
	if flags.Changed(flagMaxDepth) {
		cfg.Limits.MaxDelegationDepth, _ = flags.GetInt(flagMaxDepth)
	}
	if flags.Changed(flagMetricsAddr) {
		cfg.MetricsAddr, _ = flags.GetString(flagMetricsAddr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.LogLevel)
	defer func() { _ = log.Zap.Sync() }()

	completer, err := buildCompleter(cfg)
	if err != nil {
		return err
	}

	registry := hooks.NewRegistry().Register(loggers.NewZapHook(log.Zap))
	if cfg.MetricsAddr != "" {
		metricsHook, err := metrics.NewHook(prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		registry.Register(metricsHook)

		stop := serveMetrics(cfg.MetricsAddr)
		defer stop()
	}

	runner, err := buildRunner(cfg, completer, registry)
	if err != nil {
		return err
	}
	sh := &shell{runner: runner, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}

	if len(args) > 0 {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		if err := sh.answer(ctx, strings.Join(args, " ")); err != nil {
			return errNoAnswer
		}
		return nil
	}

	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	return sh.loop(cmd.Context(), rl)
}

// serveMetrics exposes the default Prometheus registry on addr until the returned function is
// called.
func serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Infof("serving metrics on %s/metrics", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
