// Command webpuppet-mcp runs the webpuppet MCP server on stdin/stdout.
// All diagnostics go to stderr (or a log file) so stdout stays a clean
// JSON-RPC channel.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joeshaw/envdecode"
	"github.com/spf13/pflag"

	"github.com/tzervas/embeddenator-webpuppet-mcp/automation"
	"github.com/tzervas/embeddenator-webpuppet-mcp/guard"
	"github.com/tzervas/embeddenator-webpuppet-mcp/internal/logctx"
	"github.com/tzervas/embeddenator-webpuppet-mcp/server"
	"github.com/tzervas/embeddenator-webpuppet-mcp/tools"
)

// config holds the environment-sourced defaults; flags override them.
type config struct {
	Policy     string  `env:"WEBPUPPET_POLICY,default=secure"`
	PolicyFile string  `env:"WEBPUPPET_POLICY_FILE"`
	Visible    bool    `env:"WEBPUPPET_VISIBLE,default=false"`
	Verbose    bool    `env:"WEBPUPPET_VERBOSE,default=false"`
	LogFile    string  `env:"WEBPUPPET_LOG_FILE"`
	RiskLimit  float64 `env:"WEBPUPPET_RISK_THRESHOLD,default=0.5"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "webpuppet-mcp:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := envdecode.Decode(&cfg); err != nil {
		// All fields have defaults or are optional; a decode failure
		// means a malformed value, not a missing one.
		return fmt.Errorf("environment: %w", err)
	}

	pflag.StringVar(&cfg.Policy, "policy", cfg.Policy, "security policy: secure, permissive, or readonly")
	pflag.StringVar(&cfg.PolicyFile, "policy-file", cfg.PolicyFile, "YAML policy file; hot-reloaded on change")
	pflag.BoolVar(&cfg.Visible, "visible", cfg.Visible, "run the browser visibly instead of headless")
	pflag.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging")
	pflag.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write diagnostics to this file instead of stderr")
	pflag.Parse()

	logDst := io.Writer(os.Stderr)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logDst = f
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(logctx.Handler{
		Handler: slog.NewTextHandler(logDst, &slog.HandlerOptions{Level: level}),
	})

	policy, err := guard.PolicyByName(cfg.Policy)
	if err != nil {
		return err
	}
	g := guard.New(policy)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.PolicyFile != "" {
		loaded, err := guard.LoadPolicyFile(cfg.PolicyFile)
		if err != nil {
			return fmt.Errorf("policy file: %w", err)
		}
		g.SetPolicy(loaded)
		go func() {
			if err := g.Watch(ctx, cfg.PolicyFile, log); err != nil {
				log.Warn("policy watch stopped", slog.String("err", err.Error()))
			}
		}()
	}

	ctxOpts := []tools.ContextOption{
		tools.WithContextLogger(log),
		tools.WithScreeningConfig(automation.ScreeningConfig{
			Enabled:       true,
			RiskThreshold: cfg.RiskLimit,
		}),
	}
	if cfg.Visible {
		ctxOpts = append(ctxOpts, tools.WithVisibleBrowser())
	}
	tc := tools.NewContext(g, ctxOpts...)

	registry, err := tools.NewRegistry(tc, tools.WithRegistryLogger(log))
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	srv := server.New(registry, server.WithLogger(log))

	log.Info("configuration",
		slog.String("policy", g.Policy().Name),
		slog.Bool("visible", cfg.Visible),
		slog.Bool("verbose", cfg.Verbose))

	runErr := srv.Run(ctx)

	if err := tc.CloseAutomation(context.Background()); err != nil {
		log.Warn("automation close", slog.String("err", err.Error()))
	}
	if runErr != nil && runErr != context.Canceled {
		return runErr
	}
	return nil
}
