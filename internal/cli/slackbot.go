package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/luckysmouk/vidlytics/internal/slackbot"
)

// Set by LDFLAGS.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type SlackBotCmd struct{}

func NewSlackBotCmd() *SlackBotCmd {
	return &SlackBotCmd{}
}

func (c *SlackBotCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slack-bot",
		Short: "Run the Slack bot in Socket Mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := rootVerbose(cmd)
			if err != nil {
				return err
			}
			metricsAddr, err := cmd.Flags().GetString("metrics-addr")
			if err != nil {
				return fmt.Errorf("failed to get metrics-addr flag: %w", err)
			}

			log := newLogger(verbose)
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := slackbot.LoadFromEnv(metricsAddr, verbose)
			if err != nil {
				return err
			}

			app, err := newApp(ctx, log, appOptions{})
			if err != nil {
				return err
			}
			defer app.Close()

			if cfg.MetricsAddr != "" {
				slackbot.BuildInfo.WithLabelValues(version, commit, date).Set(1)
				go serveMetrics(ctx, log, cfg.MetricsAddr)
			}

			bot, err := slackbot.New(log, cfg, app.service)
			if err != nil {
				return err
			}

			if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("metrics-addr", "", "address to serve prometheus metrics on (empty disables)")

	return cmd
}

func serveMetrics(ctx context.Context, log *slog.Logger, addr string) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("failed to start metrics listener", "error", err)
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Handler: mux}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server stopped", "error", err)
	}
}
