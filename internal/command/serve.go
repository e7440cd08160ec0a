package command

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/pastebot/internal/bot"
	"github.com/tyemirov/pastebot/internal/config"
	"github.com/tyemirov/pastebot/internal/health"
	"github.com/tyemirov/pastebot/internal/httpapi"
	"github.com/tyemirov/pastebot/internal/service"
	"github.com/tyemirov/pastebot/pkg/attachments"
	"golang.org/x/sync/errgroup"
)

func buildServeCommand(settings *viper.Viper, dependencies Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Discord and answer the Upload commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configuration, logger, err := loadRuntime(settings, dependencies, true)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), configuration, logger)
		},
	}
}

// runServe runs the gateway and the optional ops listeners until ctx ends or
// any of them fails.
func runServe(ctx context.Context, configuration config.Config, logger *slog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpClient := &http.Client{Timeout: configuration.HTTPTimeout()}
	uploadService, err := buildUploadService(configuration, attachments.NewHTTPFetcher(httpClient), httpClient, logger, service.MustNewMetrics(registry))
	if err != nil {
		return err
	}

	commandRegistry := bot.NewRegistry(logger, bot.MustNewMetrics(registry))
	if registerErr := commandRegistry.Register(bot.UploadCommands(uploadService, logger)...); registerErr != nil {
		return registerErr
	}

	reporter := health.NewReporter()
	gateway, err := bot.NewGateway(bot.GatewayConfig{
		Token:     configuration.DiscordToken,
		GuildID:   configuration.DiscordGuildID,
		Registry:  commandRegistry,
		Readiness: reporter,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return gateway.Run(groupCtx)
	})

	if configuration.OpsListenAddr != "" {
		opsServer, opsErr := httpapi.NewServer(httpapi.Config{
			ListenAddr:     configuration.OpsListenAddr,
			AllowedOrigins: configuration.OpsAllowedOrigins,
			Readiness:      reporter,
			Gatherer:       registry,
			Logger:         logger,
		})
		if opsErr != nil {
			return opsErr
		}
		group.Go(opsServer.Start)
		group.Go(func() error {
			<-groupCtx.Done()
			return opsServer.Shutdown(context.Background())
		})
	}

	if configuration.HealthGRPCAddr != "" {
		healthServer, healthErr := health.NewServer(configuration.HealthGRPCAddr, reporter, logger)
		if healthErr != nil {
			return healthErr
		}
		group.Go(healthServer.Start)
		group.Go(func() error {
			<-groupCtx.Done()
			reporter.Shutdown()
			healthServer.Stop()
			return nil
		})
	}

	logger.Info("pastebot_starting", "ops_addr", configuration.OpsListenAddr, "health_addr", configuration.HealthGRPCAddr, "guild_id", configuration.DiscordGuildID)
	return group.Wait()
}
