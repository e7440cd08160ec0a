// Package command builds the pastebot command line: the long-running bot, a
// local upload tool sharing the bot's pipeline, and a container health check.
package command

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/pastebot/internal/config"
	"github.com/tyemirov/pastebot/pkg/logging"
)

const (
	settingsEnvPrefix = "PASTEBOT"

	settingConfigPath = "config-path"
	settingLogLevel   = "log-level"
	settingLogFormat  = "log-format"
)

// Dependencies are the process-level collaborators of the command tree.
type Dependencies struct {
	// Output receives command results.
	Output io.Writer
	// LogOutput receives structured logs; stderr when nil.
	LogOutput io.Writer
}

// NewRootCommand assembles the pastebot command tree. Persistent flags can
// also be set through PASTEBOT_* environment variables.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	settings := viper.New()
	settings.SetEnvPrefix(settingsEnvPrefix)
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	root := &cobra.Command{
		Use:           "pastebot",
		Short:         "Discord bot that uploads message attachments to paste services",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML configuration file (PASTEBOT_CONFIG_PATH)")
	root.PersistentFlags().String(settingLogLevel, "", "Log level: DEBUG, INFO, WARN or ERROR (overrides LOG_LEVEL)")
	root.PersistentFlags().String(settingLogFormat, "", "Log format: text or json (overrides LOG_FORMAT)")
	_ = settings.BindPFlag(settingConfigPath, root.PersistentFlags().Lookup("config"))
	_ = settings.BindPFlag(settingLogLevel, root.PersistentFlags().Lookup(settingLogLevel))
	_ = settings.BindPFlag(settingLogFormat, root.PersistentFlags().Lookup(settingLogFormat))

	root.AddCommand(buildServeCommand(settings, dependencies))
	root.AddCommand(buildUploadCommand(settings, dependencies))
	root.AddCommand(buildHealthcheckCommand(settings, dependencies))
	return root
}

// loadRuntime resolves configuration and a logger honoring CLI overrides.
func loadRuntime(settings *viper.Viper, dependencies Dependencies, requireDiscord bool) (config.Config, *slog.Logger, error) {
	configuration, configErr := config.LoadConfig(config.LoadOptions{
		ConfigPath:     settings.GetString(settingConfigPath),
		RequireDiscord: requireDiscord,
	})
	if configErr != nil {
		return config.Config{}, nil, configErr
	}
	if levelOverride := strings.TrimSpace(settings.GetString(settingLogLevel)); levelOverride != "" {
		configuration.LogLevel = levelOverride
	}
	if formatOverride := strings.TrimSpace(settings.GetString(settingLogFormat)); formatOverride != "" {
		configuration.LogFormat = formatOverride
	}

	logOutput := dependencies.LogOutput
	if logOutput == nil {
		logOutput = os.Stderr
	}
	return configuration, logging.NewLoggerWithFormat(configuration.LogLevel, configuration.LogFormat, logOutput), nil
}

func outputOf(dependencies Dependencies) io.Writer {
	if dependencies.Output == nil {
		return io.Discard
	}
	return dependencies.Output
}
