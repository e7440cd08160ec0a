package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnvKey = "PASTEBOT_CONFIG_PATH"

	defaultLogLevel          = "INFO"
	defaultLogFormat         = "text"
	defaultHTTPTimeoutSec    = 30
	defaultOpsListenAddr     = ":9090"
	defaultHealthGRPCAddr    = ":50051"
	defaultPastebookAPIURL   = "https://api.pastebook.dev/upload"
	defaultPastebookBaseURL  = "https://pastebook.dev/p/"
	defaultPastebookDays     = 30
	defaultPastesDevAPIURL   = "https://api.pastes.dev/post"
	defaultPastesDevBaseURL  = "https://pastes.dev/"
	defaultPastesDevDays     = 90
	disabledListenAddrMarker = "off"
)

// Config holds runtime configuration for the bot and its CLI.
type Config struct {
	DiscordToken   string
	DiscordGuildID string

	LogLevel  string
	LogFormat string

	HTTPTimeoutSec       int
	MaxConcurrentUploads int

	// Empty addresses disable the corresponding listener.
	OpsListenAddr  string
	HealthGRPCAddr string

	// OpsAllowedOrigins enables CORS on the ops endpoints for these origins.
	OpsAllowedOrigins []string

	Pastebook PasteServiceConfig
	PastesDev PasteServiceConfig
}

// PasteServiceConfig describes one paste-hosting backend.
type PasteServiceConfig struct {
	APIURL        string
	BaseURL       string
	RetentionDays int
}

// Retention converts RetentionDays to a duration.
func (serviceConfig PasteServiceConfig) Retention() time.Duration {
	return time.Duration(serviceConfig.RetentionDays) * 24 * time.Hour
}

// HTTPTimeout is the timeout applied to every outbound HTTP request.
func (configuration Config) HTTPTimeout() time.Duration {
	return time.Duration(configuration.HTTPTimeoutSec) * time.Second
}

// LoadOptions controls which settings are mandatory.
type LoadOptions struct {
	// ConfigPath overrides PASTEBOT_CONFIG_PATH when set.
	ConfigPath string
	// RequireDiscord makes DISCORD_TOKEN mandatory.
	RequireDiscord bool
}

type fileDocument struct {
	Discord struct {
		Token   string `yaml:"token"`
		GuildID string `yaml:"guildId"`
	} `yaml:"discord"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	HTTP struct {
		TimeoutSec int `yaml:"timeoutSec"`
	} `yaml:"http"`
	Uploads struct {
		MaxConcurrent int `yaml:"maxConcurrent"`
	} `yaml:"uploads"`
	Ops struct {
		ListenAddr     *string  `yaml:"listenAddr"`
		HealthGRPCAddr *string  `yaml:"healthGrpcAddr"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"ops"`
	Pastebook fileService `yaml:"pastebook"`
	PastesDev fileService `yaml:"pastesDev"`
}

type fileService struct {
	APIURL        string `yaml:"apiUrl"`
	BaseURL       string `yaml:"baseUrl"`
	RetentionDays int    `yaml:"retentionDays"`
}

// LoadConfig reads the optional YAML file, applies environment overrides and
// defaults, then validates the result. All problems are reported together.
func LoadConfig(options LoadOptions) (Config, error) {
	configuration := defaultConfig()

	configPath := strings.TrimSpace(options.ConfigPath)
	if configPath == "" {
		configPath = strings.TrimSpace(os.Getenv(configPathEnvKey))
	}
	if configPath != "" {
		if fileErr := applyFile(configPath, &configuration); fileErr != nil {
			return Config{}, fileErr
		}
	}

	taskFunctions := []func() error{
		loadEnvString("DISCORD_TOKEN", &configuration.DiscordToken),
		loadEnvString("DISCORD_GUILD_ID", &configuration.DiscordGuildID),
		loadEnvString("LOG_LEVEL", &configuration.LogLevel),
		loadEnvString("LOG_FORMAT", &configuration.LogFormat),
		loadEnvInt("HTTP_TIMEOUT_SEC", &configuration.HTTPTimeoutSec),
		loadEnvInt("MAX_CONCURRENT_UPLOADS", &configuration.MaxConcurrentUploads),
		loadEnvAddress("OPS_LISTEN_ADDR", &configuration.OpsListenAddr),
		loadEnvAddress("HEALTH_GRPC_ADDR", &configuration.HealthGRPCAddr),
		loadEnvList("OPS_ALLOWED_ORIGINS", &configuration.OpsAllowedOrigins),
		loadEnvString("PASTEBOOK_API_URL", &configuration.Pastebook.APIURL),
		loadEnvString("PASTEBOOK_BASE_URL", &configuration.Pastebook.BaseURL),
		loadEnvInt("PASTEBOOK_RETENTION_DAYS", &configuration.Pastebook.RetentionDays),
		loadEnvString("PASTES_DEV_API_URL", &configuration.PastesDev.APIURL),
		loadEnvString("PASTES_DEV_BASE_URL", &configuration.PastesDev.BaseURL),
		loadEnvInt("PASTES_DEV_RETENTION_DAYS", &configuration.PastesDev.RetentionDays),
	}

	var errorMessages []string
	for _, taskFunction := range taskFunctions {
		if taskError := taskFunction(); taskError != nil {
			errorMessages = append(errorMessages, taskError.Error())
		}
	}
	errorMessages = append(errorMessages, configuration.validate(options)...)

	if len(errorMessages) > 0 {
		return Config{}, fmt.Errorf("configuration errors: %s", strings.Join(errorMessages, ", "))
	}
	return configuration, nil
}

func defaultConfig() Config {
	return Config{
		LogLevel:       defaultLogLevel,
		LogFormat:      defaultLogFormat,
		HTTPTimeoutSec: defaultHTTPTimeoutSec,
		OpsListenAddr:  defaultOpsListenAddr,
		HealthGRPCAddr: defaultHealthGRPCAddr,
		Pastebook: PasteServiceConfig{
			APIURL:        defaultPastebookAPIURL,
			BaseURL:       defaultPastebookBaseURL,
			RetentionDays: defaultPastebookDays,
		},
		PastesDev: PasteServiceConfig{
			APIURL:        defaultPastesDevAPIURL,
			BaseURL:       defaultPastesDevBaseURL,
			RetentionDays: defaultPastesDevDays,
		},
	}
}

func applyFile(configPath string, configuration *Config) error {
	rawDocument, readErr := os.ReadFile(configPath)
	if readErr != nil {
		if errors.Is(readErr, fs.ErrNotExist) {
			return fmt.Errorf("configuration file %s does not exist", configPath)
		}
		return fmt.Errorf("read configuration file %s: %w", configPath, readErr)
	}

	var document fileDocument
	if decodeErr := yaml.Unmarshal([]byte(os.ExpandEnv(string(rawDocument))), &document); decodeErr != nil {
		return fmt.Errorf("parse configuration file %s: %w", configPath, decodeErr)
	}

	overrideString(&configuration.DiscordToken, document.Discord.Token)
	overrideString(&configuration.DiscordGuildID, document.Discord.GuildID)
	overrideString(&configuration.LogLevel, document.Logging.Level)
	overrideString(&configuration.LogFormat, document.Logging.Format)
	overrideInt(&configuration.HTTPTimeoutSec, document.HTTP.TimeoutSec)
	overrideInt(&configuration.MaxConcurrentUploads, document.Uploads.MaxConcurrent)
	if document.Ops.ListenAddr != nil {
		configuration.OpsListenAddr = normalizeAddress(*document.Ops.ListenAddr)
	}
	if document.Ops.HealthGRPCAddr != nil {
		configuration.HealthGRPCAddr = normalizeAddress(*document.Ops.HealthGRPCAddr)
	}
	if origins := splitList(document.Ops.AllowedOrigins); len(origins) > 0 {
		configuration.OpsAllowedOrigins = origins
	}
	overrideString(&configuration.Pastebook.APIURL, document.Pastebook.APIURL)
	overrideString(&configuration.Pastebook.BaseURL, document.Pastebook.BaseURL)
	overrideInt(&configuration.Pastebook.RetentionDays, document.Pastebook.RetentionDays)
	overrideString(&configuration.PastesDev.APIURL, document.PastesDev.APIURL)
	overrideString(&configuration.PastesDev.BaseURL, document.PastesDev.BaseURL)
	overrideInt(&configuration.PastesDev.RetentionDays, document.PastesDev.RetentionDays)
	return nil
}

func (configuration Config) validate(options LoadOptions) []string {
	var problems []string
	if options.RequireDiscord && configuration.DiscordToken == "" {
		problems = append(problems, "missing discord.token (DISCORD_TOKEN)")
	}
	switch strings.ToUpper(configuration.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("invalid logging.level %q", configuration.LogLevel))
	}
	switch strings.ToLower(configuration.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid logging.format %q", configuration.LogFormat))
	}
	if configuration.HTTPTimeoutSec <= 0 {
		problems = append(problems, "http.timeoutSec must be positive")
	}
	if configuration.MaxConcurrentUploads < 0 {
		problems = append(problems, "uploads.maxConcurrent must not be negative")
	}
	for _, origin := range configuration.OpsAllowedOrigins {
		if !isAbsoluteURL(origin) {
			problems = append(problems, fmt.Sprintf("ops.allowedOrigins entry %q must be an absolute URL", origin))
		}
	}
	problems = append(problems, configuration.Pastebook.validate("pastebook")...)
	problems = append(problems, configuration.PastesDev.validate("pastesDev")...)
	return problems
}

func (serviceConfig PasteServiceConfig) validate(section string) []string {
	var problems []string
	if !isAbsoluteURL(serviceConfig.APIURL) {
		problems = append(problems, fmt.Sprintf("%s.apiUrl must be an absolute URL", section))
	}
	if !isAbsoluteURL(serviceConfig.BaseURL) {
		problems = append(problems, fmt.Sprintf("%s.baseUrl must be an absolute URL", section))
	}
	if serviceConfig.RetentionDays <= 0 {
		problems = append(problems, fmt.Sprintf("%s.retentionDays must be positive", section))
	}
	return problems
}

func isAbsoluteURL(value string) bool {
	parsed, parseErr := url.Parse(value)
	return parseErr == nil && parsed.Scheme != "" && parsed.Host != ""
}

func loadEnvString(environmentKey string, destination *string) func() error {
	return func() error {
		environmentValue := strings.TrimSpace(os.Getenv(environmentKey))
		if environmentValue != "" {
			*destination = environmentValue
		}
		return nil
	}
}

func loadEnvAddress(environmentKey string, destination *string) func() error {
	return func() error {
		environmentValue, present := os.LookupEnv(environmentKey)
		if present {
			*destination = normalizeAddress(environmentValue)
		}
		return nil
	}
}

func loadEnvList(environmentKey string, destination *[]string) func() error {
	return func() error {
		if values := splitList(strings.Split(os.Getenv(environmentKey), ",")); len(values) > 0 {
			*destination = values
		}
		return nil
	}
}

func loadEnvInt(environmentKey string, destination *int) func() error {
	const invalidIntFormat = "invalid integer for %s: %v"
	return func() error {
		environmentValue := strings.TrimSpace(os.Getenv(environmentKey))
		if environmentValue == "" {
			return nil
		}
		parsedInteger, conversionError := strconv.Atoi(environmentValue)
		if conversionError != nil {
			return fmt.Errorf(invalidIntFormat, environmentKey, conversionError)
		}
		*destination = parsedInteger
		return nil
	}
}

func normalizeAddress(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, disabledListenAddrMarker) {
		return ""
	}
	return trimmed
}

func splitList(values []string) []string {
	var trimmed []string
	for _, value := range values {
		if candidate := strings.TrimSpace(value); candidate != "" {
			trimmed = append(trimmed, candidate)
		}
	}
	return trimmed
}

func overrideString(destination *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*destination = trimmed
	}
}

func overrideInt(destination *int, value int) {
	if value != 0 {
		*destination = value
	}
}
