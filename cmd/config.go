package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/khanhnv2901/seca-scan/internal/checker"
	"github.com/khanhnv2901/seca-scan/internal/logging"
	consts "github.com/khanhnv2901/seca-scan/internal/shared/constants"
)

const (
	defaultScanTimeoutSeconds = 10
	defaultServeAddr          = "127.0.0.1:8000"
	defaultShutdownTimeout    = 30 * time.Second
	envPrefix                 = "SECA_SCAN"
)

// AppConfig captures runtime configuration shared across commands.
type AppConfig struct {
	Scan   ScanRuntimeConfig
	Server ServerConfig
	Log    LogConfig
}

// ScanRuntimeConfig holds fetcher settings.
type ScanRuntimeConfig struct {
	TimeoutSecs  int
	MaxBodyBytes int64
	UserAgent    string
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Addr            string
	RateLimit       int // scans per minute per client
	RateBurst       int
	CORSOrigins     []string
	TrustProxy      bool
	HistoryLimit    int
	ShutdownTimeout time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var appConfig = newAppConfig()

func newAppConfig() *AppConfig {
	logDefaults := logging.DefaultConfig()
	return &AppConfig{
		Scan: ScanRuntimeConfig{
			TimeoutSecs:  defaultScanTimeoutSeconds,
			MaxBodyBytes: consts.DefaultMaxBodyBytes,
			UserAgent:    consts.DefaultUserAgent,
		},
		Server: ServerConfig{
			Addr:            defaultServeAddr,
			RateLimit:       consts.DefaultScanRatePerMinute,
			RateBurst:       consts.DefaultScanRatePerMinute,
			CORSOrigins:     []string{},
			TrustProxy:      false,
			HistoryLimit:    0,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Log: LogConfig{
			File:       consts.DefaultLogFile,
			Level:      logDefaults.Level,
			MaxSizeMB:  logDefaults.MaxSizeMB,
			MaxBackups: logDefaults.MaxBackups,
			MaxAgeDays: logDefaults.MaxAgeDays,
		},
	}
}

// loadConfigFile reads --config or $HOME/.seca-scan.yaml and binds
// SECA_SCAN_* environment variables. A missing default file is not an error.
func loadConfigFile(path string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".seca-scan")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// applyConfigDefaults merges config file and environment values into the
// runtime config when the user did not explicitly set the matching flag.
func applyConfigDefaults(cmd *cobra.Command) {
	flags := cmd.Flags()

	if viper.IsSet("scan.timeout_secs") {
		applyDefault(flags, "timeout", viper.GetInt("scan.timeout_secs"), func(v int) {
			appConfig.Scan.TimeoutSecs = v
		})
	}
	if viper.IsSet("scan.max_body_bytes") {
		appConfig.Scan.MaxBodyBytes = viper.GetInt64("scan.max_body_bytes")
	}
	if viper.IsSet("scan.user_agent") {
		appConfig.Scan.UserAgent = viper.GetString("scan.user_agent")
	}

	if viper.IsSet("server.addr") {
		applyDefault(flags, "addr", viper.GetString("server.addr"), func(v string) {
			appConfig.Server.Addr = v
		})
	}
	if viper.IsSet("server.rate_limit") {
		applyDefault(flags, "rate-limit", viper.GetInt("server.rate_limit"), func(v int) {
			appConfig.Server.RateLimit = v
		})
	}
	if viper.IsSet("server.rate_burst") {
		applyDefault(flags, "rate-burst", viper.GetInt("server.rate_burst"), func(v int) {
			appConfig.Server.RateBurst = v
		})
	}
	if viper.IsSet("server.cors_origins") {
		applyDefault(flags, "cors-origins", viper.GetStringSlice("server.cors_origins"), func(v []string) {
			appConfig.Server.CORSOrigins = v
		})
	}
	if viper.IsSet("server.trust_proxy") {
		applyDefault(flags, "trust-proxy", viper.GetBool("server.trust_proxy"), func(v bool) {
			appConfig.Server.TrustProxy = v
		})
	}
	if viper.IsSet("server.history_limit") {
		applyDefault(flags, "history-limit", viper.GetInt("server.history_limit"), func(v int) {
			appConfig.Server.HistoryLimit = v
		})
	}
	if viper.IsSet("server.shutdown_timeout") {
		applyDefault(flags, "shutdown-timeout", viper.GetDuration("server.shutdown_timeout"), func(v time.Duration) {
			appConfig.Server.ShutdownTimeout = v
		})
	}

	if viper.IsSet("log.file") {
		applyDefault(flags, "log-file", viper.GetString("log.file"), func(v string) {
			appConfig.Log.File = v
		})
	}
	if viper.IsSet("log.level") {
		applyDefault(flags, "log-level", viper.GetString("log.level"), func(v string) {
			appConfig.Log.Level = v
		})
	}
	if viper.IsSet("log.max_size_mb") {
		appConfig.Log.MaxSizeMB = viper.GetInt("log.max_size_mb")
	}
	if viper.IsSet("log.max_backups") {
		appConfig.Log.MaxBackups = viper.GetInt("log.max_backups")
	}
	if viper.IsSet("log.max_age_days") {
		appConfig.Log.MaxAgeDays = viper.GetInt("log.max_age_days")
	}
}

// applyDefault runs setter unless the named flag was set on the command line.
func applyDefault[T any](flags *pflag.FlagSet, name string, value T, setter func(T)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

// newFetcher builds the scan fetcher from the runtime config.
func newFetcher() *checker.HTTPFetcher {
	f := checker.NewHTTPFetcher()
	if appConfig.Scan.TimeoutSecs > 0 {
		f.Timeout = time.Duration(appConfig.Scan.TimeoutSecs) * time.Second
	}
	if appConfig.Scan.MaxBodyBytes > 0 {
		f.MaxBodyBytes = appConfig.Scan.MaxBodyBytes
	}
	if appConfig.Scan.UserAgent != "" {
		f.UserAgent = appConfig.Scan.UserAgent
	}
	return f
}

func (c LogConfig) loggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.File = c.File
	cfg.Level = c.Level
	cfg.MaxSizeMB = c.MaxSizeMB
	cfg.MaxBackups = c.MaxBackups
	cfg.MaxAgeDays = c.MaxAgeDays
	return cfg
}
