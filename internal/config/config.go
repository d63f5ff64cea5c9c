// Package config loads the static application configuration. Everything is
// read once at process start from a yaml file and/or XBAN_ prefixed env vars.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/crossban/xban/internal/log"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var (
	ErrReadConfig   = errors.New("failed to read config file")
	ErrFormatConfig = errors.New("invalid config file format")
	ErrConfigValue  = errors.New("invalid config value")
)

// Static is the process wide configuration. Values are only read during
// startup, never mutated afterwards.
type Static struct {
	// Discord application credentials. The public key is forwarded to the
	// platform when registering the interaction endpoint and is otherwise
	// unused by the gateway transport.
	DiscordAppID     string `mapstructure:"discord_app_id"`
	DiscordPublicKey string `mapstructure:"discord_public_key"`
	DiscordBotToken  string `mapstructure:"discord_bot_token"`

	HTTPHost string `mapstructure:"http_host"`
	HTTPPort int    `mapstructure:"http_port"`

	DatabaseDSN         string `mapstructure:"database_dsn"`
	DatabaseAutoMigrate bool   `mapstructure:"database_auto_migrate"`
	DatabaseLogQueries  bool   `mapstructure:"database_log_queries"`

	LogLevel log.Level `mapstructure:"log_level"`
	LogFile  string    `mapstructure:"log_file"`

	SentryDSN string `mapstructure:"sentry_dsn"`

	// MaxListParticipants caps a single list's pairs + pending invites.
	MaxListParticipants int `mapstructure:"max_list_participants"`
	// MaxGuildLists caps how many lists one guild may participate in or be
	// invited to.
	MaxGuildLists int `mapstructure:"max_guild_lists"`
}

// Addr returns the HTTP listener address in host:port format.
func (s Static) Addr() string {
	return fmt.Sprintf("%s:%d", s.HTTPHost, s.HTTPPort)
}

// Debug is true when debug level logging was requested. Used to gate noisier
// operational surfaces like pprof.
func (s Static) Debug() bool {
	return s.LogLevel == log.Debug
}

// ReadStatic reads the config file and env vars into a Static. When cfgFile
// is empty the default search path ($HOME, cwd) is used.
func ReadStatic(cfgFile string) (Static, error) {
	setDefaultConfigValues()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, errHomeDir := homedir.Dir()
		if errHomeDir == nil {
			viper.AddConfigPath(home)
		}

		viper.AddConfigPath(".")
		viper.SetConfigName("xban")
	}

	viper.SetEnvPrefix("xban")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Static

	if errReadConfig := viper.ReadInConfig(); errReadConfig != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(errReadConfig, &notFound) {
			return config, errors.Join(errReadConfig, ErrReadConfig)
		}
	}

	if errUnmarshal := viper.Unmarshal(&config,
		viper.DecodeHook(mapstructure.DecodeHookFunc(decodeLogLevel()))); errUnmarshal != nil {
		return config, errors.Join(errUnmarshal, ErrFormatConfig)
	}

	if strings.HasPrefix(config.DatabaseDSN, "pgx://") {
		config.DatabaseDSN = strings.Replace(config.DatabaseDSN, "pgx://", "postgres://", 1)
	}

	if config.MaxListParticipants <= 1 || config.MaxGuildLists < 1 {
		return config, ErrConfigValue
	}

	return config, nil
}

// decodeLogLevel validates log_level while it is being unmarshalled, so a
// typo fails startup instead of silently downgrading to the error level.
func decodeLogLevel() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, target reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || target != reflect.TypeOf(log.Level("")) {
			return data, nil
		}

		raw, ok := data.(string)
		if !ok {
			return data, nil
		}

		level := log.Level(strings.ToLower(raw))
		switch level {
		case log.Debug, log.Info, log.Warn, log.Error:
			return level, nil
		default:
			return nil, fmt.Errorf("%w: log_level %q", ErrConfigValue, raw)
		}
	}
}

func setDefaultConfigValues() {
	viper.SetDefault("discord_app_id", "")
	viper.SetDefault("discord_public_key", "")
	viper.SetDefault("discord_bot_token", "")

	viper.SetDefault("http_host", "127.0.0.1")
	viper.SetDefault("http_port", 8020)

	viper.SetDefault("database_dsn", "postgresql://localhost/xban")
	viper.SetDefault("database_auto_migrate", true)
	viper.SetDefault("database_log_queries", false)

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_file", "")

	viper.SetDefault("sentry_dsn", "")

	viper.SetDefault("max_list_participants", 25)
	viper.SetDefault("max_guild_lists", 10)
}
