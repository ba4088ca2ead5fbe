package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort                 int    `mapstructure:"APP_PORT"`
	StoreBackend            string `mapstructure:"STORE_BACKEND"`
	DatabasePath            string `mapstructure:"DATABASE_PATH"`
	RedisAddr               string `mapstructure:"REDIS_ADDR"`
	AssistantURL            string `mapstructure:"ASSISTANT_URL"`
	AssistantTimeoutSeconds int    `mapstructure:"ASSISTANT_TIMEOUT_SECONDS"`
	TypingDwellMillis       int    `mapstructure:"TYPING_DWELL_MS"`
	LogLevel                string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("STORE_BACKEND", "sqlite")
	viper.SetDefault("DATABASE_PATH", "/data/agentspace.db")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("ASSISTANT_URL", "http://localhost:8001")
	viper.SetDefault("ASSISTANT_TIMEOUT_SECONDS", 30)
	viper.SetDefault("TYPING_DWELL_MS", 1000)
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
