package main

import (
	"fmt"
	"strings"

	"github.com/talowa-org/talowa-backend/internal/repository"
	"github.com/talowa-org/talowa-backend/internal/service"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config       `yaml:"database"`
	Redis    RedisConfig             `yaml:"redis"`
	Server   ServerConfig            `yaml:"server"`
	Auth     AuthConfig              `yaml:"auth"`
	Roles    []service.RoleThreshold `yaml:"roles"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
}

type AuthConfig struct {
	AdminToken    string `yaml:"adminToken"`
	WebhookSecret string `yaml:"webhookSecret"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
