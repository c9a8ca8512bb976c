package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is loaded once at startup and passed by reference to every
// component; nothing reads configuration through package state.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port       int    `mapstructure:"port"`
	AuthSecret string `mapstructure:"auth_secret"` // empty disables token auth on /finance
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	FinanceEvents string `mapstructure:"finance_events"`
}

type BusinessConfig struct {
	// Pagination bounds for transaction listing. Callers asking for more
	// than MaxPageSize get MaxPageSize.
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
	// Pending recharges older than this are swept to failed.
	RechargeTimeoutMinutes int `mapstructure:"recharge_timeout_minutes"`
	// Attempts at generating a unique order number before giving up.
	OrderNumberRetries int `mapstructure:"order_number_retries"`
	// Delivery attempts for one outbox message.
	MaxRetryCount int `mapstructure:"max_retry_count"`
}

// Load reads and validates the YAML configuration file.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("business.default_page_size", 20)
	viper.SetDefault("business.max_page_size", 200)
	viper.SetDefault("business.recharge_timeout_minutes", 30)
	viper.SetDefault("business.order_number_retries", 3)
	viper.SetDefault("business.max_retry_count", 5)

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return config, nil
}
