package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Shop    ShopConfig    `mapstructure:"shop"`
	Backend BackendConfig `mapstructure:"backend"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type ShopConfig struct {
	PageSize       int           `mapstructure:"page_size"`
	DebounceWindow time.Duration `mapstructure:"debounce_window"`
}

// BackendConfig tunes the in-memory backend simulator. Latencies of zero
// make calls resolve immediately, which the tests rely on.
type BackendConfig struct {
	CatalogSize        int           `mapstructure:"catalog_size"`
	Seed               int64         `mapstructure:"seed"`
	MinLatency         time.Duration `mapstructure:"min_latency"`
	MaxLatency         time.Duration `mapstructure:"max_latency"`
	DetailLatency      time.Duration `mapstructure:"detail_latency"`
	OrderLatency       time.Duration `mapstructure:"order_latency"`
	ListOrdersLatency  time.Duration `mapstructure:"list_orders_latency"`
	PaymentFailureRate float64       `mapstructure:"payment_failure_rate"`
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Shop.PageSize <= 0 {
		config.Shop.PageSize = 20
	}
	if config.Shop.DebounceWindow <= 0 {
		config.Shop.DebounceWindow = 300 * time.Millisecond
	}

	return &config, nil
}
