package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	marketDataKeyENV  = "MARKET_DATA_API_KEY"
)

// Config ...
type Config struct {
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		Host       string `yaml:"host"`
		PublicPort int    `yaml:"public_port"`
		AdminPort  int    `yaml:"admin_port"`
	} `yaml:"service"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	MarketData struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		// Стрим опционален: HTTP-котировки — контрактный путь,
		// WS только греет кэш.
		StreamEnabled bool   `yaml:"stream_enabled"`
		StreamURL     string `yaml:"stream_url"`
	} `yaml:"market_data"`

	Email struct {
		APIURL string `yaml:"api_url"`
		APIKey string `yaml:"api_key"`
		From   string `yaml:"from"`
	} `yaml:"email"`

	// Мониторинг
	MonitorBatchSize int           // сколько активных стратегий за один прогон
	PriceTTL         time.Duration // свежесть котировки в кэше
	PositionTTL      time.Duration // свежесть ответа "есть открытая позиция"
	FetchTimeout     time.Duration // таймаут одного запроса котировки
	ChannelTimeout   time.Duration // таймаут одного канала уведомлений
	HistoryDepth     int           // сколько close держим на символ для индикаторов
	SweepInterval    time.Duration // период чистки протухших записей кэша
	MarketHoursCheck bool          // false — прогон идёт в любое время (крипта/тесты)
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		MonitorBatchSize: intFromEnv("MONITOR_BATCH_SIZE", 10),
		PriceTTL:         durationFromEnv("PRICE_TTL", "30s"),
		PositionTTL:      durationFromEnv("POSITION_TTL", "60s"),
		FetchTimeout:     durationFromEnv("FETCH_TIMEOUT", "5s"),
		ChannelTimeout:   durationFromEnv("CHANNEL_TIMEOUT", "10s"),
		HistoryDepth:     intFromEnv("HISTORY_DEPTH", 50),
		SweepInterval:    durationFromEnv("SWEEP_INTERVAL", "5m"),
		MarketHoursCheck: boolFromEnv("MARKET_HOURS_CHECK", true),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	apiKey := os.Getenv(marketDataKeyENV)
	if apiKey != "" {
		config.MarketData.APIKey = apiKey
	}

	return &config, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
