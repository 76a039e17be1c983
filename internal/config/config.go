package config

import (
	"time"

	"keyword-report/pkg/logger"
)

type Config struct {
	Naver      NaverConfig      `mapstructure:"naver"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Categories []CategoryConfig `mapstructure:"categories"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logger     logger.Config    `mapstructure:"logger"`
}

type NaverConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	AccessLicense string        `mapstructure:"access_license"`
	SecretKey     string        `mapstructure:"secret_key"`
	CustomerID    string        `mapstructure:"customer_id"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type TelegramConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	BotToken  string        `mapstructure:"bot_token"`
	ChatID    string        `mapstructure:"chat_id"`
	ParseMode string        `mapstructure:"parse_mode"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type PipelineConfig struct {
	MinVolume       int64         `mapstructure:"min_volume"`
	RankLimit       int           `mapstructure:"rank_limit"`
	Ceiling         int64         `mapstructure:"ceiling"`
	BatchSize       int           `mapstructure:"batch_size"`
	InterBatchDelay time.Duration `mapstructure:"inter_batch_delay"`
	RunTimeout      time.Duration `mapstructure:"run_timeout"`
	DeliveryTimeout time.Duration `mapstructure:"delivery_timeout"`
	Timezone        string        `mapstructure:"timezone"`
	Language        string        `mapstructure:"language"`
	Legend          string        `mapstructure:"legend"`
}

type CategoryConfig struct {
	Name  string   `mapstructure:"name"`
	Seeds []string `mapstructure:"seeds"`
}

type StorageConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	DataDir    string `mapstructure:"data_dir"`
	CacheSize  int    `mapstructure:"cache_size"`
	MaxReports int    `mapstructure:"max_reports"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

type Manager interface {
	Load(configPath string) (*Config, error)
	Reload() error
	GetConfig() *Config
}

// DefaultCategories are used when the configuration names none
func DefaultCategories() []CategoryConfig {
	return []CategoryConfig{
		{
			Name:  "사주/운세",
			Seeds: []string{"사주팔자", "만세력", "오늘의운세", "무료사주", "삼재", "꿈해몽", "궁합", "일주론", "신살", "개운법"},
		},
		{
			Name:  "풍수지리/인테리어",
			Seeds: []string{"풍수지리", "풍수인테리어", "침대방향", "거실풍수", "현관풍수", "재물운", "이사방향", "풍수액자", "주방풍수", "사무실풍수"},
		},
	}
}
