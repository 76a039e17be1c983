package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// maxBatchSize is the keyword tool's hint keyword limit
const maxBatchSize = 5

// legacyEnv maps config keys to the plain variable names used by
// existing workflow secrets
var legacyEnv = map[string]string{
	"naver.access_license": "NAVER_ACCESS_LICENSE",
	"naver.secret_key":     "NAVER_SECRET_KEY",
	"naver.customer_id":    "CUSTOMER_ID",
	"telegram.bot_token":   "TELEGRAM_TOKEN",
	"telegram.chat_id":     "CHAT_ID",
}

type manager struct {
	mu         sync.RWMutex
	config     *Config
	viper      *viper.Viper
	configPath string
}

func NewManager() Manager {
	return &manager{
		viper: viper.New(),
	}
}

func (m *manager) Load(configPath string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.configPath = configPath
	if err := m.setupViper(); err != nil {
		return nil, fmt.Errorf("failed to setup viper: %w", err)
	}

	config, err := m.read()
	if err != nil {
		return nil, err
	}

	m.config = config
	return config, nil
}

func (m *manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config == nil {
		return fmt.Errorf("config not loaded")
	}

	config, err := m.read()
	if err != nil {
		return err
	}

	m.config = config
	return nil
}

func (m *manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *manager) read() (*Config, error) {
	if m.configPath != "" {
		if err := m.viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := m.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Categories) == 0 {
		config.Categories = DefaultCategories()
	}

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (m *manager) setupViper() error {
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	}

	setDefaults(m.viper)

	m.viper.SetEnvPrefix("KEYWORD")
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := "KEYWORD_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := m.viper.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("naver.base_url", "https://api.naver.com")
	v.SetDefault("naver.access_license", "")
	v.SetDefault("naver.secret_key", "")
	v.SetDefault("naver.customer_id", "")
	v.SetDefault("naver.timeout", 30*time.Second)

	v.SetDefault("telegram.base_url", "https://api.telegram.org")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.parse_mode", "")
	v.SetDefault("telegram.timeout", 15*time.Second)

	v.SetDefault("pipeline.min_volume", 1000)
	v.SetDefault("pipeline.rank_limit", 10)
	v.SetDefault("pipeline.ceiling", 15000)
	v.SetDefault("pipeline.batch_size", maxBatchSize)
	v.SetDefault("pipeline.inter_batch_delay", 500*time.Millisecond)
	v.SetDefault("pipeline.run_timeout", 10*time.Minute)
	v.SetDefault("pipeline.delivery_timeout", time.Minute)
	v.SetDefault("pipeline.timezone", "Asia/Seoul")
	v.SetDefault("pipeline.language", "ko")
	v.SetDefault("pipeline.legend", "")

	v.SetDefault("storage.enabled", true)
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.cache_size", 32)
	v.SetDefault("storage.max_reports", 90)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "keyword_report")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.time_format", "")
}

// Validate checks thresholds, categories and storage settings
func Validate(config *Config) error {
	p := config.Pipeline

	if p.BatchSize < 1 || p.BatchSize > maxBatchSize {
		return fmt.Errorf("batch_size must be between 1 and %d, got: %d", maxBatchSize, p.BatchSize)
	}
	if p.RankLimit <= 0 {
		return fmt.Errorf("rank_limit must be positive, got: %d", p.RankLimit)
	}
	if p.MinVolume < 0 {
		return fmt.Errorf("min_volume cannot be negative, got: %d", p.MinVolume)
	}
	if p.Ceiling < p.MinVolume {
		return fmt.Errorf("ceiling (%d) must not be below min_volume (%d)", p.Ceiling, p.MinVolume)
	}
	if p.InterBatchDelay < 0 {
		return fmt.Errorf("inter_batch_delay cannot be negative")
	}
	if p.DeliveryTimeout <= 0 {
		return fmt.Errorf("delivery_timeout must be positive")
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}

	seen := make(map[string]bool, len(config.Categories))
	for i, category := range config.Categories {
		if strings.TrimSpace(category.Name) == "" {
			return fmt.Errorf("category #%d has no name", i+1)
		}
		if seen[category.Name] {
			return fmt.Errorf("duplicate category name %q", category.Name)
		}
		seen[category.Name] = true
		if len(category.Seeds) == 0 {
			return fmt.Errorf("category %q has no seed keywords", category.Name)
		}
	}

	if config.Storage.Enabled && config.Storage.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty when storage is enabled")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	return nil
}

// ValidateCredentials checks the secrets a real run needs. Dispatch
// credentials are optional for dry runs.
func ValidateCredentials(config *Config, dryRun bool) error {
	var missing []string

	if config.Naver.AccessLicense == "" {
		missing = append(missing, "NAVER_ACCESS_LICENSE")
	}
	if config.Naver.SecretKey == "" {
		missing = append(missing, "NAVER_SECRET_KEY")
	}
	if config.Naver.CustomerID == "" {
		missing = append(missing, "CUSTOMER_ID")
	}
	if !dryRun {
		if config.Telegram.BotToken == "" {
			missing = append(missing, "TELEGRAM_TOKEN")
		}
		if config.Telegram.ChatID == "" {
			missing = append(missing, "CHAT_ID")
		}
	}

	if len(missing) > 0 {
		return errors.New("missing required credentials: " + strings.Join(missing, ", "))
	}
	return nil
}
