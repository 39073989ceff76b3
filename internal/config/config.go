package config

import (
	"io/ioutil"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации worldcore.
type Config struct {
	World    WorldConfig    `yaml:"world"`
	Auth     AuthConfig     `yaml:"auth"`
	EventBus EventBusConfig `yaml:"eventbus"`
	Server   ServerConfig   `yaml:"server"`
}

// WorldConfig задаёт всё, что нужно для загрузки таблиц данных, открытия
// хранилища и детерминированной генерации рельефа (spec.md §2, §3).
type WorldConfig struct {
	BlocksPath    string `yaml:"blocks_path"`
	TemplatesPath string `yaml:"templates_path"`
	ItemsPath     string `yaml:"items_path"`
	StoragePath   string `yaml:"storage_path"`
	Seed          int64  `yaml:"seed"`
}

// AuthConfig задаёт подключение к базе учётных данных (spec.md §6).
type AuthConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// InMemory переключает на TestRepository вместо MySQLRepository — для
	// локальных запусков и тестов без настоящей БД.
	InMemory bool `yaml:"in_memory"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	// InMemory переключает на NewMemoryBus вместо JetStream.
	InMemory bool `yaml:"in_memory"`
}

type ServerConfig struct {
	MetricsPort int `yaml:"metrics_port"`
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "WORLDCORE_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}
	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV WORLDCORE_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("WORLDCORE_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
