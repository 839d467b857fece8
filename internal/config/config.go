package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	envPrefix  = "LA"

	DefaultDirName = ".life-assistant"
)

const (
	KeyDataDir = "data.dir"

	KeyUserMemoryPath    = "memory.user_path"
	KeySystemMemoryPath  = "memory.system_path"
	KeyBackendMemoryPath = "memory.backend_path"

	KeyChannelDir    = "channel.dir"
	KeyTasksPath     = "tasks.path"
	KeyChangeLogPath = "changelog.path"

	KeyBackendLogPath  = "logs.backend_path"
	KeyThoughtsLogPath = "logs.thoughts_path"
	KeyJSONLogPath     = "logs.json_path"

	KeyIdleSleep           = "backend.idle_sleep"
	KeySystemCheckInterval = "backend.system_check_interval"
	KeyScheduleInterval    = "backend.schedule_interval"
	KeyQueueLease          = "backend.queue_lease"
	KeySequenceMaxAttempts = "backend.sequence_max_attempts"

	KeyPollInterval = "frontend.poll_interval"
	KeyMaxWait      = "frontend.max_wait"

	KeyReasoningEnabled = "reasoning.enabled"
	KeyReasoningBaseURL = "reasoning.base_url"
	KeyFrontendModel    = "reasoning.frontend_model"
	KeyBackendModel     = "reasoning.backend_model"
	KeyReasoningTimeout = "reasoning.timeout"

	KeyMetricsAddr = "metrics.addr"
	KeyLogLevel    = "log.level"
)

// relativePaths are resolved against data.dir when not configured.
var relativePaths = map[string]string{
	KeyUserMemoryPath:    filepath.Join("data-user", "memory.json"),
	KeySystemMemoryPath:  filepath.Join("data-user", "system_memory.json"),
	KeyBackendMemoryPath: filepath.Join("data-backend", "backend_memory.json"),
	KeyChannelDir:        "src",
	KeyTasksPath:         filepath.Join("src", "tasks.md"),
	KeyChangeLogPath:     filepath.Join("data-backend", "change_log.db"),
	KeyBackendLogPath:    filepath.Join("data-backend", "backend_log.md"),
	KeyThoughtsLogPath:   filepath.Join("data-backend", "internal_thoughts.log"),
	KeyJSONLogPath:       filepath.Join("data-backend", "backend.jsonl"),
}

// Load builds a viper instance from $HOME/.life-assistant/config.toml and
// LA_* environment variables. A missing config file is fine.
func Load() (*viper.Viper, error) {
	cfg := viper.New()
	if err := SetDefaults(cfg); err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, DefaultDirName))
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return cfg, nil
}

func SetDefaults(cfg *viper.Viper) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}

	cfg.SetDefault(KeyDataDir, filepath.Join(homeDir, DefaultDirName))
	cfg.SetDefault(KeyIdleSleep, time.Second)
	cfg.SetDefault(KeySystemCheckInterval, 5*time.Minute)
	cfg.SetDefault(KeyScheduleInterval, time.Minute)
	cfg.SetDefault(KeyQueueLease, 10*time.Minute)
	cfg.SetDefault(KeySequenceMaxAttempts, 3)
	cfg.SetDefault(KeyPollInterval, 500*time.Millisecond)
	cfg.SetDefault(KeyMaxWait, 60*time.Second)
	cfg.SetDefault(KeyReasoningEnabled, true)
	cfg.SetDefault(KeyReasoningBaseURL, "http://localhost:11434")
	cfg.SetDefault(KeyFrontendModel, "llama3.2")
	cfg.SetDefault(KeyBackendModel, "deepseek-coder:latest")
	cfg.SetDefault(KeyReasoningTimeout, 120*time.Second)
	cfg.SetDefault(KeyMetricsAddr, "")
	cfg.SetDefault(KeyLogLevel, "info")

	return nil
}

// Path returns the absolute path configured under key, falling back to the
// key's default location below data.dir.
func Path(cfg *viper.Viper, key string) (string, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := strings.TrimSpace(cfg.GetString(key))
	if path == "" {
		relative, ok := relativePaths[key]
		if !ok {
			return "", fmt.Errorf("no default path for %s", key)
		}

		dataDir := strings.TrimSpace(cfg.GetString(KeyDataDir))
		if dataDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home directory: %w", err)
			}
			dataDir = filepath.Join(homeDir, DefaultDirName)
		}
		path = filepath.Join(dataDir, relative)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", key, err)
	}

	return filepath.Clean(absPath), nil
}

func Duration(cfg *viper.Viper, key string, fallback time.Duration) time.Duration {
	if cfg == nil {
		return fallback
	}

	value := cfg.GetDuration(key)
	if value <= 0 {
		return fallback
	}

	return value
}
