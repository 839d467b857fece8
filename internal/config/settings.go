package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

var ErrConfigExists = errors.New("config file already exists")

const (
	configFileMode = 0o600
	configDirMode  = 0o700
)

type Settings struct {
	Data      DataSettings      `toml:"data"`
	Memory    MemorySettings    `toml:"memory"`
	Channel   ChannelSettings   `toml:"channel"`
	Tasks     TasksSettings     `toml:"tasks"`
	ChangeLog ChangeLogSettings `toml:"changelog"`
	Logs      LogsSettings      `toml:"logs"`
	Backend   BackendSettings   `toml:"backend"`
	Frontend  FrontendSettings  `toml:"frontend"`
	Reasoning ReasoningSettings `toml:"reasoning"`
	Metrics   MetricsSettings   `toml:"metrics"`
	Log       LogSettings       `toml:"log"`
}

type DataSettings struct {
	Dir string `toml:"dir"`
}

type MemorySettings struct {
	UserPath    string `toml:"user_path"`
	SystemPath  string `toml:"system_path"`
	BackendPath string `toml:"backend_path"`
}

type ChannelSettings struct {
	Dir string `toml:"dir"`
}

type TasksSettings struct {
	Path string `toml:"path"`
}

type ChangeLogSettings struct {
	Path string `toml:"path"`
}

type LogsSettings struct {
	BackendPath  string `toml:"backend_path"`
	ThoughtsPath string `toml:"thoughts_path"`
	JSONPath     string `toml:"json_path"`
}

type BackendSettings struct {
	IdleSleep           string `toml:"idle_sleep"`
	SystemCheckInterval string `toml:"system_check_interval"`
	ScheduleInterval    string `toml:"schedule_interval"`
	QueueLease          string `toml:"queue_lease"`
	SequenceMaxAttempts int    `toml:"sequence_max_attempts"`
}

type FrontendSettings struct {
	PollInterval string `toml:"poll_interval"`
	MaxWait      string `toml:"max_wait"`
}

type ReasoningSettings struct {
	Enabled       bool   `toml:"enabled"`
	BaseURL       string `toml:"base_url"`
	FrontendModel string `toml:"frontend_model"`
	BackendModel  string `toml:"backend_model"`
	Timeout       string `toml:"timeout"`
}

type MetricsSettings struct {
	Addr string `toml:"addr"`
}

type LogSettings struct {
	Level string `toml:"level"`
}

func FromViper(cfg *viper.Viper) (Settings, error) {
	paths := map[string]*string{}
	var s Settings
	paths[KeyUserMemoryPath] = &s.Memory.UserPath
	paths[KeySystemMemoryPath] = &s.Memory.SystemPath
	paths[KeyBackendMemoryPath] = &s.Memory.BackendPath
	paths[KeyChannelDir] = &s.Channel.Dir
	paths[KeyTasksPath] = &s.Tasks.Path
	paths[KeyChangeLogPath] = &s.ChangeLog.Path
	paths[KeyBackendLogPath] = &s.Logs.BackendPath
	paths[KeyThoughtsLogPath] = &s.Logs.ThoughtsPath
	paths[KeyJSONLogPath] = &s.Logs.JSONPath

	for key, target := range paths {
		resolved, err := Path(cfg, key)
		if err != nil {
			return Settings{}, err
		}
		*target = resolved
	}

	s.Data.Dir = cfg.GetString(KeyDataDir)
	s.Backend = BackendSettings{
		IdleSleep:           cfg.GetDuration(KeyIdleSleep).String(),
		SystemCheckInterval: cfg.GetDuration(KeySystemCheckInterval).String(),
		ScheduleInterval:    cfg.GetDuration(KeyScheduleInterval).String(),
		QueueLease:          cfg.GetDuration(KeyQueueLease).String(),
		SequenceMaxAttempts: cfg.GetInt(KeySequenceMaxAttempts),
	}
	s.Frontend = FrontendSettings{
		PollInterval: cfg.GetDuration(KeyPollInterval).String(),
		MaxWait:      cfg.GetDuration(KeyMaxWait).String(),
	}
	s.Reasoning = ReasoningSettings{
		Enabled:       cfg.GetBool(KeyReasoningEnabled),
		BaseURL:       cfg.GetString(KeyReasoningBaseURL),
		FrontendModel: cfg.GetString(KeyFrontendModel),
		BackendModel:  cfg.GetString(KeyBackendModel),
		Timeout:       cfg.GetDuration(KeyReasoningTimeout).String(),
	}
	s.Metrics.Addr = cfg.GetString(KeyMetricsAddr)
	s.Log.Level = cfg.GetString(KeyLogLevel)

	return s, nil
}

func Encode(s Settings) ([]byte, error) {
	data, err := toml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	return data, nil
}

// WriteFile writes s as TOML to path, refusing to replace an existing file
// unless force is set.
func WriteFile(path string, s Settings, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := Encode(s)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, configFileMode); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func FilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, DefaultDirName, configName+"."+configType), nil
}
