package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathDefaultsBelowDataDir(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	cfg := viper.New()
	cfg.Set(KeyDataDir, dataDir)

	path, err := Path(cfg, KeyBackendMemoryPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "data-backend", "backend_memory.json"), path)

	channelDir, err := Path(cfg, KeyChannelDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "src"), channelDir)
}

func TestPathPrefersExplicitValue(t *testing.T) {
	t.Parallel()

	explicit := filepath.Join(t.TempDir(), "nested", "..", "memory.json")
	cfg := viper.New()
	cfg.Set(KeyUserMemoryPath, explicit)

	path, err := Path(cfg, KeyUserMemoryPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(explicit), path)
}

func TestPathRejectsUnknownKey(t *testing.T) {
	t.Parallel()

	_, err := Path(viper.New(), "unknown.path")
	require.Error(t, err)
}

func TestDuration(t *testing.T) {
	t.Parallel()

	cfg := viper.New()
	cfg.Set(KeyIdleSleep, "250ms")
	cfg.Set(KeyMaxWait, "-1s")

	assert.Equal(t, 250*time.Millisecond, Duration(cfg, KeyIdleSleep, time.Second))
	assert.Equal(t, time.Minute, Duration(cfg, KeyMaxWait, time.Minute))
	assert.Equal(t, time.Minute, Duration(nil, KeyMaxWait, time.Minute))
}

func TestWriteFileRoundTripsThroughViper(t *testing.T) {
	t.Parallel()

	dataDir := t.TempDir()
	cfg := viper.New()
	require.NoError(t, SetDefaults(cfg))
	cfg.Set(KeyDataDir, dataDir)
	cfg.Set(KeyMaxWait, "30s")

	settings, err := FromViper(cfg)
	require.NoError(t, err)
	assert.Equal(t, "30s", settings.Frontend.MaxWait)
	assert.Equal(t, filepath.Join(dataDir, "src"), settings.Channel.Dir)

	path := filepath.Join(dataDir, "config.toml")
	require.NoError(t, WriteFile(path, settings, false))
	require.ErrorIs(t, WriteFile(path, settings, false), ErrConfigExists)
	require.NoError(t, WriteFile(path, settings, true))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded Settings
	require.NoError(t, toml.Unmarshal(data, &decoded))
	assert.Equal(t, settings, decoded)

	reloaded := viper.New()
	reloaded.SetConfigFile(path)
	require.NoError(t, reloaded.ReadInConfig())
	assert.Equal(t, 30*time.Second, reloaded.GetDuration(KeyMaxWait))
	assert.Equal(t, 3, reloaded.GetInt(KeySequenceMaxAttempts))
}
