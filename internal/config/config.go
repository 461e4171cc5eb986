package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/wbxml/internal/logging"
	"github.com/danmuck/wbxml/internal/protocol/wbxml"
)

const maxChunkSize = 1 << 20

// Config is the wbxmlctl configuration file.
type Config struct {
	// Root is the default unpack destination.
	Root    string        `toml:"root"`
	Codec   CodecConfig   `toml:"codec"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

type CodecConfig struct {
	ChunkSize int `toml:"chunk_size"`
	// DocumentID is written to the string table; empty means a random UUID.
	DocumentID string `toml:"document_id"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

type MetricsConfig struct {
	// Textfile is a node_exporter textfile path written after each command.
	Textfile string `toml:"textfile"`
}

func Default() Config {
	return Config{
		Root: ".",
		Codec: CodecConfig{
			ChunkSize: wbxml.DefaultChunkSize,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func Validate(cfg Config) error {
	if cfg.Codec.ChunkSize < 1 || cfg.Codec.ChunkSize > maxChunkSize {
		return fmt.Errorf("codec.chunk_size must be in [1, %d], got %d", maxChunkSize, cfg.Codec.ChunkSize)
	}
	if strings.TrimSpace(cfg.Log.Level) != "" {
		if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
			return fmt.Errorf("log.level %q is not a known level", cfg.Log.Level)
		}
	}
	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	if strings.TrimSpace(cfg.Root) == "" {
		return fmt.Errorf("root is required")
	}
	return nil
}

// Logging maps the log section onto a runtime logging config. Environment
// overrides still apply on top.
func (c Config) Logging() logging.Config {
	out := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(c.Log.Level); ok {
		out.Level = lvl
	}
	out.File = c.Log.File
	out.MaxSizeMB = c.Log.MaxSizeMB
	out.MaxBackups = c.Log.MaxBackups
	logging.ApplyEnv(&out)
	return out
}
