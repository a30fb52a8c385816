// Package config loads memcat settings from a TOML file.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// Compression names accepted by Config.Compress.
const (
	CompressNone = "none"
	CompressZstd = "zstd"
	CompressLZ4  = "lz4"
)

// Config holds the settings of a memcat run.
type Config struct {
	// RingSize is the capacity of the mirrored ring used to stage input.
	RingSize int
	// SinkSize is the buffer size of the output sink.
	SinkSize int
	// Output is the file to write; empty means stdout.
	Output string
	// Compress is one of CompressNone, CompressZstd, CompressLZ4.
	Compress string
	// Digest prints a blake3 digest of the input when set.
	Digest bool
	// LogLevel overrides the log level when not empty.
	LogLevel string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		RingSize: 1 << 16,
		SinkSize: 1 << 12,
		Compress: CompressNone,
	}
}

type fileConfig struct {
	RingSize int    `toml:"ring_size"`
	SinkSize int    `toml:"sink_size"`
	Output   string `toml:"output"`
	Compress string `toml:"compress"`
	Digest   bool   `toml:"digest"`
	LogLevel string `toml:"log_level"`
}

// Load reads path and applies every key it defines on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load memcat config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load memcat config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("ring_size") {
		cfg.RingSize = raw.RingSize
	}
	if meta.IsDefined("sink_size") {
		cfg.SinkSize = raw.SinkSize
	}
	if meta.IsDefined("output") {
		cfg.Output = strings.TrimSpace(raw.Output)
	}
	if meta.IsDefined("compress") {
		cfg.Compress = strings.ToLower(strings.TrimSpace(raw.Compress))
	}
	if meta.IsDefined("digest") {
		cfg.Digest = raw.Digest
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that cfg can be used as is.
func Validate(cfg Config) error {
	if cfg.RingSize <= 0 {
		return fmt.Errorf("ring_size must be positive, got %d", cfg.RingSize)
	}
	if cfg.SinkSize <= 0 {
		return fmt.Errorf("sink_size must be positive, got %d", cfg.SinkSize)
	}
	switch cfg.Compress {
	case "", CompressNone, CompressZstd, CompressLZ4:
	default:
		return fmt.Errorf("compress must be one of none, zstd, lz4; got %q", cfg.Compress)
	}
	return nil
}
