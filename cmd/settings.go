// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Thermoquad/seedscope/pkg/ytlink"
	"github.com/spf13/cobra"
)

const (
	defaultBaudRate    = 115200
	defaultLogLevel    = "warn"
	defaultRpcTimeout  = 3 * time.Second
	defaultReadTimeout = 100 * time.Millisecond

	envLogLevel = "SEEDSCOPE_LOG_LEVEL"

	defaultSettingsFile = "seedscope.toml"
)

// settings is the resolved CLI configuration
type settings struct {
	Port        string
	Baud        int
	URL         string
	Username    string
	NoSSLVerify bool

	LogLevel      string
	RpcTimeout    time.Duration
	ReadTimeout   time.Duration
	ChunkAttempts int
}

// seedscope.toml key mapping
type fileSettings struct {
	Port          string `toml:"port"`
	Baud          int    `toml:"baud"`
	URL           string `toml:"url"`
	Username      string `toml:"username"`
	NoSSLVerify   bool   `toml:"no_ssl_verify"`
	LogLevel      string `toml:"log_level"`
	RpcTimeoutMs  int    `toml:"rpc_timeout_ms"`
	ReadTimeoutMs int    `toml:"read_timeout_ms"`
	ChunkAttempts int    `toml:"chunk_attempts"`
}

func defaultSettings() settings {
	return settings{
		Baud:          defaultBaudRate,
		LogLevel:      defaultLogLevel,
		RpcTimeout:    defaultRpcTimeout,
		ReadTimeout:   defaultReadTimeout,
		ChunkAttempts: ytlink.DefaultConfig().ChunkAttempts,
	}
}

// loadSettings overlays the keys present in the TOML file at path on base.
// An empty path returns base unchanged.
func loadSettings(path string, base settings) (settings, error) {
	if path == "" {
		return base, nil
	}

	var raw fileSettings
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return settings{}, fmt.Errorf("load settings: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return settings{}, fmt.Errorf("load settings: unknown key %q", undecoded[0].String())
	}

	s := base
	if meta.IsDefined("port") {
		s.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baud") {
		s.Baud = raw.Baud
	}
	if meta.IsDefined("url") {
		s.URL = strings.TrimSpace(raw.URL)
	}
	if meta.IsDefined("username") {
		s.Username = strings.TrimSpace(raw.Username)
	}
	if meta.IsDefined("no_ssl_verify") {
		s.NoSSLVerify = raw.NoSSLVerify
	}
	if meta.IsDefined("log_level") {
		s.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("rpc_timeout_ms") {
		s.RpcTimeout = time.Duration(raw.RpcTimeoutMs) * time.Millisecond
	}
	if meta.IsDefined("read_timeout_ms") {
		s.ReadTimeout = time.Duration(raw.ReadTimeoutMs) * time.Millisecond
	}
	if meta.IsDefined("chunk_attempts") {
		s.ChunkAttempts = raw.ChunkAttempts
	}
	return s, nil
}

// settingsPath returns the explicit settings file, or seedscope.toml in
// the working directory when it exists
func settingsPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(defaultSettingsFile); err == nil {
		return defaultSettingsFile
	}
	return ""
}

// applyEnv applies environment overrides
func applyEnv(s *settings) {
	if level := strings.TrimSpace(os.Getenv(envLogLevel)); level != "" {
		s.LogLevel = level
	}
}

// applyFlags applies flags the user set explicitly
func applyFlags(cmd *cobra.Command, s *settings) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		s.Port = portName
	}
	if flags.Changed("baud") {
		s.Baud = baudRate
	}
	if flags.Changed("url") {
		s.URL = wsURL
	}
	if flags.Changed("username") {
		s.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		s.NoSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("log-level") {
		s.LogLevel = logLevel
	}
	if flags.Changed("rpc-timeout") {
		s.RpcTimeout = rpcTimeout
	}
	if flags.Changed("read-timeout") {
		s.ReadTimeout = readTimeout
	}
}

func (s settings) validate() error {
	if s.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", s.Baud)
	}
	if s.RpcTimeout <= 0 {
		return fmt.Errorf("rpc timeout must be positive, got %s", s.RpcTimeout)
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %s", s.ReadTimeout)
	}
	if s.ChunkAttempts <= 0 {
		return fmt.Errorf("chunk attempts must be positive, got %d", s.ChunkAttempts)
	}
	return nil
}

// linkConfig returns the link settings derived from s
func (s settings) linkConfig() ytlink.Config {
	cfg := ytlink.DefaultConfig()
	cfg.RpcTimeout = s.RpcTimeout
	cfg.ChunkAttempts = s.ChunkAttempts
	return cfg
}
