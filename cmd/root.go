// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Link flags
	configPath  string
	logLevel    string
	rpcTimeout  time.Duration
	readTimeout time.Duration

	// Resolved in PersistentPreRunE
	active settings
	logger = zap.NewNop().Sugar()
)

var rootCmd = &cobra.Command{
	Use:   "seedscope",
	Short: "VisionSeed YtMsg Protocol Tool",
	Long: `Seedscope - A CLI tool for talking to VisionSeed vision sensors over the
YtMsg serial protocol.

Provides commands for raw message logging, link health monitoring, device
information, file and config management, and face library management.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Settings may also come from a TOML file (--config). Command line flags win
over the file, and SEEDSCOPE_LOG_LEVEL overrides the file log level.

For WebSocket authentication, the password is read from the SEEDSCOPE_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: resolveSettings,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", defaultBaudRate, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Link flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&rpcTimeout, "rpc-timeout", defaultRpcTimeout, "Deadline for each device call")
	rootCmd.PersistentFlags().DurationVar(&readTimeout, "read-timeout", defaultReadTimeout, "Bounded transport read timeout")
}

// resolveSettings merges defaults, the settings file, the environment and
// flags, then builds the logger
func resolveSettings(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(settingsPath(configPath), defaultSettings())
	if err != nil {
		return err
	}
	applyEnv(&s)
	applyFlags(cmd, &s)
	if err := s.validate(); err != nil {
		return err
	}
	active = s

	l, err := newLogger(s.LogLevel)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// Execute runs the root command
func Execute() error {
	return execute(rootCmd.Execute)
}

// execute runs fn and flushes whichever logger is active when it returns
func execute(fn func() error) error {
	defer func() { _ = logger.Sync() }()
	return fn()
}
