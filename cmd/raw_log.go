// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
	"github.com/spf13/cobra"
)

var (
	rawLogResultsOnly bool
	rawLogNoAnomalies bool
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display received YtMsg messages in human-readable format",
	Long: `Continuously decode and display YtMsg messages as they arrive.

Each message is shown with its timestamp and kind. Inference results are
expanded into one line per result path, for example:

  [12:00:01.250] RESULT frame=42 time=10250 ms size=640x480
    [FACE_DETECTION] 1
    [FACE_DETECTION 0] rect x=210 y=96 w=180 h=180

Discarded frames are reported as [ERROR] lines.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().BoolVar(&rawLogResultsOnly, "results-only", false, "Only show inference results")
	rawLogCmd.Flags().BoolVar(&rawLogNoAnomalies, "no-errors", false, "Hide discarded frame reports")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("Seedscope - Raw Message Log\n")
	fmt.Printf("Connection: %s\n", s.info)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	if !rawLogNoAnomalies {
		s.link.OnAnomaly = func(a *ytlink.FramingAnomaly) {
			fmt.Printf("[ERROR] %s: %s\n", a.Type, a.Message)
		}
	}

	for {
		msg, err := s.link.RecvRunOnce()
		if err != nil {
			// A closed WebSocket does not come back
			if errors.Is(err, ErrConnectionClosed) {
				logger.Info("connection closed")
				return nil
			}
			logger.Warnf("read error: %v", err)
			continue
		}
		if msg == nil {
			continue
		}
		if rawLogResultsOnly && msg.Kind() != ytlink.KindResult {
			continue
		}
		fmt.Print(ytlink.FormatMessage(msg))
	}
}
