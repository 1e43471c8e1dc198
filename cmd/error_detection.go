// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection",
	Short: "Detect and analyze broken frames and suspicious results",
	Long: `Track link health with statistics while results stream in.

This command watches the link and reports:
  - Broken frames (unfinished, oversize length, length or payload CRC)
  - Envelope decode failures
  - Suspicious inference results (boxes outside the frame, undecodable
    entries, indices past the declared count)
  - Statistics and trends (frame rate, error rate, success rate)

By default, only errors are displayed. Use --show-all to display every
message too.

Frames are checked in real time, with errors highlighted immediately and
periodic statistics summaries displayed at configurable intervals.`,
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all messages (not just errors)")
	errorDetectionCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	errorDetectionCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if useTUI {
		return runTUIMode(s)
	}
	return runTextMode(s)
}

// runTUIMode runs error detection in TUI mode
func runTUIMode(s *session) error {
	// Log lines would tear the alternate screen
	s.link.SetLogger(nil)

	m := initialModel(s.info, statsInterval, showAll)
	p := tea.NewProgram(m)

	done := make(chan struct{})
	go func() {
		err := runMonitor(s.link, time.Second, &tuiHandler{p: p}, done)
		if errors.Is(err, ErrConnectionClosed) {
			p.Send(closedMsg{err: err})
		}
	}()
	defer close(done)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runTextMode runs error detection in text mode
func runTextMode(s *session) error {
	fmt.Printf("Seedscope - Error Detection Mode\n")
	fmt.Printf("Connection: %s\n", s.info)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All messages\n")
	} else {
		fmt.Printf("Mode: Errors only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	h := &textHandler{out: os.Stdout, showAll: showAll}
	err := runMonitor(s.link, time.Duration(statsInterval)*time.Second, h, nil)
	if errors.Is(err, ErrConnectionClosed) {
		fmt.Println("Connection closed")
		return nil
	}
	return err
}

// textHandler prints monitor events as highlighted text
type textHandler struct {
	out     io.Writer
	showAll bool
}

func (h *textHandler) onSync(discarded uint64) {
	if discarded > 0 {
		fmt.Fprintf(h.out, "[SYNC] Synchronized after discarding %d broken frames\n\n", discarded)
	} else {
		fmt.Fprintf(h.out, "[SYNC] Synchronized\n\n")
	}
}

func (h *textHandler) onMessage(msg *ytlink.Message, issues []ytlink.ValidationError) {
	if len(issues) > 0 {
		printValidationErrors(h.out, msg, issues)
		return
	}
	if h.showAll {
		fmt.Fprint(h.out, ytlink.FormatMessage(msg))
	}
}

func (h *textHandler) onAnomaly(a *ytlink.FramingAnomaly) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(h.out, "[%s] \033[1;31mFRAME ERROR:\033[0m %s\n", timestamp, a.Message)
	fmt.Fprintf(h.out, "  Kind: %s\n", a.Type)
	fmt.Fprintf(h.out, "  >>> FRAME DISCARDED <<<\n\n")
}

func (h *textHandler) onStats(stats ytlink.Statistics) {
	fmt.Fprintln(h.out)
	fmt.Fprint(h.out, stats.String())
	fmt.Fprintln(h.out)
}

func (h *textHandler) onReadError(err error) {
	logger.Warnf("read error: %v", err)
}

// printValidationErrors prints the problems found in one result event
func printValidationErrors(out io.Writer, msg *ytlink.Message, issues []ytlink.ValidationError) {
	timestamp := msg.Timestamp().Format("15:04:05.000")
	e := msg.Result

	fmt.Fprintf(out, "[%s] \033[1;33mRESULT WARNING:\033[0m frame=%d size=%dx%d\n", timestamp, e.FrameID, e.Width, e.Height)
	fmt.Fprintf(out, "  CRC: \033[1;32mOK\033[0m\n")
	for i, issue := range issues {
		fmt.Fprintf(out, "  Issue %d: \033[1;33m%s\033[0m\n", i+1, issue.Message)
	}
	fmt.Fprintf(out, "  Device uptime: %s\n\n", formatUptime(e.Timestamp))
}
