// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
	"github.com/spf13/cobra"
)

var (
	frameTestTimeout int
)

var frameTestCmd = &cobra.Command{
	Use:   "frame_test",
	Short: "Test connection by waiting for a valid YtMsg frame",
	Long: `Wait for a valid YtMsg frame on the connection until timeout.

This command connects to a serial port or WebSocket and waits for any frame
that passes both the length CRC and the payload CRC. Bytes outside a frame
and broken frames are ignored.

Exit codes:
  0 - Frame received before timeout
  1 - Timeout reached without receiving a valid frame
  2 - Connection error

Useful for checking wiring and baud rate before running other commands.`,
	RunE: runFrameTest,
}

func init() {
	rootCmd.AddCommand(frameTestCmd)
	frameTestCmd.Flags().IntVar(&frameTestTimeout, "timeout", 10, "Timeout in seconds to wait for a frame")
}

func runFrameTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection(active)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Seedscope - Frame Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", frameTestTimeout)
	fmt.Printf("Waiting for valid YtMsg frame...\n\n")

	decoder := ytlink.NewDecoder()
	buf := make([]byte, 256)

	frameChan := make(chan *ytlink.Frame, 1)
	errChan := make(chan error, 1)

	// Reader goroutine
	go func() {
		skipped := 0
		for {
			n, err := conn.Read(buf)
			if err != nil {
				errChan <- err
				return
			}

			for i := 0; i < n; i++ {
				frame, decodeErr := decoder.DecodeByte(buf[i])
				if decodeErr != nil {
					skipped++
					continue
				}
				if frame != nil {
					if skipped > 0 {
						fmt.Printf("(discarded %d broken frames before sync)\n", skipped)
					}
					frameChan <- frame
					return
				}
			}
		}
	}()

	select {
	case frame := <-frameChan:
		fmt.Printf("SUCCESS: Received valid frame\n")
		fmt.Printf("  Length: %d bytes\n", frame.Length())
		fmt.Printf("  Length CRC: 0x%04X\n", frame.LengthCRC())
		fmt.Printf("  Payload CRC: 0x%04X\n", frame.CRC())

		var msg ytlink.Message
		if err := ytlink.NewCBORCodec().Unmarshal(frame.Payload(), &msg); err != nil {
			fmt.Printf("  Message: undecodable (%v)\n", err)
		} else {
			fmt.Printf("  Message: %s\n", ytlink.FormatMessageKind(msg.Kind()))
		}
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(frameTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid frame received within %d seconds\n", frameTestTimeout)
		os.Exit(1)
	}

	return nil
}
