// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
	"github.com/spf13/cobra"
)

var (
	pingTimeout int
	pingCount   int
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the RPC round trip by querying device info",
	Long: `Send GET_DEVICE_INFO requests and wait for the matching responses.

This command tests bidirectional communication with the device over a
serial port or a WebSocket bridge. Each request carries a fresh sequence id
and only the response with that id counts; anything else is discarded.

This is useful for verifying:
  - The connection is established (and Basic auth works over WebSocket)
  - The device answers RPCs
  - Round trip latency

Exit codes:
  0 - All pings successful
  1 - One or more pings failed/timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingTimeout, "timeout", 5, "Timeout in seconds for each ping")
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
}

func runPing(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer s.Close()

	fmt.Printf("Seedscope - Ping Test\n")
	fmt.Printf("Connection: %s\n", s.info)
	fmt.Printf("Timeout: %d seconds per ping\n", pingTimeout)
	fmt.Printf("Count: %d pings\n\n", pingCount)

	timeout := time.Duration(pingTimeout) * time.Second
	successCount := 0
	failCount := 0

	for i := 1; i <= pingCount; i++ {
		fmt.Printf("Ping %d/%d: ", i, pingCount)

		startTime := time.Now()
		var resp *ytlink.Response
		err := s.do(func(d *ytlink.Device) error {
			var err error
			resp, err = d.Link().SendRpc(ytlink.NewRpc(ytlink.FuncGetDeviceInfo), timeout)
			return err
		})
		rtt := time.Since(startTime)

		var rpcErr *ytlink.RpcError
		switch {
		case err == nil:
			fmt.Printf("PONG seq=%d, rtt=%v, info=%q\n", resp.Sequence, rtt.Round(time.Millisecond), resp.StrData)
			successCount++
		case errors.Is(err, ytlink.ErrTimeout):
			fmt.Printf("TIMEOUT (no response in %ds)\n", pingTimeout)
			failCount++
		case errors.As(err, &rpcErr):
			// The device answered, the link works
			fmt.Printf("PONG with error %s, rtt=%v\n", ytlink.FormatStatus(rpcErr.Code), rtt.Round(time.Millisecond))
			successCount++
		default:
			fmt.Printf("FAILED: %v\n", err)
			failCount++
		}

		// Small delay between pings
		if i < pingCount {
			time.Sleep(100 * time.Millisecond)
		}
	}

	stats := s.statistics()
	fmt.Printf("\n--- Ping statistics ---\n")
	fmt.Printf("%d pings sent, %d responses received, %.0f%% loss\n",
		pingCount, successCount, float64(failCount)/float64(pingCount)*100)
	if stats.DiscardedMessages > 0 {
		fmt.Printf("%d unrelated messages discarded while waiting\n", stats.DiscardedMessages)
	}

	if failCount > 0 {
		os.Exit(1)
	}
	return nil
}
