// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
	"github.com/spf13/cobra"
)

var (
	infoFaces bool
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device information",
	Long: `Query the device for its identification strings.

With --faces, the face library is listed as well.

Examples:
  seedscope info --port /dev/ttyACM0
  seedscope info --url ws://bridge.local/visionseed --faces`,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoFaces, "faces", false, "Also list the face library")
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("Seedscope - Device Info\n")
	fmt.Printf("Connection: %s\n\n", s.info)

	var lines []string
	var faces []ytlink.FaceIDEntry
	err = s.do(func(d *ytlink.Device) error {
		var err error
		if lines, err = d.GetDeviceInfo(); err != nil {
			return err
		}
		if infoFaces {
			faces, err = d.ListFaceID()
		}
		return err
	})
	if err != nil {
		return err
	}

	for _, line := range lines {
		fmt.Printf("  %s\n", line)
	}
	if infoFaces {
		fmt.Println()
		printFaces(faces)
	}
	return nil
}

// printFaces lists face library entries one per line
func printFaces(faces []ytlink.FaceIDEntry) {
	fmt.Printf("Face library: %d entries\n", len(faces))
	for _, f := range faces {
		fmt.Printf("  %5d  %s\n", f.FaceID, f.FaceName)
	}
}
