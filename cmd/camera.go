// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
	"github.com/spf13/cobra"
)

var (
	cameraID     int32
	exposureTime int32
	exposureGain int32
	tracePicOut  string
)

var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Configure cameras, flasher and debug overlays",
	Long: `Adjust camera settings on the device.

Examples:
  seedscope camera exposure auto --cam 0 --port /dev/ttyACM0
  seedscope camera exposure manual --cam 1 --time 8000 --gain 16 --port /dev/ttyACM0
  seedscope camera flasher 50 --port /dev/ttyACM0
  seedscope camera rotation 2 --port /dev/ttyACM0`,
}

var cameraExposureCmd = &cobra.Command{
	Use:       "exposure <auto|manual>",
	Short:     "Set automatic or manual exposure",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"auto", "manual"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(d *ytlink.Device) error {
			if args[0] == "auto" {
				return d.SetCamAutoExposure(cameraID)
			}
			return d.SetCamManualExposure(cameraID, exposureTime, exposureGain)
		})
	},
}

// intSetting builds a command that sends one integer setting
func intSetting(use, short string, set func(d *ytlink.Device, v int32) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <value>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[0], err)
			}
			return withSession(func(d *ytlink.Device) error {
				return set(d, int32(v))
			})
		},
	}
}

var cameraTracePicCmd = &cobra.Command{
	Use:   "trace-pic <trace-id>",
	Short: "Download the snapshot of a detection trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid trace id %q: %w", args[0], err)
		}
		var data []byte
		err = withSession(func(d *ytlink.Device) error {
			var err error
			data, err = d.GetTracePic(int32(id))
			return err
		})
		if err != nil {
			return err
		}
		out := tracePicOut
		if out == "" {
			out = fmt.Sprintf("trace_%d.jpg", id)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cameraCmd)
	cameraCmd.AddCommand(
		cameraExposureCmd,
		intSetting("flasher", "Set infrared flasher intensity", (*ytlink.Device).SetFlasher),
		intSetting("main-cam", "Select the camera used for inference", (*ytlink.Device).SetMainCamID),
		intSetting("rotation", "Set image rotation", (*ytlink.Device).SetRotation),
		intSetting("debug-drawing", "Toggle on-device debug overlays", (*ytlink.Device).SetDebugDrawing),
		cameraTracePicCmd,
	)

	cameraExposureCmd.Flags().Int32Var(&cameraID, "cam", 0, "Camera id")
	cameraExposureCmd.Flags().Int32Var(&exposureTime, "time", 10000, "Manual exposure time in microseconds")
	cameraExposureCmd.Flags().Int32Var(&exposureGain, "gain", 16, "Manual exposure gain")
	cameraTracePicCmd.Flags().StringVarP(&tracePicOut, "out", "o", "", "Output file (default trace_<id>.jpg)")
}
