// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
	"github.com/spf13/cobra"
)

var (
	faceRegisterPic       string
	faceRegisterRemote    string
	faceRegisterTimeoutMs int32
	faceDeleteByID        bool
	faceClearYes          bool
	facePicOut            string
)

var faceCmd = &cobra.Command{
	Use:   "face",
	Short: "Manage the on-device face library",
	Long: `Register, rename, delete and list faces in the device face library.

Examples:
  seedscope face list --port /dev/ttyACM0
  seedscope face register alice --pic alice.jpg --port /dev/ttyACM0
  seedscope face register bob --port /dev/ttyACM0      # from the camera
  seedscope face delete alice --port /dev/ttyACM0
  seedscope face delete --id 12 --port /dev/ttyACM0`,
}

var faceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered face",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var faces []ytlink.FaceIDEntry
		err := withSession(func(d *ytlink.Device) error {
			var err error
			faces, err = d.ListFaceID()
			return err
		})
		if err != nil {
			return err
		}
		printFaces(faces)
		return nil
	},
}

var faceRegisterCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Register a face from a local picture, a device picture or the camera",
	Long: `Register a face under the given name.

  --pic FILE     upload a local picture and register it
  --remote PATH  register a picture already stored on the device
  (neither)      register the next face the camera sees`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if faceRegisterPic != "" && faceRegisterRemote != "" {
			return fmt.Errorf("--pic and --remote are mutually exclusive")
		}
		name := args[0]

		var faceID int32
		err := withSession(func(d *ytlink.Device) error {
			var err error
			switch {
			case faceRegisterPic != "":
				faceID, err = d.RegisterFaceIDWithPic(faceRegisterPic, name, newProgressBar("Uploading "+filepath.Base(faceRegisterPic)))
			case faceRegisterRemote != "":
				faceID, err = d.RegisterFaceIDWithRemotePic(faceRegisterRemote, name)
			default:
				fmt.Printf("Look at the camera (%d ms)...\n", faceRegisterTimeoutMs)
				faceID, err = d.RegisterFaceIDFromCamera(name, faceRegisterTimeoutMs)
			}
			return err
		})
		if err != nil {
			return err
		}
		fmt.Printf("Registered %q as face %d\n", name, faceID)
		return nil
	},
}

var faceDeleteCmd = &cobra.Command{
	Use:   "delete <name|id>",
	Short: "Delete faces by name, or one face by id with --id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if faceDeleteByID {
			id, err := parseFaceID(args[0])
			if err != nil {
				return err
			}
			if err := withSession(func(d *ytlink.Device) error { return d.DeleteFaceID(id) }); err != nil {
				return err
			}
			fmt.Printf("Deleted face %d\n", id)
			return nil
		}

		var n int32
		err := withSession(func(d *ytlink.Device) error {
			var err error
			n, err = d.DeleteFaceName(args[0])
			return err
		})
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d face(s) named %q\n", n, args[0])
		return nil
	},
}

var faceRenameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a registered face",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseFaceID(args[0])
		if err != nil {
			return err
		}
		return withSession(func(d *ytlink.Device) error {
			return d.SetFaceID(id, args[1])
		})
	},
}

var faceClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every registered face",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !faceClearYes {
			return fmt.Errorf("refusing to clear the face library without --yes")
		}
		return withSession(func(d *ytlink.Device) error {
			return d.ClearFaceLib()
		})
	},
}

var facePicCmd = &cobra.Command{
	Use:   "pic <id>",
	Short: "Download the registered picture of a face",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseFaceID(args[0])
		if err != nil {
			return err
		}
		var data []byte
		err = withSession(func(d *ytlink.Device) error {
			var err error
			data, err = d.GetFacePic(id)
			return err
		})
		if err != nil {
			return err
		}
		out := facePicOut
		if out == "" {
			out = fmt.Sprintf("face_%d.jpg", id)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(faceCmd)
	faceCmd.AddCommand(faceListCmd, faceRegisterCmd, faceDeleteCmd, faceRenameCmd, faceClearCmd, facePicCmd)

	faceRegisterCmd.Flags().StringVar(&faceRegisterPic, "pic", "", "Local picture to upload and register")
	faceRegisterCmd.Flags().StringVar(&faceRegisterRemote, "remote", "", "Picture already on the device")
	faceRegisterCmd.Flags().Int32Var(&faceRegisterTimeoutMs, "window", 10000, "Camera registration window in ms")
	faceDeleteCmd.Flags().BoolVar(&faceDeleteByID, "id", false, "Treat the argument as a face id")
	faceClearCmd.Flags().BoolVar(&faceClearYes, "yes", false, "Confirm clearing the whole library")
	facePicCmd.Flags().StringVarP(&facePicOut, "out", "o", "", "Output file (default face_<id>.jpg)")
}

func parseFaceID(s string) (int32, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid face id %q: %w", s, err)
	}
	return int32(id), nil
}
