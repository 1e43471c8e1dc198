// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	filesAuth      string
	filesConfigOut string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage files and config domains on the device",
	Long: `List, upload and delete device files, and read or replace config domains.

Examples:
  seedscope files ls /sdcard --port /dev/ttyACM0
  seedscope files upload model.bin /sdcard/model.bin --port /dev/ttyACM0
  seedscope files get-config face --out face.json --port /dev/ttyACM0
  seedscope files set-config face face.json --port /dev/ttyACM0`,
}

var filesLsCmd = &cobra.Command{
	Use:   "ls <remote-dir>",
	Short: "List a remote directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		err := withSession(func(d *ytlink.Device) error {
			var err error
			files, err = d.ListFile(args[0])
			return err
		})
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return nil
	},
}

var filesRmCmd = &cobra.Command{
	Use:   "rm <remote-file>",
	Short: "Delete a remote file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(d *ytlink.Device) error {
			return d.DeleteFile(args[0], filesAuth)
		})
	},
}

var filesUploadCmd = &cobra.Command{
	Use:   "upload <local-file> [remote-path]",
	Short: "Upload a local file in chunks",
	Long: `Upload a local file to the device. The file is sent in parts of at most
131072 bytes; each part is retried before the upload is aborted.

When remote-path is omitted the file lands in /sdcard under its own name.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote := path.Join("/sdcard", path.Base(args[0]))
		if len(args) == 2 {
			remote = args[1]
		}
		return withSession(func(d *ytlink.Device) error {
			return d.UploadFile(args[0], remote, filesAuth, newProgressBar("Uploading "+path.Base(args[0])))
		})
	},
}

var filesGetConfigCmd = &cobra.Command{
	Use:   "get-config <domain>",
	Short: "Print a config domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var content string
		err := withSession(func(d *ytlink.Device) error {
			var err error
			content, err = d.GetConfig(args[0])
			return err
		})
		if err != nil {
			return err
		}
		if filesConfigOut != "" {
			return os.WriteFile(filesConfigOut, []byte(content), 0o644)
		}
		fmt.Println(content)
		return nil
	},
}

var filesSetConfigCmd = &cobra.Command{
	Use:   "set-config <domain> <file|->",
	Short: "Replace a config domain from a file or stdin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := readInput(args[1])
		if err != nil {
			return err
		}
		return withSession(func(d *ytlink.Device) error {
			return d.SetConfig(args[0], string(content))
		})
	},
}

var filesResetConfigCmd = &cobra.Command{
	Use:   "reset-config <domain>",
	Short: "Restore a config domain to its defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(d *ytlink.Device) error {
			return d.ResetConfig(args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.AddCommand(filesLsCmd, filesRmCmd, filesUploadCmd, filesGetConfigCmd, filesSetConfigCmd, filesResetConfigCmd)

	filesCmd.PersistentFlags().StringVar(&filesAuth, "auth", "", "Authorization string for protected paths")
	filesGetConfigCmd.Flags().StringVarP(&filesConfigOut, "out", "o", "", "Write the config to a file instead of stdout")
}

// withSession opens a session, runs fn on its device and closes it
func withSession(fn func(d *ytlink.Device) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	return s.do(fn)
}

// newProgressBar returns a progress callback drawing a bar on stderr
func newProgressBar(description string) ytlink.ProgressFunc {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
	return func(percent int) {
		bar.Set(percent)
	}
}

// readInput reads a named file, or stdin for "-"
func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
