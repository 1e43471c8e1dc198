// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Seedscope - VisionSeed YtMsg Protocol Tool
//
// A CLI tool for talking to VisionSeed vision sensors over the YtMsg
// serial protocol: raw message logging, link health monitoring, file
// transfer and face library management.

package main

import (
	"os"

	"github.com/Thermoquad/seedscope/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
