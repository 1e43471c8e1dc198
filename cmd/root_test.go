// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// syncCounter is a log sink that counts flushes
type syncCounter struct {
	bytes.Buffer
	syncs int
}

func (s *syncCounter) Sync() error {
	s.syncs++
	return nil
}

func TestExecute_SyncsResolvedLogger(t *testing.T) {
	saved := logger
	defer func() { logger = saved }()

	sink := &syncCounter{}
	err := execute(func() error {
		// Stands in for resolveSettings replacing the startup logger
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), sink, zapcore.DebugLevel)
		logger = zap.New(core).Sugar()
		logger.Info("running")
		return nil
	})
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if sink.syncs == 0 {
		t.Error("logger built during the run was not synced")
	}
	if sink.Len() == 0 {
		t.Error("log line not written")
	}
}
