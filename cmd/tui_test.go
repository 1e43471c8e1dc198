// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import "testing"

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		ms   uint64
		want string
	}{
		{0, "0 seconds"},
		{999, "0 seconds"},
		{1000, "1 second"},
		{61000, "1 minute and 1 second"},
		{3600000, "1 hour"},
		{90061000, "1 day, 1 hour, 1 minute, and 1 second"},
		{2 * 86400000, "2 days"},
	}

	for _, tt := range tests {
		got := formatUptime(tt.ms)
		if got != tt.want {
			t.Errorf("formatUptime(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
