// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"time"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
)

// monitorHandler receives link monitor events. All callbacks run on the
// monitor goroutine.
type monitorHandler interface {
	onSync(discarded uint64)
	onMessage(msg *ytlink.Message, issues []ytlink.ValidationError)
	onAnomaly(a *ytlink.FramingAnomaly)
	onStats(stats ytlink.Statistics)
	onReadError(err error)
}

// runMonitor drains the link until done is closed or the connection goes
// away. Frames dropped before the first valid frame are only counted, since
// the receiver usually starts mid-frame. A statistics snapshot is emitted
// every statsEvery.
func runMonitor(link *ytlink.Link, statsEvery time.Duration, h monitorHandler, done <-chan struct{}) error {
	synchronized := false
	var discarded uint64

	markSync := func() {
		if !synchronized {
			synchronized = true
			h.onSync(discarded)
		}
	}

	link.OnAnomaly = func(a *ytlink.FramingAnomaly) {
		// Envelope failures come from frames that passed both CRCs
		if a.Type == ytlink.AnomalyDecodeError {
			markSync()
		}
		if !synchronized {
			discarded++
			return
		}
		h.onAnomaly(a)
	}
	defer func() { link.OnAnomaly = nil }()

	lastStats := time.Now()
	for {
		select {
		case <-done:
			return nil
		default:
		}

		msg, err := link.RecvRunOnce()
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) {
				h.onStats(link.Statistics())
				return err
			}
			h.onReadError(err)
			time.Sleep(link.Config().PollInterval)
			continue
		}

		if msg != nil {
			markSync()
			var issues []ytlink.ValidationError
			if msg.Result != nil {
				issues = ytlink.ValidateResult(msg.Result)
			}
			h.onMessage(msg, issues)
		}

		if time.Since(lastStats) >= statsEvery {
			lastStats = time.Now()
			h.onStats(link.Statistics())
		}
	}
}
