// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
)

// scriptedConn plays back a byte stream, then reports empty reads, then
// a closed connection
type scriptedConn struct {
	data       []byte
	emptyReads int
}

func (c *scriptedConn) Read(p []byte) (int, error) {
	if len(c.data) > 0 {
		n := copy(p, c.data)
		c.data = c.data[n:]
		return n, nil
	}
	if c.emptyReads > 0 {
		c.emptyReads--
		return 0, nil
	}
	return 0, fmt.Errorf("%w: test stream ended", ErrConnectionClosed)
}

func (c *scriptedConn) Write(p []byte) (int, error) { return len(p), nil }
func (c *scriptedConn) Close() error                { return nil }

// recorder collects monitor events
type recorder struct {
	syncs      int
	discarded  uint64
	messages   []*ytlink.Message
	issues     [][]ytlink.ValidationError
	anomalies  []*ytlink.FramingAnomaly
	stats      []ytlink.Statistics
	readErrors []error
}

func (r *recorder) onSync(discarded uint64) {
	r.syncs++
	r.discarded = discarded
}

func (r *recorder) onMessage(msg *ytlink.Message, issues []ytlink.ValidationError) {
	r.messages = append(r.messages, msg)
	r.issues = append(r.issues, issues)
}

func (r *recorder) onAnomaly(a *ytlink.FramingAnomaly) {
	r.anomalies = append(r.anomalies, a)
}

func (r *recorder) onStats(stats ytlink.Statistics) {
	r.stats = append(r.stats, stats)
}

func (r *recorder) onReadError(err error) {
	r.readErrors = append(r.readErrors, err)
}

// resultFrame frames a result event carrying one face box at [face, 0]
func resultFrame(t *testing.T, x int16) []byte {
	t.Helper()

	rect := []int16{-1, 0, x, 20, 100, 100}
	payload := make([]byte, 0, 2*len(rect))
	for _, v := range rect {
		payload = append(payload, byte(uint16(v)), byte(uint16(v)>>8))
	}
	data := []byte{1, 2, uint8(ytlink.ModelFaceDetection), 0, uint8(ytlink.DataRect), byte(len(payload))}
	data = append(data, payload...)

	msg := &ytlink.Message{Result: &ytlink.ResultEvent{FrameID: 7, Width: 640, Height: 480, DataV2: data}}
	body, err := ytlink.NewCBORCodec().Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	frame, err := ytlink.EncodeFrame(body)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	return frame
}

// corrupt replaces the last wire byte so the payload CRC fails
func corrupt(frame []byte) []byte {
	out := append([]byte(nil), frame...)
	replacement := byte(0x42)
	if out[len(out)-1] == replacement {
		replacement = 0x43
	}
	out[len(out)-1] = replacement
	return out
}

func TestRunMonitor(t *testing.T) {
	var stream []byte
	stream = append(stream, 0x00, 0x01, 0x02) // line noise before the first frame
	stream = append(stream, corrupt(resultFrame(t, 10))...)
	stream = append(stream, resultFrame(t, 10)...)
	stream = append(stream, resultFrame(t, 600)...)
	stream = append(stream, corrupt(resultFrame(t, 10))...)

	conn := &scriptedConn{data: stream, emptyReads: 3}
	link := ytlink.NewLink(conn, ytlink.Config{PollInterval: -1})
	rec := &recorder{}

	err := runMonitor(link, time.Hour, rec, make(chan struct{}))
	if !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("runMonitor() error = %v, want ErrConnectionClosed", err)
	}

	if rec.syncs != 1 {
		t.Errorf("sync reported %d times, want 1", rec.syncs)
	}
	if rec.discarded != 1 {
		t.Errorf("discarded before sync = %d, want 1", rec.discarded)
	}

	if len(rec.messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(rec.messages))
	}
	if len(rec.issues[0]) != 0 {
		t.Errorf("in-frame box reported issues: %v", rec.issues[0])
	}
	if len(rec.issues[1]) != 1 || rec.issues[1][0].Type != ytlink.IssueRectOutOfFrame {
		t.Errorf("out-of-frame box issues = %v, want one %s", rec.issues[1], ytlink.IssueRectOutOfFrame)
	}

	if len(rec.anomalies) != 1 || rec.anomalies[0].Type != ytlink.AnomalyPayloadCRC {
		t.Errorf("anomalies after sync = %v, want one payload CRC error", rec.anomalies)
	}

	if len(rec.stats) != 1 {
		t.Fatalf("got %d stats snapshots, want the final one", len(rec.stats))
	}
	final := rec.stats[0]
	if final.ValidFrames != 2 {
		t.Errorf("ValidFrames = %d, want 2", final.ValidFrames)
	}
	if final.PayloadCRCErrors != 2 {
		t.Errorf("PayloadCRCErrors = %d, want 2", final.PayloadCRCErrors)
	}

	if len(rec.readErrors) != 0 {
		t.Errorf("unexpected read errors: %v", rec.readErrors)
	}
	if link.OnAnomaly != nil {
		t.Error("OnAnomaly hook left installed")
	}
}

func TestRunMonitor_Done(t *testing.T) {
	conn := &scriptedConn{emptyReads: 1 << 30}
	link := ytlink.NewLink(conn, ytlink.Config{PollInterval: -1})
	done := make(chan struct{})
	close(done)

	if err := runMonitor(link, time.Hour, &recorder{}, done); err != nil {
		t.Fatalf("runMonitor() error = %v, want nil", err)
	}
}
