// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

// Link drives one transport: it frames outgoing messages, reassembles
// incoming frames and correlates RPC responses.
//
// The transport Read must return within a bounded time; returning 0, nil
// (or an os.ErrDeadlineExceeded error) means nothing arrived. A Link is not
// safe for concurrent use.
type Link struct {
	port    io.ReadWriter
	cfg     Config
	codec   Codec
	decoder *Decoder
	logger  *zap.SugaredLogger
	poll    *rate.Limiter

	rx    []byte // received raw bytes not yet fed to the decoder
	rxPos int
	seq   uint32

	stats *Statistics

	// OnAnomaly, when set, is called for every discarded frame
	OnAnomaly func(*FramingAnomaly)
}

// pendingCall tracks the single outstanding RPC
type pendingCall struct {
	sequence uint32
	issued   time.Time
	timeout  time.Duration
	fn       Func
}

func (c pendingCall) expired() bool {
	return time.Since(c.issued) > c.timeout
}

// NewLink creates a link over the given transport
func NewLink(port io.ReadWriter, cfg Config) *Link {
	cfg = cfg.withDefaults()
	limit := rate.Inf
	if cfg.PollInterval > 0 {
		limit = rate.Every(cfg.PollInterval)
	}
	return &Link{
		port:    port,
		cfg:     cfg,
		codec:   NewCBORCodec(),
		decoder: NewDecoder(),
		poll:    rate.NewLimiter(limit, 1),
		rx:      make([]byte, 0, 2*cfg.ReadSize),
		stats:   NewStatistics(),
	}
}

// SetLogger sets the diagnostic logger (nil disables logging)
func (l *Link) SetLogger(logger *zap.SugaredLogger) {
	l.logger = logger
}

// SetCodec replaces the envelope codec
func (l *Link) SetCodec(c Codec) {
	l.codec = c
}

// Config returns the effective link configuration
func (l *Link) Config() Config {
	return l.cfg
}

// Statistics returns a snapshot of the link counters
func (l *Link) Statistics() Statistics {
	s := *l.stats
	s.CalculateRates()
	return s
}

// ResetStatistics zeroes the link counters
func (l *Link) ResetStatistics() {
	l.stats.Reset()
}

func (l *Link) debugf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Debugf(format, v...)
	}
}

// traceEnabled reports whether wire hex dumps are worth formatting
func (l *Link) traceEnabled() bool {
	return l.logger != nil && l.logger.Level().Enabled(zapcore.DebugLevel)
}

func (l *Link) warnf(format string, v ...any) {
	if l.logger != nil {
		l.logger.Warnf(format, v...)
	}
}

// SendMessage serializes, frames and writes one message
func (l *Link) SendMessage(msg *Message) error {
	payload, err := l.codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", l.codec.Name(), err)
	}
	frame, err := EncodeFrame(payload)
	if err != nil {
		return err
	}
	if err := l.write(frame); err != nil {
		return err
	}
	l.stats.FramesSent++
	return nil
}

func (l *Link) write(src []byte) error {
	for len(src) > 0 {
		n, err := l.port.Write(src)
		if err != nil {
			return fmt.Errorf("write failed: %w", err)
		}
		l.stats.BytesSent += uint64(n)
		if l.traceEnabled() {
			l.debugf("TX: %6d %s", n, encodeHexString(src[:n]))
		}
		src = src[n:]
	}
	return nil
}

// fill performs one bounded read of up to max bytes into the receive buffer
func (l *Link) fill(max int) error {
	if l.rxPos > 0 {
		n := copy(l.rx, l.rx[l.rxPos:])
		l.rx = l.rx[:n]
		l.rxPos = 0
	}
	start := len(l.rx)
	if cap(l.rx)-start < max {
		grown := make([]byte, start, start+max)
		copy(grown, l.rx)
		l.rx = grown
	}

	n, err := l.port.Read(l.rx[start : start+max])
	if n > 0 {
		l.rx = l.rx[:start+n]
		l.stats.BytesReceived += uint64(n)
		if l.traceEnabled() {
			l.debugf("RX: %6d %s", n, encodeHexString(l.rx[start:start+n]))
		}
	}
	if err != nil && !errors.Is(err, os.ErrDeadlineExceeded) {
		return fmt.Errorf("read failed: %w", err)
	}
	return nil
}

// Buffered returns the number of received bytes not yet decoded
func (l *Link) Buffered() int {
	return len(l.rx) - l.rxPos
}

// RecvRunOnce makes one decoding pass over the buffered bytes, refilling
// from the transport first when the buffer runs low. It returns the first
// complete message, or nil when no complete frame is available yet.
// Framing anomalies are never returned; only transport errors are.
func (l *Link) RecvRunOnce() (*Message, error) {
	if l.Buffered() < l.cfg.RefillThreshold {
		if err := l.fill(l.cfg.ReadSize); err != nil {
			return nil, err
		}
	}

	for l.rxPos < len(l.rx) {
		b := l.rx[l.rxPos]
		l.rxPos++

		frame, err := l.decoder.DecodeByte(b)
		if err != nil {
			var anomaly *FramingAnomaly
			if errors.As(err, &anomaly) {
				l.reportAnomaly(anomaly)
			}
			continue
		}

		// Burst read once the length is trusted
		if n := l.decoder.takeBulkRequest(); n > 0 {
			if err := l.fill(n); err != nil {
				return nil, err
			}
		}

		if frame == nil {
			continue
		}

		l.stats.RecordFrame()
		msg := &Message{}
		if err := l.codec.Unmarshal(frame.Payload(), msg); err != nil {
			l.reportAnomaly(newDecodeAnomaly(frame.Length(), err))
			continue
		}
		msg.timestamp = frame.Timestamp()
		if msg.Result != nil {
			l.stats.ResultEvents++
		}
		return msg, nil
	}

	if l.rxPos == len(l.rx) {
		l.rx = l.rx[:0]
		l.rxPos = 0
	}
	return nil, nil
}

func (l *Link) reportAnomaly(a *FramingAnomaly) {
	l.stats.RecordAnomaly(a)
	l.warnf("[YtMsg] %s: %s", a.Type, a.Message)
	if l.OnAnomaly != nil {
		l.OnAnomaly(a)
	}
}

func (l *Link) nextSequence() (uint32, error) {
	if l.seq == math.MaxUint32 {
		return 0, ErrSequenceExhausted
	}
	l.seq++
	return l.seq, nil
}

// pace yields between empty polls so the loop does not spin a core
func (l *Link) pace() {
	_ = l.poll.Wait(context.Background())
}

// SendRpc stamps the next sequence id on req, sends it and waits for the
// response with the same id. A timeout of 0 uses Config.RpcTimeout.
//
// Only one call is tracked at a time: messages that are not the awaited
// response, including result events, are discarded while waiting.
func (l *Link) SendRpc(req *Rpc, timeout time.Duration) (*Response, error) {
	if timeout <= 0 {
		timeout = l.cfg.RpcTimeout
	}
	seq, err := l.nextSequence()
	if err != nil {
		return nil, err
	}
	req.Sequence = seq

	call := pendingCall{sequence: seq, issued: time.Now(), timeout: timeout, fn: req.Func}
	if err := l.SendMessage(&Message{Rpc: req}); err != nil {
		return nil, err
	}
	l.stats.RpcCalls++

	for {
		msg, err := l.RecvRunOnce()
		if err != nil {
			return nil, err
		}

		if msg != nil {
			if resp := msg.Response; resp != nil && resp.Sequence == call.sequence {
				if !resp.Code.OK() {
					l.stats.RpcErrors++
					return nil, &RpcError{
						Func:     call.fn,
						Sequence: call.sequence,
						Code:     resp.Code,
						Message:  resp.Code.Message(),
					}
				}
				return resp, nil
			}
			l.discard(msg, call.sequence)
		}

		if call.expired() {
			l.stats.RpcTimeouts++
			return nil, fmt.Errorf("%w: %s (seq %d) after %s", ErrTimeout, FormatFunc(call.fn), call.sequence, call.timeout)
		}

		if msg == nil {
			l.pace()
		}
	}
}

func (l *Link) discard(msg *Message, awaiting uint32) {
	l.stats.DiscardedMessages++
	if msg.Response != nil {
		l.warnf("[YtMsg] discarding response seq %d while awaiting seq %d", msg.Response.Sequence, awaiting)
		return
	}
	l.debugf("[YtMsg] discarding %s message while awaiting seq %d", FormatMessageKind(msg.Kind()), awaiting)
}

func encodeHexString(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}
