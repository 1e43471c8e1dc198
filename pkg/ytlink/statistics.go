// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"fmt"
	"time"
)

// Statistics tracks link health. The link owns its copy; callers get
// snapshots from Link.Statistics.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Framing counters
	TotalFrames      uint64
	ValidFrames      uint64
	UnfinishedFrames uint64
	OversizeLengths  uint64
	LengthCRCErrors  uint64
	PayloadCRCErrors uint64
	DecodeErrors     uint64

	// Traffic
	BytesReceived uint64
	BytesSent     uint64
	FramesSent    uint64

	// RPC counters
	RpcCalls          uint64
	RpcTimeouts       uint64
	RpcErrors         uint64
	DiscardedMessages uint64
	ResultEvents      uint64
	TransferRetries   uint64
	TransferredChunks uint64

	// Rates (calculated)
	FrameRate float64 // frames/sec
	ErrorRate float64 // anomalies/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// RecordFrame counts a frame that passed both CRC checks
func (s *Statistics) RecordFrame() {
	s.TotalFrames++
	s.ValidFrames++
	s.LastUpdateTime = time.Now()
}

// RecordAnomaly counts a discarded frame by anomaly type
func (s *Statistics) RecordAnomaly(a *FramingAnomaly) {
	switch a.Type {
	case AnomalyUnfinishedFrame:
		s.UnfinishedFrames++
	case AnomalyOversizeLength:
		s.OversizeLengths++
	case AnomalyLengthCRC:
		s.LengthCRCErrors++
	case AnomalyPayloadCRC:
		s.PayloadCRCErrors++
	case AnomalyDecodeError:
		// The frame itself was valid and already counted by RecordFrame
		s.DecodeErrors++
		s.ValidFrames--
		s.LastUpdateTime = time.Now()
		return
	}
	s.TotalFrames++
	s.LastUpdateTime = time.Now()
}

// Anomalies returns the total number of discarded frames
func (s *Statistics) Anomalies() uint64 {
	return s.UnfinishedFrames + s.OversizeLengths + s.LengthCRCErrors + s.PayloadCRCErrors + s.DecodeErrors
}

// CalculateRates calculates frame and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.FrameRate = float64(s.TotalFrames) / elapsed
		s.ErrorRate = float64(s.Anomalies()) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent float64
	if s.TotalFrames > 0 {
		validPercent = float64(s.ValidFrames) * 100.0 / float64(s.TotalFrames)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Frames:    %8d\n", s.TotalFrames)
	result += fmt.Sprintf("Valid Frames:    %8d (%.1f%%)\n", s.ValidFrames, validPercent)

	if s.UnfinishedFrames > 0 {
		result += fmt.Sprintf("Unfinished:      %8d\n", s.UnfinishedFrames)
	}
	if s.OversizeLengths > 0 {
		result += fmt.Sprintf("Oversize Length: %8d\n", s.OversizeLengths)
	}
	if s.LengthCRCErrors > 0 {
		result += fmt.Sprintf("Length CRC Err:  %8d\n", s.LengthCRCErrors)
	}
	if s.PayloadCRCErrors > 0 {
		result += fmt.Sprintf("Payload CRC Err: %8d\n", s.PayloadCRCErrors)
	}
	if s.DecodeErrors > 0 {
		result += fmt.Sprintf("Decode Errors:   %8d\n", s.DecodeErrors)
	}
	if s.RpcCalls > 0 {
		result += fmt.Sprintf("RPC Calls:       %8d (timeouts %d, errors %d)\n", s.RpcCalls, s.RpcTimeouts, s.RpcErrors)
	}
	if s.DiscardedMessages > 0 {
		result += fmt.Sprintf("Discarded Msgs:  %8d\n", s.DiscardedMessages)
	}
	if s.TransferredChunks > 0 {
		result += fmt.Sprintf("Upload Chunks:   %8d (retries %d)\n", s.TransferredChunks, s.TransferRetries)
	}

	result += fmt.Sprintf("Bytes RX/TX:     %8d / %d\n", s.BytesReceived, s.BytesSent)
	result += fmt.Sprintf("Frame Rate:      %8.1f frames/sec\n", s.FrameRate)
	result += fmt.Sprintf("Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
