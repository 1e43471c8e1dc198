// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"fmt"
	"time"
)

// Config tunes a Link. Zero values are replaced by DefaultConfig values.
type Config struct {
	RpcTimeout      time.Duration // per-call deadline when SendRpc gets 0
	PollInterval    time.Duration // pacing between empty deframer polls, negative disables
	ChunkSize       int           // upload part size, at most MaxChunkSize
	ChunkAttempts   int           // attempts per upload part, including the first
	ReadSize        int           // bytes requested per refill
	RefillThreshold int           // refill when fewer bytes than this are buffered
}

// DefaultConfig returns the settings used by the VisionSeed SDK
func DefaultConfig() Config {
	return Config{
		RpcTimeout:      3 * time.Second,
		PollInterval:    time.Millisecond,
		ChunkSize:       MaxChunkSize,
		ChunkAttempts:   defaultChunkAttempts,
		ReadSize:        defaultReadSize,
		RefillThreshold: defaultRefillThreshold,
	}
}

// withDefaults fills zero fields from DefaultConfig
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RpcTimeout <= 0 {
		c.RpcTimeout = d.RpcTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = d.PollInterval
	} else if c.PollInterval < 0 {
		c.PollInterval = 0
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.ChunkAttempts <= 0 {
		c.ChunkAttempts = d.ChunkAttempts
	}
	if c.ReadSize <= 0 {
		c.ReadSize = d.ReadSize
	}
	if c.RefillThreshold <= 0 {
		c.RefillThreshold = d.RefillThreshold
	}
	return c
}

// Validate rejects settings the device cannot accept
func (c Config) Validate() error {
	if c.ChunkSize > MaxChunkSize {
		return fmt.Errorf("chunk size %d exceeds max %d", c.ChunkSize, MaxChunkSize)
	}
	return nil
}
