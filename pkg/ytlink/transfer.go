// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import "time"

// ProgressFunc receives upload progress in percent (0-100)
type ProgressFunc func(percent int)

// SendFile uploads data to remotePath on the device in parts of at most
// Config.ChunkSize bytes. Each part is retried up to Config.ChunkAttempts
// times; when a part still fails the upload is aborted with a
// *TransferError wrapping the last RPC error.
//
// onProgress (optional) is called after every part: min(99, percent sent)
// for intermediate parts and exactly 100 after the last one.
func (l *Link) SendFile(data []byte, remotePath, auth string, onProgress ProgressFunc) error {
	if remotePath == "" {
		return ErrEmptyPath
	}

	total := len(data)
	chunkSize := l.cfg.ChunkSize
	if chunkSize > MaxChunkSize {
		chunkSize = MaxChunkSize
	}

	// An empty file still creates the remote path with one empty part
	if total == 0 {
		if err := l.sendPart(remotePath, auth, 0, 0, nil); err != nil {
			return err
		}
		if onProgress != nil {
			onProgress(100)
		}
		return nil
	}

	for offset := 0; offset < total; offset += chunkSize {
		end := offset + chunkSize
		if end > total {
			end = total
		}

		if err := l.sendPart(remotePath, auth, total, offset, data[offset:end]); err != nil {
			return err
		}

		if onProgress != nil {
			onProgress(chunkProgress(end, total))
		}
	}
	return nil
}

// chunkProgress returns the percentage reported after the part ending at end
func chunkProgress(end, total int) int {
	if end >= total {
		return 100
	}
	percent := int(int64(end) * 100 / int64(total))
	if percent > 99 {
		percent = 99
	}
	return percent
}

// sendPart sends one upload part, retrying on any RPC failure
func (l *Link) sendPart(path, auth string, total, offset int, chunk []byte) error {
	var lastErr error
	attempts := l.cfg.ChunkAttempts
	for attempt := 1; attempt <= attempts; attempt++ {
		req := NewUploadFilePart(path, auth, total, offset, chunk)
		started := time.Now()
		_, err := l.SendRpc(req, 0)
		if err == nil {
			l.stats.TransferredChunks++
			l.debugf("[YtMsg] upload %s: %d bytes at offset %d/%d in %s", path, len(chunk), offset, total, time.Since(started))
			return nil
		}
		lastErr = err
		if attempt < attempts {
			l.stats.TransferRetries++
			l.warnf("[YtMsg] retry attempt %d for %s offset %d due to error: %v", attempt, path, offset, err)
		}
	}
	return &TransferError{Path: path, Offset: offset, Attempts: attempts, Err: lastErr}
}
