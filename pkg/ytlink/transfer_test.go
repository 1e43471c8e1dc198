// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package ytlink

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

// uploadSink is a device handler that reassembles uploaded parts
type uploadSink struct {
	parts []FilePart
	data  []byte
}

func (s *uploadSink) handle(req *Rpc) []*Message {
	if req.Func != FuncUploadFile || req.FilePart == nil {
		return []*Message{fail(req, StatusInvalidParam)}
	}
	p := *req.FilePart
	if int(p.Offset) != len(s.data) {
		return []*Message{fail(req, StatusOffsetMismatch)}
	}
	s.parts = append(s.parts, p)
	s.data = append(s.data, p.Data...)
	return []*Message{ok(req)}
}

func TestSendFile_Chunking(t *testing.T) {
	sink := &uploadSink{}
	dev := newFakeDevice(t, sink.handle)
	link := newTestLink(dev)

	data := make([]byte, 300000)
	for i := range data {
		data[i] = byte(i * 7)
	}

	var progress []int
	err := link.SendFile(data, "/data/model.bin", "key", func(p int) { progress = append(progress, p) })
	if err != nil {
		t.Fatalf("SendFile failed: %v", err)
	}

	if len(sink.parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(sink.parts))
	}
	wantOffsets := []uint32{0, 131072, 262144}
	wantSizes := []int{131072, 131072, 37856}
	for i, p := range sink.parts {
		if p.Offset != wantOffsets[i] || len(p.Data) != wantSizes[i] {
			t.Errorf("part %d: offset %d size %d, want %d/%d", i, p.Offset, len(p.Data), wantOffsets[i], wantSizes[i])
		}
		if p.TotalLength != 300000 || p.Path != "/data/model.bin" {
			t.Errorf("part %d header = %s/%d", i, p.Path, p.TotalLength)
		}
	}
	for _, req := range dev.requests {
		if req.Auth != "key" {
			t.Errorf("auth = %q, want key", req.Auth)
		}
	}
	if !bytes.Equal(sink.data, data) {
		t.Error("reassembled data differs")
	}

	if !reflect.DeepEqual(progress, []int{43, 87, 100}) {
		t.Errorf("progress = %v, want [43 87 100]", progress)
	}
	if link.Statistics().TransferredChunks != 3 {
		t.Error("TransferredChunks not counted")
	}
}

func TestSendFile_ExactMultiple(t *testing.T) {
	sink := &uploadSink{}
	link := newTestLink(newFakeDevice(t, sink.handle))

	if err := link.SendFile(make([]byte, 2*MaxChunkSize), "/f", "", nil); err != nil {
		t.Fatalf("SendFile failed: %v", err)
	}
	if len(sink.parts) != 2 || len(sink.parts[1].Data) != MaxChunkSize {
		t.Errorf("parts = %d, want 2 full chunks", len(sink.parts))
	}
}

func TestSendFile_EmptyFile(t *testing.T) {
	sink := &uploadSink{}
	link := newTestLink(newFakeDevice(t, sink.handle))

	var progress []int
	if err := link.SendFile(nil, "/empty", "", func(p int) { progress = append(progress, p) }); err != nil {
		t.Fatalf("SendFile failed: %v", err)
	}
	if len(sink.parts) != 1 || len(sink.parts[0].Data) != 0 || sink.parts[0].TotalLength != 0 {
		t.Errorf("parts = %+v, want one empty part", sink.parts)
	}
	if !reflect.DeepEqual(progress, []int{100}) {
		t.Errorf("progress = %v, want [100]", progress)
	}
}

func TestSendFile_EmptyPath(t *testing.T) {
	link := newTestLink(newFakeDevice(t, nil))
	if err := link.SendFile([]byte{1}, "", "", nil); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("err = %v, want ErrEmptyPath", err)
	}
}

func TestSendFile_RetryThenSuccess(t *testing.T) {
	sink := &uploadSink{}
	failures := 2
	dev := newFakeDevice(t, func(req *Rpc) []*Message {
		if failures > 0 {
			failures--
			return []*Message{fail(req, StatusBusy)}
		}
		return sink.handle(req)
	})
	link := newTestLink(dev)

	if err := link.SendFile([]byte("payload"), "/f", "", nil); err != nil {
		t.Fatalf("SendFile failed: %v", err)
	}
	if len(dev.requests) != 3 {
		t.Errorf("requests = %d, want 3", len(dev.requests))
	}
	if n := link.Statistics().TransferRetries; n != 2 {
		t.Errorf("TransferRetries = %d, want 2", n)
	}
	// Every retry carries a fresh sequence id
	if dev.requests[0].Sequence == dev.requests[1].Sequence {
		t.Error("retry reused the sequence id")
	}
}

func TestSendFile_RetriesExhausted(t *testing.T) {
	dev := newFakeDevice(t, func(req *Rpc) []*Message { return []*Message{fail(req, StatusFileIO)} })
	link := newTestLink(dev)

	var progress []int
	err := link.SendFile(make([]byte, 10), "/f", "", func(p int) { progress = append(progress, p) })

	var terr *TransferError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *TransferError", err)
	}
	if terr.Attempts != 11 || terr.Offset != 0 || terr.Path != "/f" {
		t.Errorf("transfer error = %+v", terr)
	}
	var rpcErr *RpcError
	if !errors.As(err, &rpcErr) || rpcErr.Code != StatusFileIO {
		t.Errorf("last error = %v, want FILE_IO RpcError", terr.Err)
	}
	if len(dev.requests) != 11 {
		t.Errorf("requests = %d, want 11", len(dev.requests))
	}
	if len(progress) != 0 {
		t.Errorf("progress reported on failure: %v", progress)
	}
	if n := link.Statistics().TransferRetries; n != 10 {
		t.Errorf("TransferRetries = %d, want 10", n)
	}
}

func TestChunkProgress(t *testing.T) {
	tests := []struct {
		end, total int
		want       int
	}{
		{131072, 300000, 43},
		{262144, 300000, 87},
		{300000, 300000, 100},
		{999, 1000, 99},
		{9999, 10000, 99},
	}
	for _, tt := range tests {
		if got := chunkProgress(tt.end, tt.total); got != tt.want {
			t.Errorf("chunkProgress(%d, %d) = %d, want %d", tt.end, tt.total, got, tt.want)
		}
	}
}
