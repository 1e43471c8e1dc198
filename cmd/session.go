// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"sync"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
)

// session is an open transport with the link and device built on it.
// Link is not safe for concurrent use, so every call goes through do.
type session struct {
	conn   Connection
	info   string
	link   *ytlink.Link
	device *ytlink.Device

	mu sync.Mutex
}

// openSession connects using the resolved settings
func openSession() (*session, error) {
	conn, info, err := OpenConnection(active)
	if err != nil {
		return nil, err
	}
	return newSession(conn, info, active.linkConfig()), nil
}

func newSession(conn Connection, info string, cfg ytlink.Config) *session {
	link := ytlink.NewLink(conn, cfg)
	link.SetLogger(logger.With("conn", info))
	return &session{
		conn:   conn,
		info:   info,
		link:   link,
		device: ytlink.NewDevice(link),
	}
}

// do runs fn with exclusive use of the device
func (s *session) do(fn func(d *ytlink.Device) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.device)
}

// statistics returns a snapshot of the link counters
func (s *session) statistics() ytlink.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.link.Statistics()
}

func (s *session) Close() error {
	return s.conn.Close()
}
