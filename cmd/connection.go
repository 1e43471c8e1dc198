// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"
)

const envPassword = "SEEDSCOPE_PASSWORD"

// Connection provides a common interface for reading/writing bytes from serial or WebSocket.
// Read returns 0, nil when nothing arrived within the read timeout.
type Connection interface {
	io.Reader
	io.Writer
	io.Closer
}

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// ErrConnectionClosed is returned when reading from a closed WebSocket connection
var ErrConnectionClosed = errors.New("websocket connection closed")

// WebSocketConnection wraps a WebSocket connection for byte-level reading.
// A background reader owns the socket so Read can give up after the read
// timeout without poisoning the connection.
type WebSocketConnection struct {
	conn        *websocket.Conn
	frames      chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	readErr     error // set before frames is closed
	buf         []byte
	bufOffset   int
	readTimeout time.Duration
}

func newWebSocketConnection(conn *websocket.Conn, readTimeout time.Duration) *WebSocketConnection {
	w := &WebSocketConnection{
		conn:        conn,
		frames:      make(chan []byte, 16),
		done:        make(chan struct{}),
		readTimeout: readTimeout,
	}
	go w.readLoop()
	return w
}

func (w *WebSocketConnection) readLoop() {
	defer close(w.frames)
	for {
		messageType, data, err := w.conn.ReadMessage()
		if err != nil {
			w.readErr = err
			return
		}

		// YtMsg frames only travel in binary messages
		if messageType != websocket.BinaryMessage {
			continue
		}
		select {
		case w.frames <- data:
		case <-w.done:
			return
		}
	}
}

func (w *WebSocketConnection) Read(p []byte) (int, error) {
	// If we have buffered data, return it first
	if w.bufOffset < len(w.buf) {
		n := copy(p, w.buf[w.bufOffset:])
		w.bufOffset += n
		return n, nil
	}

	timer := time.NewTimer(w.readTimeout)
	defer timer.Stop()

	select {
	case data, ok := <-w.frames:
		if !ok {
			return 0, fmt.Errorf("%w: %v", ErrConnectionClosed, w.readErr)
		}
		w.buf = data
		w.bufOffset = copy(p, data)
		return w.bufOffset, nil
	case <-timer.C:
		return 0, nil
	}
}

func (w *WebSocketConnection) Write(p []byte) (int, error) {
	err := w.conn.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *WebSocketConnection) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	return w.conn.Close()
}

// OpenSerialConnection opens a serial port connection with bounded reads
func OpenSerialConnection(portName string, baudRate int, readTimeout time.Duration) (Connection, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}

	return &SerialConnection{port: port}, nil
}

// OpenWebSocketConnection opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketConnection(wsURL, username, password string, skipSSLVerify bool, readTimeout time.Duration) (Connection, error) {
	// Parse and validate URL
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Validate scheme
	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %w", err)
	}

	return newWebSocketConnection(conn, readTimeout), nil
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	if pw := os.Getenv(envPassword); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Not a terminal, read a plain line
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// OpenConnection opens either a serial or WebSocket connection from the
// resolved settings
func OpenConnection(s settings) (Connection, string, error) {
	if s.URL != "" {
		password := ""
		if s.Username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := OpenWebSocketConnection(s.URL, s.Username, password, s.NoSSLVerify, s.ReadTimeout)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("WebSocket: %s", s.URL), nil
	}

	if s.Port != "" {
		conn, err := OpenSerialConnection(s.Port, s.Baud, s.ReadTimeout)
		if err != nil {
			return nil, "", err
		}

		return conn, fmt.Sprintf("Serial: %s @ %d baud", s.Port, s.Baud), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}
