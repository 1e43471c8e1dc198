// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Error log entry
type errorLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for info
}

// Latest inference result
type resultSummary struct {
	timestamp time.Time
	frameID   uint32
	uptime    uint64 // milliseconds
	width     uint32
	height    uint32
	entries   int
	faces     int
	names     []string
}

// TUI model
type model struct {
	connInfo      string
	statsInterval int
	showAll       bool
	stats         ytlink.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int
	synchronized  bool
	discarded     uint64
	width         int
	height        int
	quitting      bool
	lastResult    *resultSummary
	spinner       spinner.Model
}

// Messages
type syncMsg struct {
	discarded uint64
}
type linkMsg struct {
	msg    *ytlink.Message
	issues []ytlink.ValidationError
}
type anomalyMsg struct {
	anomaly *ytlink.FramingAnomaly
}
type statsMsg struct {
	stats ytlink.Statistics
}
type readErrMsg struct {
	err error
}
type closedMsg struct {
	err error
}

// tuiHandler forwards monitor events to the bubbletea program
type tuiHandler struct {
	p *tea.Program
}

func (h *tuiHandler) onSync(discarded uint64) {
	h.p.Send(syncMsg{discarded: discarded})
}

func (h *tuiHandler) onMessage(msg *ytlink.Message, issues []ytlink.ValidationError) {
	h.p.Send(linkMsg{msg: msg, issues: issues})
}

func (h *tuiHandler) onAnomaly(a *ytlink.FramingAnomaly) {
	h.p.Send(anomalyMsg{anomaly: a})
}

func (h *tuiHandler) onStats(stats ytlink.Statistics) {
	h.p.Send(statsMsg{stats: stats})
}

func (h *tuiHandler) onReadError(err error) {
	h.p.Send(readErrMsg{err: err})
}

// formatUptime formats uptime in milliseconds to human-friendly string
func formatUptime(ms uint64) string {
	if ms == 0 {
		return "0 seconds"
	}

	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	plural := func(n uint64, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	parts := []string{}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

// summarizeResult extracts the face detections of a result event
func summarizeResult(msg *ytlink.Message) *resultSummary {
	e := msg.Result
	r := e.DecodeResult()
	face := uint8(ytlink.ModelFaceDetection)

	summary := &resultSummary{
		timestamp: msg.Timestamp(),
		frameID:   e.FrameID,
		uptime:    e.Timestamp,
		width:     e.Width,
		height:    e.Height,
		entries:   r.Len(),
		faces:     r.Count(face),
	}
	for i := 0; i < summary.faces && i < 256; i++ {
		name := "?"
		if t, ok := r.Text(face, uint8(i), uint8(ytlink.ModelFaceRecognition)); ok && t.Str != "" {
			name = fmt.Sprintf("%s (%.0f%%)", t.Str, t.Conf*100)
		}
		summary.names = append(summary.names, name)
	}
	return summary
}

func initialModel(connInfo string, statsInterval int, showAll bool) model {
	return model{
		connInfo:      connInfo,
		statsInterval: statsInterval,
		showAll:       showAll,
		stats:         *ytlink.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("11"))),
		),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.EnterAltScreen,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.synchronized {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case syncMsg:
		m.synchronized = true
		m.discarded = msg.discarded
		if msg.discarded > 0 {
			m.addLogEntry(fmt.Sprintf("Synchronized after discarding %d broken frames", msg.discarded), false)
		} else {
			m.addLogEntry("Synchronized", false)
		}

	case statsMsg:
		m.stats = msg.stats

	case anomalyMsg:
		m.addLogEntry(fmt.Sprintf("FRAME ERROR (%s): %s", msg.anomaly.Type, msg.anomaly.Message), true)

	case readErrMsg:
		m.addLogEntry(fmt.Sprintf("Read error: %v", msg.err), true)

	case closedMsg:
		m.addLogEntry(fmt.Sprintf("Connection closed: %v", msg.err), true)

	case linkMsg:
		kind := ytlink.FormatMessageKind(msg.msg.Kind())
		if msg.msg.Result != nil {
			m.lastResult = summarizeResult(msg.msg)
		}
		if len(msg.issues) > 0 {
			for _, issue := range msg.issues {
				m.addLogEntry(fmt.Sprintf("%s frame=%d: %s", kind, msg.msg.Result.FrameID, issue.Message), true)
			}
		} else if m.showAll {
			m.addLogEntry(fmt.Sprintf("%s (valid)", kind), false)
		}
	}

	return m, nil
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.errorLog = append(m.errorLog, entry)

	// Keep only last N entries
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	mode := "Errors only"
	if m.showAll {
		mode = "All messages"
	}

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("SEEDSCOPE - ERROR DETECTION"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("%s | Mode: %s | Press 'q' to quit", m.connInfo, mode)))
	s.WriteString("\n\n")

	// Sync status
	if !m.synchronized {
		s.WriteString(m.spinner.View())
		s.WriteString(warningStyle.Render(" Waiting for synchronization..."))
		s.WriteString("\n\n")
	} else {
		s.WriteString(statsValueStyle.Render("✓ Synchronized"))
		if m.discarded > 0 {
			s.WriteString(headerStyle.Render(fmt.Sprintf(" (discarded %d broken frames)", m.discarded)))
		}
		s.WriteString("\n\n")
	}

	// Statistics
	st := m.stats
	anomalies := st.Anomalies()
	var validPercent, errorPercent float64
	if st.TotalFrames > 0 {
		validPercent = float64(st.ValidFrames) * 100.0 / float64(st.TotalFrames)
		errorPercent = float64(anomalies) * 100.0 / float64(st.TotalFrames)
	}

	statsContent := strings.Builder{}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		statsLabelStyle.Render("Total:"), statsValueStyle.Render(fmt.Sprintf("%d", st.TotalFrames)),
		statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", st.ValidFrames, validPercent)),
		statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d (%.1f%%)", anomalies, errorPercent)),
	))

	if st.LengthCRCErrors > 0 || st.PayloadCRCErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
			statsLabelStyle.Render("Length CRC:"), errorStyle.Render(fmt.Sprintf("%d", st.LengthCRCErrors)),
			statsLabelStyle.Render("Payload CRC:"), errorStyle.Render(fmt.Sprintf("%d", st.PayloadCRCErrors)),
		))
	}

	if st.UnfinishedFrames > 0 || st.OversizeLengths > 0 || st.DecodeErrors > 0 {
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			statsLabelStyle.Render("Unfinished:"), errorStyle.Render(fmt.Sprintf("%d", st.UnfinishedFrames)),
			statsLabelStyle.Render("Oversize:"), errorStyle.Render(fmt.Sprintf("%d", st.OversizeLengths)),
			statsLabelStyle.Render("Decode:"), errorStyle.Render(fmt.Sprintf("%d", st.DecodeErrors)),
		))
	}

	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s\n",
		statsLabelStyle.Render("Results:"), statsValueStyle.Render(fmt.Sprintf("%d", st.ResultEvents)),
		statsLabelStyle.Render("Bytes RX:"), statsValueStyle.Render(fmt.Sprintf("%d", st.BytesReceived)),
	))

	errorRate := statsValueStyle.Render(fmt.Sprintf("%.1f err/s", st.ErrorRate))
	if st.ErrorRate > 0 {
		errorRate = errorStyle.Render(fmt.Sprintf("%.1f err/s", st.ErrorRate))
	}
	statsContent.WriteString(fmt.Sprintf("%s %s   %s %s",
		statsLabelStyle.Render("Frame Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f frames/s", st.FrameRate)),
		statsLabelStyle.Render("Error Rate:"), errorRate,
	))

	s.WriteString(boxStyle.Render(statsContent.String()))
	s.WriteString("\n\n")

	// Latest result (only shown once a result arrived)
	if r := m.lastResult; r != nil {
		s.WriteString(statsLabelStyle.Render("Latest Result:"))
		s.WriteString("\n")

		resultContent := strings.Builder{}
		resultContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			statsLabelStyle.Render("Frame:"), statsValueStyle.Render(fmt.Sprintf("%d", r.frameID)),
			statsLabelStyle.Render("Size:"), statsValueStyle.Render(fmt.Sprintf("%dx%d", r.width, r.height)),
			statsLabelStyle.Render("Entries:"), statsValueStyle.Render(fmt.Sprintf("%d", r.entries)),
		))
		resultContent.WriteString(fmt.Sprintf("%s %s\n",
			statsLabelStyle.Render("Uptime:"), statsValueStyle.Render(formatUptime(r.uptime)),
		))
		resultContent.WriteString(fmt.Sprintf("%s %s",
			statsLabelStyle.Render("Faces:"), statsValueStyle.Render(fmt.Sprintf("%d", r.faces)),
		))
		for i, name := range r.names {
			resultContent.WriteString(fmt.Sprintf("\n%s %s",
				statsLabelStyle.Render(fmt.Sprintf("Face %d:", i)),
				statsValueStyle.Render(name),
			))
		}

		s.WriteString(boxStyle.Render(resultContent.String()))
		s.WriteString("\n\n")
	}

	// Error log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 15 // Reserve space for header and stats
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.errorLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.errorLog); i++ {
			entry := m.errorLog[i]
			timestamp := entry.timestamp.Format("01/02/06 15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
