// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/seedscope/pkg/ytlink"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

//////////////////////////////////////////////////////////////
// Constants
//////////////////////////////////////////////////////////////

const consoleRegisterWindowMs = 10000

// Focus states
const (
	focusFaceList = iota
	focusNameInput
	focusButton
)

//////////////////////////////////////////////////////////////
// Command
//////////////////////////////////////////////////////////////

var faceConsoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive TUI for the face library",
	Long: `Browse and edit the face library in an interactive terminal UI.

Keys:
  Tab / Shift+Tab  switch between the face list, name input and button
  Enter            register the next face the camera sees under the name
  d                delete the selected face
  r                reload the face list
  q                quit (Ctrl+C from the name input)

Supports both serial and WebSocket connections.`,
	Args: cobra.NoArgs,
	RunE: runFaceConsole,
}

func init() {
	faceCmd.AddCommand(faceConsoleCmd)
}

func runFaceConsole(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	// Log lines would tear the alternate screen
	s.link.SetLogger(nil)

	m := initialConsoleModel(s)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

//////////////////////////////////////////////////////////////
// Types
//////////////////////////////////////////////////////////////

// faceItem is one face library entry in the list
type faceItem ytlink.FaceIDEntry

// Implement list.Item interface
func (f faceItem) Title() string       { return f.FaceName }
func (f faceItem) Description() string { return fmt.Sprintf("id %d", f.FaceID) }
func (f faceItem) FilterValue() string { return f.FaceName }

// consoleModel is the Bubble Tea model for the face console
type consoleModel struct {
	session  *session
	connInfo string

	faceList  list.Model
	nameInput textinput.Model
	spinner   spinner.Model

	focusedField int
	busy         string // description of the running operation

	stats         ytlink.Statistics
	errorLog      []errorLogEntry
	maxLogEntries int

	width    int
	height   int
	quitting bool
}

//////////////////////////////////////////////////////////////
// Messages
//////////////////////////////////////////////////////////////

type facesLoadedMsg struct {
	faces []ytlink.FaceIDEntry
	stats ytlink.Statistics
	err   error
}

type opDoneMsg struct {
	message string
	stats   ytlink.Statistics
	err     error
}

//////////////////////////////////////////////////////////////
// Model Initialization
//////////////////////////////////////////////////////////////

func initialConsoleModel(s *session) consoleModel {
	ti := textinput.New()
	ti.Placeholder = "name"
	ti.CharLimit = 32
	ti.Width = 20

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.SetHeight(2)
	faceList := list.New([]list.Item{}, delegate, 30, 10)
	faceList.Title = "Faces"
	faceList.SetShowStatusBar(false)
	faceList.SetShowHelp(false)
	faceList.SetFilteringEnabled(false)

	return consoleModel{
		session:       s,
		connInfo:      s.info,
		faceList:      faceList,
		nameInput:     ti,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Line)),
		focusedField:  focusFaceList,
		busy:          "Loading faces",
		stats:         *ytlink.NewStatistics(),
		errorLog:      make([]errorLogEntry, 0),
		maxLogEntries: 100,
		width:         80,
		height:        24,
	}
}

//////////////////////////////////////////////////////////////
// Device Commands
//////////////////////////////////////////////////////////////

func loadFacesCmd(s *session) tea.Cmd {
	return func() tea.Msg {
		var faces []ytlink.FaceIDEntry
		err := s.do(func(d *ytlink.Device) error {
			var err error
			faces, err = d.ListFaceID()
			return err
		})
		return facesLoadedMsg{faces: faces, stats: s.statistics(), err: err}
	}
}

func registerFaceCmd(s *session, name string) tea.Cmd {
	return func() tea.Msg {
		var id int32
		err := s.do(func(d *ytlink.Device) error {
			var err error
			id, err = d.RegisterFaceIDFromCamera(name, consoleRegisterWindowMs)
			return err
		})
		return opDoneMsg{message: fmt.Sprintf("Registered %q as face %d", name, id), stats: s.statistics(), err: err}
	}
}

func deleteFaceCmd(s *session, face faceItem) tea.Cmd {
	return func() tea.Msg {
		err := s.do(func(d *ytlink.Device) error {
			return d.DeleteFaceID(face.FaceID)
		})
		return opDoneMsg{message: fmt.Sprintf("Deleted %q (id %d)", face.FaceName, face.FaceID), stats: s.statistics(), err: err}
	}
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m consoleModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadFacesCmd(m.session))
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case facesLoadedMsg:
		m.busy = ""
		m.stats = msg.stats
		if msg.err != nil {
			m.addLogEntry(fmt.Sprintf("Failed to list faces: %v", msg.err), true)
			return m, nil
		}
		items := make([]list.Item, len(msg.faces))
		for i, f := range msg.faces {
			items[i] = faceItem(f)
		}
		cmd := m.faceList.SetItems(items)
		m.addLogEntry(fmt.Sprintf("Loaded %d faces", len(msg.faces)), false)
		return m, cmd

	case opDoneMsg:
		m.busy = ""
		m.stats = msg.stats
		if msg.err != nil {
			m.addLogEntry(msg.err.Error(), true)
			return m, nil
		}
		m.addLogEntry(msg.message, false)
		m.busy = "Loading faces"
		return m, loadFacesCmd(m.session)
	}

	return m, nil
}

func (m consoleModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		return m.cycleFocus(1), nil

	case "shift+tab":
		return m.cycleFocus(-1), nil

	case "enter":
		if m.focusedField == focusNameInput || m.focusedField == focusButton {
			return m.startRegister()
		}
		return m, nil
	}

	// Typing goes to the name input
	if m.focusedField == focusNameInput {
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit

	case "r":
		if m.busy == "" {
			m.busy = "Loading faces"
			return m, loadFacesCmd(m.session)
		}
		return m, nil

	case "d":
		if m.focusedField == focusFaceList && m.busy == "" {
			if face, ok := m.faceList.SelectedItem().(faceItem); ok {
				m.busy = fmt.Sprintf("Deleting %q", face.FaceName)
				return m, deleteFaceCmd(m.session, face)
			}
		}
		return m, nil
	}

	if m.focusedField == focusFaceList {
		var cmd tea.Cmd
		m.faceList, cmd = m.faceList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m consoleModel) cycleFocus(delta int) consoleModel {
	maxFocus := focusButton
	m.focusedField = (m.focusedField + delta + maxFocus + 1) % (maxFocus + 1)

	if m.focusedField == focusNameInput {
		m.nameInput.Focus()
	} else {
		m.nameInput.Blur()
	}
	return m
}

func (m consoleModel) startRegister() (tea.Model, tea.Cmd) {
	if m.busy != "" {
		m.addLogEntry("Busy: "+m.busy, true)
		return m, nil
	}
	name := strings.TrimSpace(m.nameInput.Value())
	if name == "" {
		m.addLogEntry("Enter a name first", true)
		return m, nil
	}
	m.busy = fmt.Sprintf("Registering %q, look at the camera", name)
	m.nameInput.SetValue("")
	return m, registerFaceCmd(m.session, name)
}

func (m *consoleModel) updateListSize() {
	listHeight := m.height - 16
	if listHeight < 6 {
		listHeight = 6
	}
	m.faceList.SetSize(30, listHeight)
}

func (m *consoleModel) addLogEntry(message string, isError bool) {
	m.errorLog = append(m.errorLog, errorLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	})
	if len(m.errorLog) > m.maxLogEntries {
		m.errorLog = m.errorLog[len(m.errorLog)-m.maxLogEntries:]
	}
}

//////////////////////////////////////////////////////////////
// View
//////////////////////////////////////////////////////////////

func (m consoleModel) View() string {
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

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
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

	focusedBoxStyle := boxStyle.
		BorderForeground(lipgloss.Color("12"))

	buttonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("12")).
		Padding(0, 2)

	focusedButtonStyle := buttonStyle.
		Background(lipgloss.Color("10"))

	var s strings.Builder

	// Header
	s.WriteString(titleStyle.Render("SEEDSCOPE FACE CONSOLE"))
	s.WriteString(" ")
	s.WriteString(headerStyle.Render(fmt.Sprintf("| %s | q=quit Tab=switch d=delete r=reload", m.connInfo)))
	s.WriteString("\n\n")

	// Face list | register panel
	leftWidth := 30
	rightWidth := m.width - leftWidth - 6

	listStyle := boxStyle.Width(leftWidth)
	if m.focusedField == focusFaceList {
		listStyle = focusedBoxStyle.Width(leftWidth)
	}
	listPanel := listStyle.Render(m.faceList.View())

	var panel strings.Builder
	panel.WriteString(labelStyle.Render("Register from camera"))
	panel.WriteString("\n\n")
	panel.WriteString(labelStyle.Render("Name: "))
	if m.focusedField == focusNameInput {
		panel.WriteString(m.nameInput.View())
	} else {
		val := m.nameInput.Value()
		if val == "" {
			val = m.nameInput.Placeholder
		}
		panel.WriteString(fmt.Sprintf("[%s]", val))
	}
	panel.WriteString("\n\n")

	btnText := "[ Register ]"
	if m.focusedField == focusButton {
		panel.WriteString(focusedButtonStyle.Render(btnText))
	} else {
		panel.WriteString(buttonStyle.Render(btnText))
	}
	panel.WriteString("\n\n")

	if m.busy != "" {
		panel.WriteString(m.spinner.View())
		panel.WriteString(warningStyle.Render(" " + m.busy + "..."))
	} else {
		panel.WriteString(fmt.Sprintf("%s %s", labelStyle.Render("Faces:"), valueStyle.Render(fmt.Sprintf("%d", len(m.faceList.Items())))))
	}
	controlPanel := boxStyle.Width(rightWidth).Render(panel.String())

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, listPanel, " ", controlPanel))
	s.WriteString("\n\n")

	// Link statistics
	rpcErrors := m.stats.RpcTimeouts + m.stats.RpcErrors
	errText := valueStyle.Render("0")
	if rpcErrors > 0 {
		errText = errorStyle.Render(fmt.Sprintf("%d", rpcErrors))
	}
	stats := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		labelStyle.Render("RPC Calls:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.RpcCalls)),
		labelStyle.Render("Failed:"), errText,
		labelStyle.Render("Frames:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.ValidFrames)),
		labelStyle.Render("Dropped:"), valueStyle.Render(fmt.Sprintf("%d", m.stats.Anomalies())),
	)
	s.WriteString(boxStyle.Width(m.width - 4).Render(stats))
	s.WriteString("\n\n")

	// Event log
	s.WriteString(labelStyle.Render("EVENTS"))
	s.WriteString("\n")
	var log strings.Builder
	logHeight := 6
	startIdx := len(m.errorLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}
	if len(m.errorLog) == 0 {
		log.WriteString(headerStyle.Render("  (no events yet)"))
	}
	for i := startIdx; i < len(m.errorLog); i++ {
		entry := m.errorLog[i]
		icon, style := "i", warningStyle
		if entry.isError {
			icon, style = "x", errorStyle
		}
		log.WriteString(fmt.Sprintf("%s %s %s\n",
			headerStyle.Render(entry.timestamp.Format("15:04:05.000")),
			style.Render(icon),
			entry.message))
	}
	s.WriteString(boxStyle.Width(m.width - 4).Render(log.String()))

	return s.String()
}
