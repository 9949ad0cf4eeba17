package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dhavalsavalia/avwatch/internal/config"
	"github.com/dhavalsavalia/avwatch/internal/device"
)

// Detector is the part of device.Controller the UI drives.
type Detector interface {
	Start()
	Stop()
	State() device.State
	Capabilities() device.Capabilities
	RegisterObserver(o device.Observer)
	RemoveObserver(o device.Observer)
}

// changeBridge turns observer callbacks into a channel the bubbletea
// runtime can wait on. Bursts collapse into one pending signal.
type changeBridge struct {
	ch chan struct{}
}

func newChangeBridge() *changeBridge {
	return &changeBridge{ch: make(chan struct{}, 1)}
}

func (b *changeBridge) DeviceChanged() {
	select {
	case b.ch <- struct{}{}:
	default:
	}
}

// Model is the main bubbletea model
type Model struct {
	// Dimensions
	width  int
	height int

	// State
	activePanel Panel
	showHelp    bool

	// Panels
	devicePanel *DevicePanel
	statusPanel *StatusPanel
	logPanel    *LogPanel
	helpOverlay *HelpOverlay

	// Config-driven components
	cfg      *config.Config
	detector Detector
	enum     device.Enumerator
	bridge   *changeBridge

	// Counters
	changes     int
	lastChange  time.Time
	lastRefresh time.Time
}

// NewModel creates a new model. enum may be nil when the platform cannot
// enumerate devices.
func NewModel(cfg *config.Config, detector Detector, enum device.Enumerator) *Model {
	return &Model{
		cfg:         cfg,
		detector:    detector,
		enum:        enum,
		bridge:      newChangeBridge(),
		activePanel: PanelDevices,
		devicePanel: NewDevicePanel(cfg.Display.KindSet()),
		statusPanel: NewStatusPanel(),
		logPanel:    NewLogPanel(),
		helpOverlay: NewHelpOverlay(),
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	m.logPanel.Add(LogInfo, "Started")

	m.detector.RegisterObserver(m.bridge)
	m.startDetection()

	return tea.Batch(m.refresh(), m.listenForChange(), tick())
}

// deviceChangedMsg is sent when the detector reports a change
type deviceChangedMsg struct{}

// inventoryMsg carries the result of one enumeration
type inventoryMsg struct {
	devices []device.Descriptor
	err     error
}

// tickMsg for spinner animation
type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updatePanelSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case deviceChangedMsg:
		m.changes++
		m.lastChange = time.Now()
		m.logPanel.Add(LogWarning, "Device set changed")
		return m, tea.Batch(m.refresh(), m.listenForChange())

	case inventoryMsg:
		m.lastRefresh = time.Now()
		if msg.err != nil {
			m.logPanel.Add(LogError, "Enumeration failed: "+msg.err.Error())
			return m, nil
		}
		m.devicePanel.SetDevices(msg.devices)
		m.logPanel.Add(LogInfo, fmt.Sprintf("%d device(s)", len(m.devicePanel.Devices())))
		return m, nil

	case tickMsg:
		return m, tick()
	}

	return m, nil
}

// listenForChange waits for the next observer callback
func (m *Model) listenForChange() tea.Cmd {
	ch := m.bridge.ch
	return func() tea.Msg {
		<-ch
		return deviceChangedMsg{}
	}
}

// refresh enumerates devices off the update loop
func (m *Model) refresh() tea.Cmd {
	enum := m.enum
	timeout := time.Duration(m.cfg.Detector.EnumerateTimeout)
	return func() tea.Msg {
		if enum == nil {
			return inventoryMsg{err: device.ErrUnsupported}
		}
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		devices, err := enum.Enumerate(ctx)
		return inventoryMsg{devices: devices, err: err}
	}
}

func (m *Model) startDetection() {
	m.detector.Start()
	switch state := m.detector.State(); state {
	case device.StateIdle:
		m.logPanel.Add(LogError, "Device change detection unavailable")
	default:
		m.logPanel.Add(LogSuccess, "Detection started ("+state.String()+")")
	}
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.detector.Stop()
	m.detector.RemoveObserver(m.bridge)
	return m, tea.Quit
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	case "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "esc":
		m.showHelp = false
		return m, nil
	}

	// Help overlay blocks other keys
	if m.showHelp {
		return m, nil
	}

	switch msg.String() {
	// Navigation
	case "up", "k":
		if m.activePanel == PanelDevices {
			m.devicePanel.MoveUp()
		}
	case "down", "j":
		if m.activePanel == PanelDevices {
			m.devicePanel.MoveDown()
		}
	case "tab":
		m.activePanel = (m.activePanel + 1) % 3
	case "1":
		m.activePanel = PanelDevices
	case "2":
		m.activePanel = PanelStatus
	case "3":
		m.activePanel = PanelLog

	// Actions
	case "s":
		if m.detector.State() == device.StateIdle {
			m.startDetection()
		} else {
			m.detector.Stop()
			m.logPanel.Add(LogInfo, "Detection stopped")
		}
	case "r":
		m.logPanel.Add(LogInfo, "Refreshing")
		return m, m.refresh()
	case "c":
		m.logPanel.Clear()
	}

	return m, nil
}

func (m *Model) updatePanelSizes() {
	contentHeight := m.height - 4

	leftWidth := m.width * 40 / 100
	centerWidth := m.width * 25 / 100
	rightWidth := m.width - leftWidth - centerWidth - 6

	m.devicePanel.SetSize(leftWidth, contentHeight)
	m.statusPanel.SetSize(centerWidth, contentHeight)
	m.logPanel.SetSize(rightWidth, contentHeight)
	m.helpOverlay.SetSize(m.width, m.height)
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.helpOverlay.View()
	}

	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n")
	s.WriteString(m.renderPanels())
	s.WriteString("\n")
	s.WriteString(m.renderFooter())

	return s.String()
}

func (m *Model) renderHeader() string {
	title := TitleStyle.Render("AVWATCH")

	var statusIcon, statusText string
	switch state := m.detector.State(); {
	case state != device.StateIdle:
		statusIcon = SuccessStyle.Render(StatusRunning)
		statusText = "Detecting (" + state.String() + ")"
	case !m.detector.Capabilities().MediaDevices:
		statusIcon = ErrorStyle.Render(StatusInert)
		statusText = "Unsupported"
	default:
		statusIcon = DimStyle.Render(StatusStopped)
		statusText = "Stopped"
	}
	status := statusIcon + " " + statusText

	version := DimStyle.Render("avwatch")

	leftPart := title
	rightPart := status + "   " + version
	spacing := m.width - lipgloss.Width(leftPart) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	headerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(m.width - 2)

	content := leftPart + strings.Repeat(" ", spacing) + rightPart
	return headerStyle.Render(content)
}

func (m *Model) renderPanels() string {
	leftWidth := m.width * 40 / 100
	centerWidth := m.width * 25 / 100
	rightWidth := m.width - leftWidth - centerWidth - 6

	contentHeight := m.height - 6

	render := func(p Panel, width int, content string) string {
		style := PanelStyle.Width(width).Height(contentHeight)
		if m.activePanel == p {
			style = ActivePanelStyle.Width(width).Height(contentHeight)
		}
		return style.Render(AccentStyle.Render(" "+p.String()+" ") + "\n\n" + content)
	}

	status := m.statusPanel.View(StatusInfo{
		State:        m.detector.State(),
		Capabilities: m.detector.Capabilities(),
		Interval:     time.Duration(m.cfg.Detector.PollInterval),
		Devices:      len(m.devicePanel.Devices()),
		Changes:      m.changes,
		LastChange:   m.lastChange,
		LastRefresh:  m.lastRefresh,
	})

	return lipgloss.JoinHorizontal(lipgloss.Top,
		render(PanelDevices, leftWidth, m.devicePanel.View()),
		render(PanelStatus, centerWidth, status),
		render(PanelLog, rightWidth, m.logPanel.View()),
	)
}

func (m *Model) renderFooter() string {
	toggle := "Start"
	if m.detector.State() != device.StateIdle {
		toggle = "Stop"
	}

	hints := []string{
		hint("j/k", "Navigate"),
		hint("s", toggle),
		hint("r", "Refresh"),
		hint("q", "Quit"),
	}

	left := strings.Join(hints, "   ")
	right := hint("?", "Help")

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacing < 1 {
		spacing = 1
	}

	return " " + left + strings.Repeat(" ", spacing) + right
}

func hint(key, desc string) string {
	return KeyHintStyle.Render(key) + " " + DimStyle.Render(desc)
}
