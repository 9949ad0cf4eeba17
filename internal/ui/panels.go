package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dhavalsavalia/avwatch/internal/device"
)

// Panel identifiers
type Panel int

const (
	PanelDevices Panel = iota
	PanelStatus
	PanelLog
)

func (p Panel) String() string {
	switch p {
	case PanelDevices:
		return "Devices"
	case PanelStatus:
		return "Status"
	case PanelLog:
		return "Log"
	default:
		return "Unknown"
	}
}

// LogEntry represents a log message
type LogEntry struct {
	Time    time.Time
	Message string
	Level   LogLevel
}

// LogLevel for log entries
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogSuccess
	LogWarning
	LogError
)

// kindOrder is the display order of device groups.
var kindOrder = []device.Kind{device.AudioInput, device.AudioOutput, device.VideoInput, device.Unknown}

var kindTitles = map[device.Kind]string{
	device.AudioInput:  "Microphones",
	device.AudioOutput: "Speakers",
	device.VideoInput:  "Cameras",
	device.Unknown:     "Other",
}

// DevicePanel renders the current device inventory grouped by kind
type DevicePanel struct {
	devices  []device.Descriptor
	kinds    map[device.Kind]bool
	selected int
	height   int
	width    int
}

// NewDevicePanel creates a device panel showing the given kinds. An empty
// set shows every kind.
func NewDevicePanel(kinds map[device.Kind]bool) *DevicePanel {
	return &DevicePanel{kinds: kinds}
}

// SetDevices replaces the inventory, keeping it in display order
func (p *DevicePanel) SetDevices(devices []device.Descriptor) {
	var shown []device.Descriptor
	for _, kind := range kindOrder {
		if !p.shows(kind) {
			continue
		}
		for _, d := range devices {
			if d.Kind == kind {
				shown = append(shown, d)
			}
		}
	}
	p.devices = shown
	if p.selected >= len(p.devices) {
		p.selected = len(p.devices) - 1
	}
	if p.selected < 0 {
		p.selected = 0
	}
}

// Devices returns the displayed devices in display order
func (p *DevicePanel) Devices() []device.Descriptor {
	return p.devices
}

// Selected returns the selected device
func (p *DevicePanel) Selected() *device.Descriptor {
	if len(p.devices) == 0 {
		return nil
	}
	return &p.devices[p.selected]
}

// MoveUp moves selection up
func (p *DevicePanel) MoveUp() {
	if p.selected > 0 {
		p.selected--
	}
}

// MoveDown moves selection down
func (p *DevicePanel) MoveDown() {
	if p.selected < len(p.devices)-1 {
		p.selected++
	}
}

// SetSize sets the panel dimensions
func (p *DevicePanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

func (p *DevicePanel) shows(kind device.Kind) bool {
	return len(p.kinds) == 0 || p.kinds[kind]
}

// View renders the device panel content
func (p *DevicePanel) View() string {
	if len(p.devices) == 0 {
		return DimStyle.Render("  No devices found")
	}

	var lines []string
	idx := 0
	for _, kind := range kindOrder {
		var group []device.Descriptor
		for _, d := range p.devices {
			if d.Kind == kind {
				group = append(group, d)
			}
		}
		if len(group) == 0 {
			continue
		}

		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, AccentStyle.Render(kindTitles[kind])+SuccessStyle.Render(fmt.Sprintf(" (%d)", len(group))))

		for j, d := range group {
			treeChr := TreeBranch
			if j == len(group)-1 {
				treeChr = TreeLast
			}

			label := d.Label
			if label == "" {
				label = d.ID
			}
			label = truncate(label, p.width-6)

			line := fmt.Sprintf("%s %s", treeChr, label)
			if idx == p.selected {
				lines = append(lines, SelectedStyle.Render(line))
				lines = append(lines, DimStyle.Render("    "+truncate(d.ID, p.width-6)))
			} else {
				lines = append(lines, line)
			}
			idx++
		}
	}

	return strings.Join(lines, "\n")
}

// StatusInfo is what the status panel shows
type StatusInfo struct {
	State        device.State
	Capabilities device.Capabilities
	Interval     time.Duration
	Devices      int
	Changes      int
	LastChange   time.Time
	LastRefresh  time.Time
}

// StatusPanel renders the detector status
type StatusPanel struct {
	width  int
	height int
}

// NewStatusPanel creates a new status panel
func NewStatusPanel() *StatusPanel {
	return &StatusPanel{}
}

// SetSize sets the panel dimensions
func (p *StatusPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the status content
func (p *StatusPanel) View(info StatusInfo) string {
	var lines []string

	lines = append(lines, "")
	switch info.State {
	case device.StateNative:
		spinner := SpinnerFrames[(time.Now().UnixMilli()/100)%int64(len(SpinnerFrames))]
		lines = append(lines, SuccessStyle.Render(spinner+" WATCHING"))
		lines = append(lines, DimStyle.Render("native change events"))
	case device.StatePolling:
		spinner := SpinnerFrames[(time.Now().UnixMilli()/100)%int64(len(SpinnerFrames))]
		lines = append(lines, SuccessStyle.Render(spinner+" POLLING"))
		lines = append(lines, DimStyle.Render("every "+info.Interval.String()))
	default:
		if !info.Capabilities.MediaDevices {
			lines = append(lines, ErrorStyle.Render("UNSUPPORTED"))
			lines = append(lines, DimStyle.Render("no device enumeration"))
		} else {
			lines = append(lines, WarningStyle.Render("STOPPED"))
			lines = append(lines, DimStyle.Render("press s to start"))
		}
	}
	lines = append(lines, "")

	lines = append(lines, p.row("Native", yesNo(info.Capabilities.ChangeNotification)))
	lines = append(lines, p.row("Devices", fmt.Sprintf("%d", info.Devices)))
	lines = append(lines, p.row("Changes", fmt.Sprintf("%d", info.Changes)))
	lines = append(lines, p.row("Last change", since(info.LastChange)))
	lines = append(lines, p.row("Refreshed", since(info.LastRefresh)))

	return strings.Join(lines, "\n")
}

func (p *StatusPanel) row(key, value string) string {
	return DimStyle.Render(fmt.Sprintf("%-12s", key)) + value
}

// LogPanel renders the log output
type LogPanel struct {
	entries []LogEntry
	width   int
	height  int
}

// NewLogPanel creates a new log panel
func NewLogPanel() *LogPanel {
	return &LogPanel{}
}

// Add adds a log entry
func (p *LogPanel) Add(level LogLevel, msg string) {
	p.entries = append(p.entries, LogEntry{
		Time:    time.Now(),
		Message: msg,
		Level:   level,
	})
	// Keep last N entries
	maxEntries := 50
	if len(p.entries) > maxEntries {
		p.entries = p.entries[len(p.entries)-maxEntries:]
	}
}

// Entries returns the retained log entries, oldest first
func (p *LogPanel) Entries() []LogEntry {
	return p.entries
}

// Clear clears all entries
func (p *LogPanel) Clear() {
	p.entries = nil
}

// SetSize sets the panel dimensions
func (p *LogPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the log panel content
func (p *LogPanel) View() string {
	if len(p.entries) == 0 {
		return DimStyle.Render("  No log entries")
	}

	maxVisible := p.height - 2
	if maxVisible < 1 {
		maxVisible = 10
	}

	start := 0
	if len(p.entries) > maxVisible {
		start = len(p.entries) - maxVisible
	}

	var lines []string
	for _, entry := range p.entries[start:] {
		timestamp := DimStyle.Render(entry.Time.Format("15:04:05"))

		var msgStyle lipgloss.Style
		switch entry.Level {
		case LogSuccess:
			msgStyle = SuccessStyle
		case LogWarning:
			msgStyle = WarningStyle
		case LogError:
			msgStyle = ErrorStyle
		default:
			msgStyle = InfoStyle
		}

		lines = append(lines, timestamp+"  "+msgStyle.Render(truncate(entry.Message, p.width-12)))
	}

	return strings.Join(lines, "\n")
}

// Helper functions
func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func since(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return time.Since(t).Round(time.Second).String() + " ago"
}
