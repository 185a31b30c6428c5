package tui

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const highlightInterval = 120 * time.Millisecond

var (
	highlightBase = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	highlightBand = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true)
)

// highlightTickMsg advances the selection highlight by one frame
type highlightTickMsg struct{}

// Highlight paints the selected picker row with a bright band that walks
// across it one glyph per tick. FLOORTRACK_REDUCE_MOTION keeps it static.
type Highlight struct {
	frame   int
	band    int
	enabled bool
	active  bool
	pending bool
}

// NewHighlight returns a moving highlight unless reduced motion is requested
func NewHighlight() *Highlight {
	enabled := os.Getenv("FLOORTRACK_REDUCE_MOTION") == ""
	return &Highlight{band: 4, enabled: enabled, active: enabled}
}

// Moving reports whether the band animates
func (h *Highlight) Moving() bool {
	return h.active
}

// SetActive pauses or resumes the band, e.g. while a search box has focus
func (h *Highlight) SetActive(active bool) {
	h.active = active && h.enabled
}

// Reset moves the band back to the start, used when the selection changes
func (h *Highlight) Reset() {
	h.frame = 0
}

// Advance consumes a tick and moves the band one glyph
func (h *Highlight) Advance() {
	h.pending = false
	h.frame++
}

// Tick schedules the next frame. A static highlight never ticks and at most
// one tick is in flight.
func (h *Highlight) Tick() tea.Cmd {
	if !h.active || h.pending {
		return nil
	}
	h.pending = true
	return tea.Tick(highlightInterval, func(time.Time) tea.Msg {
		return highlightTickMsg{}
	})
}

// span returns the glyph range [lo, hi) covered by the band for text of n
// glyphs. The band enters from the left edge and leaves past the right one.
func (h *Highlight) span(n int) (int, int) {
	if !h.active || n == 0 {
		return 0, 0
	}
	start := h.frame%(n+h.band) - h.band
	lo, hi := max(start, 0), min(start+h.band, n)
	if lo >= hi {
		return 0, 0
	}
	return lo, hi
}

// Render truncates text to width and paints the band at the current frame
func (h *Highlight) Render(text string, width int) string {
	runes := []rune(truncate(text, width))
	lo, hi := h.span(len(runes))
	if lo == hi {
		return highlightBase.Render(string(runes))
	}

	out := ""
	if lo > 0 {
		out += highlightBase.Render(string(runes[:lo]))
	}
	out += highlightBand.Render(string(runes[lo:hi]))
	if hi < len(runes) {
		out += highlightBase.Render(string(runes[hi:]))
	}
	return out
}

// truncate cuts text to width glyphs, marking the cut with "..."
func truncate(text string, width int) string {
	runes := []rune(text)
	if width <= 0 || len(runes) <= width {
		return text
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
