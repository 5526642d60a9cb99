package ui

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ReplyBox displays a raw JSON document received from a device
type ReplyBox struct {
	Title    string   // e.g., "Device Reply"
	Lines    []string // Indented JSON lines
	Width    int      // Terminal width
	MaxLines int      // Maximum lines to display (0 = unlimited)
}

// NewReplyBox creates a reply box. Valid JSON is indented; anything else is
// shown verbatim.
func NewReplyBox(reply []byte) *ReplyBox {
	return &ReplyBox{
		Title: "Device Reply",
		Lines: strings.Split(PrettyJSON(reply), "\n"),
		Width: GetTerminalWidth(),
	}
}

// PrettyJSON indents a JSON document with two spaces. Invalid JSON is
// returned unchanged.
func PrettyJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

// SetWidth sets the terminal width for responsive rendering
func (r *ReplyBox) SetWidth(width int) *ReplyBox {
	r.Width = width
	return r
}

// SetTitle sets a custom title for the box
func (r *ReplyBox) SetTitle(title string) *ReplyBox {
	r.Title = title
	return r
}

// SetMaxLines limits the number of lines displayed
func (r *ReplyBox) SetMaxLines(max int) *ReplyBox {
	r.MaxLines = max
	return r
}

// Render returns the styled reply box as a string
func (r *ReplyBox) Render() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := r.Lines
	if r.MaxLines > 0 && len(lines) > r.MaxLines {
		lines = append(lines[:r.MaxLines:r.MaxLines], "... (output truncated)")
	}

	inner := lipgloss.JoinVertical(lipgloss.Left,
		ReplyTitleStyle.Render(r.Title),
		"",
		ReplyContentStyle.Render(strings.Join(lines, "\n")),
	)

	boxWidth := width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	return MutedBoxStyle(boxWidth).
		MarginLeft(2).
		Render(inner)
}

// String implements fmt.Stringer
func (r *ReplyBox) String() string {
	return r.Render()
}
