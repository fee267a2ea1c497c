package client

import (
	"github.com/fatih/color"

	"github.com/vovakirdan/lanchat/internal/proto"
)

// ClearScreen homes the cursor and erases the terminal.
const ClearScreen = "\x1b[H\x1b[2J"

// Renderer formats server records for display.
type Renderer struct {
	system  *color.Color
	private *color.Color
}

// NewRenderer returns a renderer; colored forces ANSI output on or off.
func NewRenderer(colored bool) *Renderer {
	r := &Renderer{
		system:  color.New(color.FgYellow),
		private: color.New(color.FgMagenta),
	}
	if colored {
		r.system.EnableColor()
		r.private.EnableColor()
	} else {
		r.system.DisableColor()
		r.private.DisableColor()
	}
	return r
}

// Render returns the line to print for msg.
func (r *Renderer) Render(msg proto.Message) string {
	switch msg.Type {
	case proto.TypeSystem:
		return r.system.Sprint("[SYSTEM] " + msg.Content)
	case proto.TypePrivate:
		return r.private.Sprint(msg.Content)
	default:
		return msg.Content
	}
}
