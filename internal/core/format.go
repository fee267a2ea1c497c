package core

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/vovakirdan/lanchat/internal/proto"
)

var palette = map[string]color.Attribute{
	"red":     color.FgRed,
	"green":   color.FgGreen,
	"yellow":  color.FgYellow,
	"blue":    color.FgBlue,
	"magenta": color.FgMagenta,
	"cyan":    color.FgCyan,
	"white":   color.FgWhite,
}

// maxColorLen bounds the stored color preference.
const maxColorLen = 9

var jokes = []string{
	"Why don't scientists trust atoms? Because they make up everything!",
	"Did you hear about the mathematician who's afraid of negative numbers? He'll stop at nothing to avoid them!",
	"Why was the computer cold? It left its Windows open!",
	"What's a programmer's favorite place? The Foo Bar!",
	"How many programmers does it take to change a light bulb? None, it's a hardware problem!",
	"There are 10 kinds of people in this world: those who understand binary and those who don't.",
	"Why do programmers prefer dark mode? Because light attracts bugs!",
}

// colorize wraps text in the ANSI sequence for the named color. "default"
// and "" leave text untouched; names outside the palette get a reset sequence.
func colorize(name, text string) string {
	if name == "" || name == "default" {
		return text
	}
	attr, ok := palette[name]
	if !ok {
		attr = color.Reset
	}
	c := color.New(attr)
	// Color is decided by the recipient's terminal, not the server's stdout.
	c.EnableColor()
	return c.Sprint(text)
}

func chatLine(username, text string) string {
	return fmt.Sprintf("%s: %s", username, text)
}

func shoutLine(username, text string) string {
	return fmt.Sprintf("%s SHOUTS: %s", username, strings.ToUpper(text))
}

func rollLine(username string, n int) string {
	return fmt.Sprintf("%s rolled %d (1-100)", username, n)
}

func jokeLine(username, joke string) string {
	return fmt.Sprintf("[JOKE from %s] %s", username, joke)
}

func onlineLine(names []string) string {
	if len(names) == 0 {
		return "Online users: " + ReplyNoUsersOnline
	}
	return "Online users: " + strings.Join(names, ", ")
}

func truncateColor(name string) string {
	return proto.Truncate(name, maxColorLen+1)
}
