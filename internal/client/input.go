// Package client turns console input into wire records and renders the
// server's records for a terminal.
package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/vovakirdan/lanchat/internal/proto"
)

// Action tells the console loop what to do with a parsed line.
type Action int

const (
	// ActionNone means nothing is sent; any feedback was already printed.
	ActionNone Action = iota
	// ActionSend means the returned record goes to the server.
	ActionSend
	// ActionClear means the screen should be cleared locally.
	ActionClear
)

const paletteHelp = "Available colors: red, green, blue, yellow, magenta, cyan, white"

// Console reads lines from the user and prompts for missing secrets.
type Console struct {
	in          *bufio.Scanner
	out         io.Writer
	interactive bool
}

// NewConsole wraps in and out. Prompts are only printed when interactive.
func NewConsole(in io.Reader, out io.Writer, interactive bool) *Console {
	return &Console{in: bufio.NewScanner(in), out: out, interactive: interactive}
}

// ReadLine returns the next input line without its newline.
func (c *Console) ReadLine() (string, bool) {
	if !c.in.Scan() {
		return "", false
	}
	return strings.TrimRight(c.in.Text(), "\r"), true
}

// Prompt prints label (when interactive) and reads one line.
func (c *Console) Prompt(label string) string {
	if c.interactive {
		fmt.Fprint(c.out, label)
	}
	line, _ := c.ReadLine()
	return strings.TrimSpace(line)
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// Parse converts one input line into a record. Lines not starting with '/'
// are chat. Commands missing a password prompt for it.
func (c *Console) Parse(line string) (proto.Message, Action) {
	if line == "" {
		return proto.Message{}, ActionNone
	}
	if !strings.HasPrefix(line, "/") {
		return proto.Message{Type: proto.TypeChat, Content: line}, ActionSend
	}

	name, args, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	args = strings.TrimSpace(args)
	fields := strings.Fields(args)
	msg := proto.Message{Type: proto.TypeCommand}

	switch name {
	case "help":
		msg.Command = proto.CommandHelp
	case "username":
		if len(fields) == 0 {
			c.println("Usage: /username <new_username>")
			return msg, ActionNone
		}
		password := ""
		if len(fields) > 1 {
			password = fields[1]
		} else {
			password = c.Prompt("Enter your current password: ")
		}
		msg.Command = proto.CommandUsername
		msg.Content = fields[0] + " " + password
	case "password":
		var current, next string
		if len(fields) == 2 {
			current, next = fields[0], fields[1]
		} else {
			current = c.Prompt("Enter your current password: ")
			next = c.Prompt("Enter your new password: ")
		}
		msg.Command = proto.CommandPassword
		msg.Content = current + " " + next
	case "delete":
		password := args
		if password == "" {
			answer := c.Prompt("Are you sure you want to delete your account? (y/n): ")
			if !strings.EqualFold(answer, "y") {
				c.println("Account deletion cancelled.")
				return msg, ActionNone
			}
			password = c.Prompt("Enter your password to confirm: ")
		}
		msg.Command = proto.CommandDelete
		msg.Content = password
	case "shout":
		msg.Command = proto.CommandShout
		msg.Content = args
	case "whisper", "w":
		target, text, ok := strings.Cut(args, " ")
		text = strings.TrimSpace(text)
		if !ok || target == "" || text == "" {
			c.println("Usage: /whisper <username> <message>")
			return msg, ActionNone
		}
		msg.Command = proto.CommandWhisper
		msg.Target = target
		msg.Content = text
	case "color":
		if args == "" {
			c.println(paletteHelp)
			c.println("Usage: /color <colorname>")
			return msg, ActionNone
		}
		msg.Command = proto.CommandColor
		msg.Content = args
	case "roll":
		msg.Command = proto.CommandRoll
	case "online":
		msg.Command = proto.CommandOnline
	case "joke":
		msg.Command = proto.CommandJoke
	case "clear":
		return proto.Message{}, ActionClear
	default:
		c.println("Unknown command. Type /help for a list of commands.")
		return msg, ActionNone
	}
	return msg, ActionSend
}
