package proto

import "fmt"

// MessageType tags a wire record.
type MessageType int32

const (
	TypeAuth     MessageType = 1
	TypeRegister MessageType = 2
	TypeChat     MessageType = 3
	TypeCommand  MessageType = 4
	TypeSystem   MessageType = 5
	TypePrivate  MessageType = 6
)

func (t MessageType) String() string {
	switch t {
	case TypeAuth:
		return "auth"
	case TypeRegister:
		return "register"
	case TypeChat:
		return "chat"
	case TypeCommand:
		return "command"
	case TypeSystem:
		return "system"
	case TypePrivate:
		return "private"
	default:
		return fmt.Sprintf("type(%d)", int32(t))
	}
}

// Command selects a slash command when Type is TypeCommand.
type Command int32

const (
	CommandNone     Command = 0
	CommandHelp     Command = 1
	CommandUsername Command = 2
	CommandPassword Command = 3
	CommandDelete   Command = 4
	CommandShout    Command = 5
	CommandWhisper  Command = 6
	CommandColor    Command = 7
	CommandRoll     Command = 8
	CommandOnline   Command = 9
	// CommandClear is handled by the client and never sent.
	CommandClear   Command = 10
	CommandJoke    Command = 11
	CommandUnknown Command = 99
)

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandHelp:
		return "help"
	case CommandUsername:
		return "username"
	case CommandPassword:
		return "password"
	case CommandDelete:
		return "delete"
	case CommandShout:
		return "shout"
	case CommandWhisper:
		return "whisper"
	case CommandColor:
		return "color"
	case CommandRoll:
		return "roll"
	case CommandOnline:
		return "online"
	case CommandClear:
		return "clear"
	case CommandJoke:
		return "joke"
	default:
		return "unknown"
	}
}

// Message is one fixed-size record exchanged in both directions.
// Text fields longer than their wire width are truncated on encode.
type Message struct {
	Type     MessageType
	Command  Command
	Username string
	Target   string
	Content  string
}

// System builds a server reply record.
func System(content string) Message {
	return Message{Type: TypeSystem, Content: content}
}
