package client

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vovakirdan/lanchat/internal/proto"
)

// ErrRejected is returned when the server refuses the credentials.
var ErrRejected = errors.New("authentication rejected")

// Authenticate logs in over rw, registering the account first when register
// is set. It returns the server's last reply.
func Authenticate(rw io.ReadWriter, register bool, username, password string) (string, error) {
	if register {
		reply, err := exchange(rw, proto.Message{Type: proto.TypeRegister, Username: username, Content: password})
		if err != nil {
			return "", err
		}
		if !strings.Contains(reply, "successful") {
			return reply, fmt.Errorf("%w: %s", ErrRejected, reply)
		}
	}

	reply, err := exchange(rw, proto.Message{Type: proto.TypeAuth, Username: username, Content: password})
	if err != nil {
		return "", err
	}
	if !strings.Contains(reply, "successful") {
		return reply, fmt.Errorf("%w: %s", ErrRejected, reply)
	}
	return reply, nil
}

func exchange(rw io.ReadWriter, msg proto.Message) (string, error) {
	if err := proto.Write(rw, msg); err != nil {
		return "", fmt.Errorf("send %v: %w", msg.Type, err)
	}
	reply, err := proto.Read(rw)
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return reply.Content, nil
}
