package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/lanchat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8081/ws", "admin WebSocket address")
	user := flag.String("user", "tester", "username to register and log in with")
	password := flag.String("password", "tester-pw", "password for -user")
	text := flag.String("text", "hello from smoke test", "chat text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msg proto.Message) error {
		if err := conn.Write(ctx, websocket.MessageBinary, proto.Encode(msg)); err != nil {
			return fmt.Errorf("send %v: %w", msg.Type, err)
		}
		return nil
	}
	recv := func() (proto.Message, error) {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return proto.Message{}, fmt.Errorf("read: %w", err)
		}
		return proto.Decode(data)
	}

	// Registration fails harmlessly when the account already exists.
	if err := send(proto.Message{Type: proto.TypeRegister, Username: *user, Content: *password}); err != nil {
		return err
	}
	reply, err := recv()
	if err != nil {
		return err
	}
	fmt.Printf("register: %s\n", reply.Content)

	if err := send(proto.Message{Type: proto.TypeAuth, Username: *user, Content: *password}); err != nil {
		return err
	}
	if reply, err = recv(); err != nil {
		return err
	}
	fmt.Printf("login: %s\n", reply.Content)
	if !strings.Contains(reply.Content, "successful") {
		return fmt.Errorf("login rejected: %s", reply.Content)
	}

	if err := send(proto.Message{Type: proto.TypeChat, Content: *text}); err != nil {
		return err
	}
	if err := send(proto.Message{Type: proto.TypeCommand, Command: proto.CommandOnline}); err != nil {
		return err
	}

	for {
		msg, err := recv()
		if err != nil {
			return err
		}
		fmt.Printf("received: type=%s content=%q\n", msg.Type, msg.Content)
		if msg.Type == proto.TypeSystem && strings.HasPrefix(msg.Content, "Online users:") {
			return nil
		}
	}
}
