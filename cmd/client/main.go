package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/lanchat/internal/client"
	"github.com/vovakirdan/lanchat/internal/proto"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "lanchat-client <host> <port>",
		Short:        "Console client for the LAN chat relay",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, net.JoinHostPort(args[0], args[1]), os.Stdin, os.Stdout)
		},
	}
}

func run(ctx context.Context, addr string, in io.Reader, out io.Writer) error {
	var d net.Dialer
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	cancel()
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()
	fmt.Fprintf(out, "Connected to server at %s\n", addr)

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	out = &lockedWriter{w: out}
	interactive := isatty.IsTerminal(os.Stdin.Fd())
	console := client.NewConsole(in, out, interactive)
	renderer := client.NewRenderer(isatty.IsTerminal(os.Stdout.Fd()))

	if err := login(conn, console, out); err != nil {
		return err
	}

	fmt.Fprint(out, client.ClearScreen)
	fmt.Fprintln(out, "Authentication successful. You can now start chatting.")
	fmt.Fprintln(out, "Type /help to see available commands.")
	fmt.Fprintln(out)

	recvDone := make(chan error, 1)
	recvStopped := make(chan struct{})
	defer func() {
		_ = conn.Close()
		<-recvStopped
	}()
	go func() {
		defer close(recvStopped)
		for {
			msg, err := proto.Read(conn)
			if err != nil {
				recvDone <- err
				return
			}
			fmt.Fprintln(out, renderer.Render(msg))
		}
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, ok := console.ReadLine()
			if !ok {
				return
			}
			lines <- line
		}
	}()

	for {
		select {
		case err := <-recvDone:
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				fmt.Fprintln(out, "Server closed connection.")
				return nil
			}
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			msg, action := console.Parse(line)
			switch action {
			case client.ActionClear:
				fmt.Fprint(out, client.ClearScreen)
				fmt.Fprintln(out, "Chat cleared. You can continue typing.")
			case client.ActionSend:
				if err := proto.Write(conn, msg); err != nil {
					return fmt.Errorf("send: %w", err)
				}
				if msg.Type == proto.TypeChat {
					fmt.Fprintf(out, "You: %s\n", msg.Content)
				}
			}
		}
	}
}

func login(conn net.Conn, console *client.Console, out io.Writer) error {
	for {
		fmt.Fprintln(out, "\n=== Authentication ===")
		fmt.Fprintln(out, "1. Login")
		fmt.Fprintln(out, "2. Register")
		choice := console.Prompt("Choice: ")
		username := console.Prompt("Username: ")
		password := console.Prompt("Password: ")

		reply, err := client.Authenticate(conn, choice == "2", username, password)
		if err == nil {
			fmt.Fprintf(out, "Server response: %s\n", reply)
			return nil
		}
		if !errors.Is(err, client.ErrRejected) {
			return err
		}
		fmt.Fprintf(out, "Server response: %s\n", reply)
		if strings.HasPrefix(reply, "Server is full") {
			return err
		}

		retry := console.Prompt("Authentication failed. Try again? (y/n): ")
		if !strings.EqualFold(retry, "y") {
			return err
		}
	}
}

// lockedWriter serializes writes from the receive and input loops.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
