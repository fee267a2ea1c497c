package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vovakirdan/lanchat/internal/proto"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line   string
		want   proto.Message
		action Action
	}{
		{"hello there", proto.Message{Type: proto.TypeChat, Content: "hello there"}, ActionSend},
		{"/help", proto.Message{Type: proto.TypeCommand, Command: proto.CommandHelp}, ActionSend},
		{"/username bobby pw", proto.Message{Type: proto.TypeCommand, Command: proto.CommandUsername, Content: "bobby pw"}, ActionSend},
		{"/password old newer", proto.Message{Type: proto.TypeCommand, Command: proto.CommandPassword, Content: "old newer"}, ActionSend},
		{"/delete secret", proto.Message{Type: proto.TypeCommand, Command: proto.CommandDelete, Content: "secret"}, ActionSend},
		{"/shout hey you", proto.Message{Type: proto.TypeCommand, Command: proto.CommandShout, Content: "hey you"}, ActionSend},
		{"/whisper bob see you soon", proto.Message{Type: proto.TypeCommand, Command: proto.CommandWhisper, Target: "bob", Content: "see you soon"}, ActionSend},
		{"/w bob hi", proto.Message{Type: proto.TypeCommand, Command: proto.CommandWhisper, Target: "bob", Content: "hi"}, ActionSend},
		{"/color red", proto.Message{Type: proto.TypeCommand, Command: proto.CommandColor, Content: "red"}, ActionSend},
		{"/roll", proto.Message{Type: proto.TypeCommand, Command: proto.CommandRoll}, ActionSend},
		{"/online", proto.Message{Type: proto.TypeCommand, Command: proto.CommandOnline}, ActionSend},
		{"/joke", proto.Message{Type: proto.TypeCommand, Command: proto.CommandJoke}, ActionSend},
		{"/clear", proto.Message{}, ActionClear},
		{"", proto.Message{}, ActionNone},
	}

	for _, tc := range cases {
		c := NewConsole(strings.NewReader(""), &bytes.Buffer{}, false)
		got, action := c.Parse(tc.line)
		if action != tc.action {
			t.Errorf("%q: action = %v, want %v", tc.line, action, tc.action)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" && tc.action == ActionSend {
			t.Errorf("%q: message mismatch (-want +got):\n%s", tc.line, diff)
		}
	}
}

func TestParseUsageIsLocal(t *testing.T) {
	cases := map[string]string{
		"/whisper bob": "Usage: /whisper <username> <message>",
		"/username":    "Usage: /username <new_username>",
		"/color":       "Usage: /color <colorname>",
		"/dance":       "Unknown command. Type /help for a list of commands.",
	}
	for line, want := range cases {
		var out bytes.Buffer
		c := NewConsole(strings.NewReader(""), &out, false)
		if _, action := c.Parse(line); action != ActionNone {
			t.Errorf("%q: expected nothing to send", line)
		}
		if !strings.Contains(out.String(), want) {
			t.Errorf("%q: output %q does not contain %q", line, out.String(), want)
		}
	}
}

func TestParsePromptsForSecrets(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("current\nnext-pw\n"), &out, true)

	got, action := c.Parse("/password")
	if action != ActionSend || got.Content != "current next-pw" {
		t.Fatalf("unexpected result %v %+v", action, got)
	}
	if !strings.Contains(out.String(), "Enter your new password: ") {
		t.Fatalf("prompt not shown: %q", out.String())
	}

	c = NewConsole(strings.NewReader("old-pw\n"), &out, true)
	got, _ = c.Parse("/username bobby")
	if got.Content != "bobby old-pw" {
		t.Fatalf("unexpected content %q", got.Content)
	}
}

func TestParseDeleteConfirmation(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader("n\n"), &out, true)
	if _, action := c.Parse("/delete"); action != ActionNone {
		t.Fatal("declined deletion must not be sent")
	}
	if !strings.Contains(out.String(), "Account deletion cancelled.") {
		t.Fatalf("missing cancellation notice: %q", out.String())
	}

	c = NewConsole(strings.NewReader("y\nsecret\n"), &out, true)
	got, action := c.Parse("/delete")
	if action != ActionSend || got.Command != proto.CommandDelete || got.Content != "secret" {
		t.Fatalf("unexpected result %v %+v", action, got)
	}
}

func TestRender(t *testing.T) {
	r := NewRenderer(false)
	if got := r.Render(proto.System("Login successful")); got != "[SYSTEM] Login successful" {
		t.Fatalf("got %q", got)
	}
	if got := r.Render(proto.Message{Type: proto.TypeChat, Content: "alice: hi"}); got != "alice: hi" {
		t.Fatalf("got %q", got)
	}

	colored := NewRenderer(true)
	if got := colored.Render(proto.System("x")); got != "\x1b[33m[SYSTEM] x\x1b[0m" {
		t.Fatalf("got %q", got)
	}
}
