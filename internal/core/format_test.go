package core

import (
	"testing"

	"github.com/vovakirdan/lanchat/internal/proto"
)

func systemMsg(text string) proto.Message {
	return proto.System(text)
}

func TestColorize(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"", "hi"},
		{"default", "hi"},
		{"red", "\x1b[31mhi\x1b[0m"},
		{"cyan", "\x1b[36mhi\x1b[0m"},
		{"purple", "\x1b[0mhi\x1b[0m"},
	}
	for _, tc := range cases {
		if got := colorize(tc.name, "hi"); got != tc.want {
			t.Errorf("colorize(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFormatLines(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{chatLine("alice", "hello"), "alice: hello"},
		{shoutLine("alice", "hi there"), "alice SHOUTS: HI THERE"},
		{rollLine("bob", 7), "bob rolled 7 (1-100)"},
		{jokeLine("bob", "knock knock"), "[JOKE from bob] knock knock"},
		{onlineLine(nil), "Online users: No users online"},
		{onlineLine([]string{"a", "b"}), "Online users: a, b"},
		{truncateColor("magentaaaaa"), "magentaaa"},
		{truncateColor("red"), "red"},
		{truncateColor("redredreé"), "redredre"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}
