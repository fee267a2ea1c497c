package proto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEncodeLayout(t *testing.T) {
	buf := Encode(Message{
		Type:     TypeCommand,
		Command:  CommandWhisper,
		Username: "alice",
		Target:   "bob",
		Content:  "psst",
	})

	if len(buf) != 1096 {
		t.Fatalf("record size = %d, want 1096", len(buf))
	}
	if got := binary.LittleEndian.Uint32(buf[0:4]); got != 4 {
		t.Fatalf("type field = %d", got)
	}
	if got := binary.LittleEndian.Uint32(buf[4:8]); got != 6 {
		t.Fatalf("command field = %d", got)
	}
	if !bytes.HasPrefix(buf[8:], []byte("alice\x00")) {
		t.Fatalf("username not at offset 8: %q", buf[8:16])
	}
	if !bytes.HasPrefix(buf[40:], []byte("bob\x00")) {
		t.Fatalf("target not at offset 40: %q", buf[40:48])
	}
	if !bytes.HasPrefix(buf[72:], []byte("psst\x00")) {
		t.Fatalf("content not at offset 72: %q", buf[72:80])
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	in := Message{Type: TypeAuth, Username: "carol", Content: "hunter2"}
	out, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
}

func TestEncodeTruncatesOversizedFields(t *testing.T) {
	long := strings.Repeat("x", 40)
	content := strings.Repeat("y", 2000)

	out, err := Decode(Encode(Message{Type: TypeChat, Username: long, Content: content}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Username) != UsernameSize-1 {
		t.Fatalf("username length = %d, want %d", len(out.Username), UsernameSize-1)
	}
	if len(out.Content) != ContentSize-1 {
		t.Fatalf("content length = %d, want %d", len(out.Content), ContentSize-1)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	// 30 ASCII bytes followed by a 3-byte rune crosses the 31-byte limit.
	s := strings.Repeat("a", 30) + "€"
	got := Truncate(s, UsernameSize)
	if got != strings.Repeat("a", 30) {
		t.Fatalf("truncate = %q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncate produced invalid utf-8")
	}
}

func TestDecodeShortBuffer(t *testing.T) {
	if _, err := Decode(make([]byte, Size-1)); !errors.Is(err, ErrShortMessage) {
		t.Fatalf("expected ErrShortMessage, got %v", err)
	}
}

func TestReadWriteStream(t *testing.T) {
	var buf bytes.Buffer
	first := Message{Type: TypeChat, Content: "one"}
	second := System("two")
	if err := Write(&buf, first); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Write(&buf, second); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil || got != first {
		t.Fatalf("first read = %+v, %v", got, err)
	}
	got, err = Read(&buf)
	if err != nil || got != second {
		t.Fatalf("second read = %+v, %v", got, err)
	}
	if _, err := Read(&buf); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestReadPartialRecord(t *testing.T) {
	r := bytes.NewReader(Encode(System("cut"))[:100])
	if _, err := Read(r); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}
