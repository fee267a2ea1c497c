package proto

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Field widths of the record, in bytes. Each text field keeps at least one
// trailing NUL, so the usable length is one less.
const (
	UsernameSize = 32
	TargetSize   = 32
	ContentSize  = 1024

	headerSize = 8
	// Size is the encoded length of every record.
	Size = headerSize + UsernameSize + TargetSize + ContentSize
)

const (
	usernameOffset = headerSize
	targetOffset   = usernameOffset + UsernameSize
	contentOffset  = targetOffset + TargetSize
)

// ErrShortMessage is returned when a buffer is smaller than one record.
var ErrShortMessage = errors.New("short message")

// MarshalBinary encodes the record using the legacy little-endian layout.
func (m Message) MarshalBinary() ([]byte, error) {
	return Encode(m), nil
}

// UnmarshalBinary decodes a record produced by MarshalBinary.
func (m *Message) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*m = decoded
	return nil
}

// Encode returns the Size-byte wire form of m.
func Encode(m Message) []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.Type))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.Command))
	putField(buf[usernameOffset:targetOffset], m.Username)
	putField(buf[targetOffset:contentOffset], m.Target)
	putField(buf[contentOffset:Size], m.Content)
	return buf
}

// Decode parses the first Size bytes of data.
func Decode(data []byte) (Message, error) {
	if len(data) < Size {
		return Message{}, fmt.Errorf("decode %d bytes: %w", len(data), ErrShortMessage)
	}
	return Message{
		Type:     MessageType(int32(binary.LittleEndian.Uint32(data[0:4]))),
		Command:  Command(int32(binary.LittleEndian.Uint32(data[4:8]))),
		Username: field(data[usernameOffset:targetOffset]),
		Target:   field(data[targetOffset:contentOffset]),
		Content:  field(data[contentOffset:Size]),
	}, nil
}

// Read blocks until one full record has been read from r.
func Read(r io.Reader) (Message, error) {
	buf := make([]byte, Size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Message{}, err
	}
	return Decode(buf)
}

// Write sends one record to w.
func Write(w io.Writer, m Message) error {
	_, err := w.Write(Encode(m))
	return err
}

// Truncate cuts s so that it fits a field of the given width, never splitting
// a UTF-8 sequence.
func Truncate(s string, width int) string {
	limit := width - 1
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

func putField(dst []byte, s string) {
	copy(dst, Truncate(s, len(dst)))
}

func field(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	return string(src)
}
