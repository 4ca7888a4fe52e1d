package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderReadU32(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
	}

	for _, tt := range tests {
		r := NewReader(bytes.NewReader(tt.encoded))
		got, err := r.ReadU32()
		if err != nil {
			t.Errorf("ReadU32(%v): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadU32(%v): got %d, want %d", tt.encoded, got, tt.want)
		}
	}
}

func TestReaderReadS32(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    int32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, -1},
		{[]byte{0x3f}, 63},
		{[]byte{0x40}, -64},
		{[]byte{0xc0, 0x00}, 64},
	}

	for _, tt := range tests {
		r := NewReader(bytes.NewReader(tt.encoded))
		got, err := r.ReadS32()
		if err != nil {
			t.Errorf("ReadS32(%v): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadS32(%v): got %d, want %d", tt.encoded, got, tt.want)
		}
	}
}

func TestWriterReadRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU32(624485)
	w.WriteS32(-65)
	w.WriteS64(-1)
	w.WriteName("hook")
	w.WriteF32(1.5)
	w.WriteF64(2.25)

	r := NewReader(bytes.NewReader(w.Bytes()))
	if got, err := r.ReadU32(); err != nil || got != 624485 {
		t.Fatalf("ReadU32: got (%d, %v)", got, err)
	}
	if got, err := r.ReadS32(); err != nil || got != -65 {
		t.Fatalf("ReadS32: got (%d, %v)", got, err)
	}
	if got, err := r.ReadS64(); err != nil || got != -1 {
		t.Fatalf("ReadS64: got (%d, %v)", got, err)
	}
	if got, err := r.ReadName(); err != nil || got != "hook" {
		t.Fatalf("ReadName: got (%q, %v)", got, err)
	}
	if got, err := r.ReadF32(); err != nil || got != 1.5 {
		t.Fatalf("ReadF32: got (%v, %v)", got, err)
	}
	if got, err := r.ReadF64(); err != nil || got != 2.25 {
		t.Fatalf("ReadF64: got (%v, %v)", got, err)
	}
}

func TestReaderReadNameInvalidUTF8(t *testing.T) {
	data := []byte{0x02, 0xff, 0xfe}
	r := NewReader(bytes.NewReader(data))
	if _, err := r.ReadName(); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestReaderU32Overflow(t *testing.T) {
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	r := NewReader(bytes.NewReader(data))
	if _, err := r.ReadU32(); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestReaderWrapError(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02}))
	r.ReadByte()
	r.ReadByte()

	err := r.WrapError("test section", errors.New("boom"))
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Position != 2 {
		t.Errorf("Position: got %d, want 2", pe.Position)
	}
	if pe.Section != "test section" {
		t.Errorf("Section: got %q", pe.Section)
	}
}
