package wire

import (
	"bytes"
	"net"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var e Encoder
	e.PutUint8(7).
		PutUint32(1234).
		PutUint64(9999999999).
		PutBool(true).
		PutString("hunter2").
		PutIPv4(net.ParseIP("127.0.0.1"))

	d := NewDecoder(e.Bytes())

	if v, err := d.GetUint8(); err != nil || v != 7 {
		t.Fatalf("GetUint8 = (%d, %v)", v, err)
	}
	if v, err := d.GetUint32(); err != nil || v != 1234 {
		t.Fatalf("GetUint32 = (%d, %v)", v, err)
	}
	if v, err := d.GetUint64(); err != nil || v != 9999999999 {
		t.Fatalf("GetUint64 = (%d, %v)", v, err)
	}
	if v, err := d.GetBool(); err != nil || !v {
		t.Fatalf("GetBool = (%v, %v)", v, err)
	}
	if v, err := d.GetString(); err != nil || v != "hunter2" {
		t.Fatalf("GetString = (%q, %v)", v, err)
	}
	if ip, err := d.GetIPv4(); err != nil || !ip.Equal(net.ParseIP("127.0.0.1")) {
		t.Fatalf("GetIPv4 = (%v, %v)", ip, err)
	}
	if d.Remaining() != 0 {
		t.Fatalf("Remaining = %d, want 0", d.Remaining())
	}
}

func TestDecoderShortBufferErrors(t *testing.T) {
	d := NewDecoder([]byte{1, 2})
	if _, err := d.GetUint32(); err == nil {
		t.Fatal("expected ErrShortBuffer on truncated uint32")
	}
}

func TestDecoderInvalidBool(t *testing.T) {
	d := NewDecoder([]byte{5})
	if _, err := d.GetBool(); err == nil {
		t.Fatal("expected ErrInvalidBool for byte 5")
	}
}

func TestGetStringReplacesInvalidUTF8(t *testing.T) {
	raw := []byte{0xff, 0xfe, 'o', 'k'}
	var e Encoder
	e.PutUint32(uint32(len(raw)))
	buf := append(e.Bytes(), raw...)

	d := NewDecoder(buf)
	got, err := d.GetString()
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	want := "�ok"
	if got != want {
		t.Fatalf("GetString = %q, want %q", got, want)
	}
}

func TestListRoundTrip(t *testing.T) {
	var e Encoder
	PutList(&e, []string{"a", "bb", "ccc"}, func(e *Encoder, s string) { e.PutString(s) })

	d := NewDecoder(e.Bytes())
	got, err := GetList(d, (*Decoder).GetString)
	if err != nil {
		t.Fatalf("GetList error: %v", err)
	}
	want := []string{"a", "bb", "ccc"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("elem %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFrameU32RoundTrip(t *testing.T) {
	payload := []byte("payload bytes")
	framed := FrameU32Code(42, payload)

	frame, err := ReadFrameU32(bytes.NewReader(framed))
	if err != nil {
		t.Fatalf("ReadFrameU32: %v", err)
	}
	if frame.Code != 42 || !bytes.Equal(frame.Payload, payload) {
		t.Fatalf("frame = %+v", frame)
	}
}

func TestFrameU8RoundTrip(t *testing.T) {
	payload := []byte("pierce")
	framed := FrameU8Code(0, payload)

	frame, err := ReadFrameU8(bytes.NewReader(framed))
	if err != nil {
		t.Fatalf("ReadFrameU8: %v", err)
	}
	if frame.Code != 0 || !bytes.Equal(frame.Payload, payload) {
		t.Fatalf("frame = %+v", frame)
	}
}
