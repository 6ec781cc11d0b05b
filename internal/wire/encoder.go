// Package wire implements the SoulSeek binary framing: little-endian
// primitives, length-prefixed strings, and the four framed message
// families (server, peer-init, peer, distributed).
package wire

import (
	"bytes"
	"encoding/binary"
	"net"
)

// Encoder appends packed values to an in-memory buffer. It is reused
// across messages by calling Reset.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Reset() { e.buf.Reset() }

func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

func (e *Encoder) Len() int { return e.buf.Len() }

func (e *Encoder) PutUint8(v uint8) *Encoder {
	e.buf.WriteByte(v)
	return e
}

func (e *Encoder) PutUint32(v uint32) *Encoder {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
	return e
}

func (e *Encoder) PutUint64(v uint64) *Encoder {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
	return e
}

func (e *Encoder) PutBool(v bool) *Encoder {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
	return e
}

func (e *Encoder) PutString(s string) *Encoder {
	e.PutUint32(uint32(len(s)))
	e.buf.WriteString(s)
	return e
}

func (e *Encoder) PutBytes(b []byte) *Encoder {
	e.buf.Write(b)
	return e
}

// PutIPv4 packs a.b.c.d into the little-endian u32 wire form.
func (e *Encoder) PutIPv4(ip net.IP) *Encoder {
	v4 := ip.To4()
	if v4 == nil {
		v4 = net.IPv4zero.To4()
	}
	return e.PutUint32(binary.LittleEndian.Uint32(v4))
}

func PutList[T any](e *Encoder, items []T, put func(*Encoder, T)) {
	e.PutUint32(uint32(len(items)))
	for _, it := range items {
		put(e, it)
	}
}

// FrameU32Code wraps code||payload with a leading u32 length prefix,
// used by the server and peer families.
func FrameU32Code(code uint32, payload []byte) []byte {
	var out Encoder
	out.PutUint32(uint32(4 + len(payload)))
	out.PutUint32(code)
	out.PutBytes(payload)
	return out.Bytes()
}

// FrameU8Code wraps code||payload with a leading u32 length prefix and
// a single-byte code, used by the peer-init and distributed families.
func FrameU8Code(code uint8, payload []byte) []byte {
	var out Encoder
	out.PutUint32(uint32(1 + len(payload)))
	out.PutUint8(code)
	out.PutBytes(payload)
	return out.Bytes()
}
