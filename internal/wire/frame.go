package wire

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"io"
)

// Frame is one length-prefixed protocol message: u32 len || code ||
// payload, where code is either a u32 (server/peer family) or a u8
// (peer-init/distributed family).
type Frame struct {
	Code    uint32
	Payload []byte
}

var (
	_ encoding.BinaryMarshaler   = (*Frame)(nil)
	_ encoding.BinaryUnmarshaler = (*Frame)(nil)
	_ io.WriterTo                = (*Frame)(nil)
)

// ReadFrameU32 reads one frame from r whose code is a little-endian u32.
func ReadFrameU32(r io.Reader) (*Frame, error) {
	return readFrame(r, 4)
}

// ReadFrameU8 reads one frame from r whose code is a single byte.
func ReadFrameU8(r io.Reader) (*Frame, error) {
	return readFrame(r, 1)
}

func readFrame(r io.Reader, codeWidth int) (*Frame, error) {
	var lp [4]byte
	if _, err := io.ReadFull(r, lp[:]); err != nil {
		return nil, err
	}

	length := binary.LittleEndian.Uint32(lp[:])
	if int(length) < codeWidth {
		return nil, fmt.Errorf("%w: length %d shorter than code width %d", ErrShortBuffer, length, codeWidth)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	var code uint32
	if codeWidth == 1 {
		code = uint32(buf[0])
	} else {
		code = binary.LittleEndian.Uint32(buf[:4])
	}

	return &Frame{Code: code, Payload: buf[codeWidth:]}, nil
}

// WriteFrameU32 writes f with a u32 code to w.
func (f *Frame) WriteFrameU32(w io.Writer) error {
	_, err := w.Write(FrameU32Code(f.Code, f.Payload))
	return err
}

// WriteFrameU8 writes f with a single-byte code to w.
func (f *Frame) WriteFrameU8(w io.Writer) error {
	_, err := w.Write(FrameU8Code(uint8(f.Code), f.Payload))
	return err
}

func (f *Frame) MarshalBinary() ([]byte, error) {
	return FrameU32Code(f.Code, f.Payload), nil
}

func (f *Frame) UnmarshalBinary(b []byte) error {
	d := NewDecoder(b)
	code, err := d.GetUint32()
	if err != nil {
		return err
	}
	f.Code = code
	f.Payload = d.GetRest()
	return nil
}

func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	b := FrameU32Code(f.Code, f.Payload)
	n, err := w.Write(b)
	return int64(n), err
}
