package wire

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"
)

// Decoder drains packed values from the front of a byte slice. Get*
// methods advance the cursor; they return a wrapped ErrShortBuffer if
// fewer bytes remain than the value requires.
type Decoder struct {
	b []byte
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{b: b}
}

// Remaining reports how many unread bytes are left.
func (d *Decoder) Remaining() int { return len(d.b) }

func (d *Decoder) need(n int) error {
	if len(d.b) < n {
		return fmt.Errorf("%w: need %d, have %d", ErrShortBuffer, n, len(d.b))
	}
	return nil
}

func (d *Decoder) GetUint8() (uint8, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.b[0]
	d.b = d.b[1:]
	return v, nil
}

func (d *Decoder) GetUint32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.b[:4])
	d.b = d.b[4:]
	return v, nil
}

func (d *Decoder) GetUint64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.b[:8])
	d.b = d.b[8:]
	return v, nil
}

func (d *Decoder) GetBool() (bool, error) {
	v, err := d.GetUint8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: byte %d", ErrInvalidBool, v)
	}
}

func (d *Decoder) GetString() (string, error) {
	n, err := d.GetUint32()
	if err != nil {
		return "", err
	}
	if err := d.need(int(n)); err != nil {
		return "", err
	}
	s := strings.ToValidUTF8(string(d.b[:n]), "�")
	d.b = d.b[n:]
	return s, nil
}

func (d *Decoder) GetBytes(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, d.b[:n])
	d.b = d.b[n:]
	return out, nil
}

// GetRest returns and consumes all remaining bytes.
func (d *Decoder) GetRest() []byte {
	out := d.b
	d.b = nil
	return out
}

func (d *Decoder) GetIPv4() (net.IP, error) {
	raw, err := d.GetUint32()
	if err != nil {
		return nil, err
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], raw)
	return net.IPv4(b[0], b[1], b[2], b[3]), nil
}

func GetList[T any](d *Decoder, get func(*Decoder) (T, error)) ([]T, error) {
	n, err := d.GetUint32()
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		v, err := get(d)
		if err != nil {
			return nil, fmt.Errorf("elem %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
