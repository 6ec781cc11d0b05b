package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
)

var errNotAIFF = errors.New("audio: not a valid AIFF file")

// parseAIFF reads the COMM chunk of an AIFF container; files whose
// FORM type is AIFC are rejected. Unlike
// every other format in this package, AIFF's chunk headers and the
// COMM sample rate (an 80-bit IEEE extended float) are big-endian; it
// deliberately does not share internal/wire's little-endian Decoder.
func parseAIFF(path string) (Attributes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attributes{}, err
	}
	if len(data) < 12 || string(data[0:4]) != "FORM" || string(data[8:12]) != "AIFF" {
		return Attributes{}, errNotAIFF
	}

	pos := 12
	var channels, bitsPerSample uint16
	var numFrames uint32
	var sampleRate uint32
	found := false

	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := binary.BigEndian.Uint32(data[pos+4 : pos+8])
		start := pos + 8
		if start+int(size) > len(data) {
			break
		}

		if id == "COMM" && size >= 18 {
			c := data[start:]
			channels = binary.BigEndian.Uint16(c[0:2])
			numFrames = binary.BigEndian.Uint32(c[2:6])
			bitsPerSample = binary.BigEndian.Uint16(c[6:8])
			sampleRate = uint32(decodeIEEE80(c[8:18]))
			found = true
			break
		}

		pos = start + int(size)
		if size%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}

	if !found {
		return Attributes{}, errors.New("audio: COMM chunk not found")
	}

	duration := uint32(0)
	if sampleRate > 0 {
		duration = numFrames / sampleRate
	}

	byteRate := sampleRate * uint32(channels) * uint32(bitsPerSample) / 8
	bitrate := byteRate * 8 / 1000

	return Attributes{
		Bitrate:    bitrate,
		Duration:   duration,
		VBR:        false,
		SampleRate: sampleRate,
		BitDepth:   uint32(bitsPerSample),
	}, nil
}

// decodeIEEE80 decodes the 80-bit big-endian extended-precision float
// used by AIFF's COMM chunk for the sample rate.
func decodeIEEE80(b []byte) float64 {
	if len(b) < 10 {
		return 0
	}
	sign := 1.0
	if b[0]&0x80 != 0 {
		sign = -1.0
	}
	exponent := int(binary.BigEndian.Uint16(b[0:2]) & 0x7FFF)
	mantissa := binary.BigEndian.Uint64(b[2:10])

	if exponent == 0 && mantissa == 0 {
		return 0
	}

	return sign * float64(mantissa) * math.Pow(2, float64(exponent-16383-63))
}
