package audio

import (
	"encoding/binary"
	"errors"
	"os"
)

var errNotWAV = errors.New("audio: not a valid WAV file")

// parseWAV reads the RIFF/fmt/data chunks of a PCM WAV file. WAV is
// always constant bitrate, so VBR is always false.
func parseWAV(path string) (Attributes, error) {
	f, err := os.Open(path)
	if err != nil {
		return Attributes{}, err
	}
	defer f.Close()

	var riff [12]byte
	if _, err := f.Read(riff[:]); err != nil {
		return Attributes{}, err
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Attributes{}, errNotWAV
	}

	var sampleRate, byteRate, dataSize uint32
	var bitsPerSample uint16

	if _, err := f.Seek(12, 0); err != nil {
		return Attributes{}, err
	}

	for {
		var hdr [8]byte
		n, err := f.Read(hdr[:])
		if err != nil || n < 8 {
			break
		}
		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			fmtData := make([]byte, size)
			if _, err := f.Read(fmtData); err != nil || len(fmtData) < 16 {
				return Attributes{}, errNotWAV
			}
			sampleRate = binary.LittleEndian.Uint32(fmtData[4:8])
			byteRate = binary.LittleEndian.Uint32(fmtData[8:12])
			bitsPerSample = binary.LittleEndian.Uint16(fmtData[14:16])
		case "data":
			dataSize = size
			goto done
		default:
			if _, err := f.Seek(int64(size), 1); err != nil {
				return Attributes{}, err
			}
		}
	}
done:

	if byteRate == 0 {
		return Attributes{}, errNotWAV
	}

	duration := uint32(0)
	if byteRate > 0 {
		duration = dataSize / byteRate
	}

	return Attributes{
		Bitrate:    (byteRate * 8) / 1000,
		Duration:   duration,
		VBR:        false,
		SampleRate: sampleRate,
		BitDepth:   uint32(bitsPerSample),
	}, nil
}
