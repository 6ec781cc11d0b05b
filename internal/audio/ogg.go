package audio

import (
	"encoding/binary"
	"errors"
	"os"
)

var errNotOGG = errors.New("audio: not a valid Ogg/Vorbis file")

// parseOGG reads the Vorbis identification header out of the first
// Ogg page to recover sample rate and nominal bitrate, then estimates
// duration from the file size. Vorbis is inherently variable bitrate.
func parseOGG(path string) (Attributes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attributes{}, err
	}
	if len(data) < 27+7 || string(data[0:4]) != "OggS" {
		return Attributes{}, errNotOGG
	}

	segCount := int(data[26])
	headerLen := 27 + segCount
	if len(data) < headerLen {
		return Attributes{}, errNotOGG
	}

	pageDataStart := headerLen
	if len(data) < pageDataStart+30 || string(data[pageDataStart+1:pageDataStart+7]) != "vorbis" {
		return Attributes{}, errNotOGG
	}

	vh := data[pageDataStart+7:]
	sampleRate := binary.LittleEndian.Uint32(vh[5:9])
	nominalBitrate := binary.LittleEndian.Uint32(vh[13:17])

	bitrate := nominalBitrate / 1000
	duration := uint32(0)
	if bitrate > 0 {
		duration = uint32(uint64(len(data)) * 8 / 1000 / uint64(bitrate))
	}

	return Attributes{
		Bitrate:    bitrate,
		Duration:   duration,
		VBR:        true,
		SampleRate: sampleRate,
		BitDepth:   0,
	}, nil
}
