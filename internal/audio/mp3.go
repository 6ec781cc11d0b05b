package audio

import (
	"errors"
	"os"
)

var mpegBitrateTableV1L3 = [16]uint32{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
var mpegSampleRateTableV1 = [4]uint32{44100, 48000, 32000, 0}

// parseMP3 scans for the first valid MPEG frame header to read its
// bitrate and sample rate, then estimates duration from file size and
// bitrate. It does not parse Xing/VBRI VBR headers; a file is
// reported as VBR when any frame header found while scanning the file
// has a bitrate different from the first one.
func parseMP3(path string) (Attributes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attributes{}, err
	}

	firstBitrate := uint32(0)
	sampleRate := uint32(0)
	vbr := false

	for i := 0; i+4 <= len(data); i++ {
		if data[i] != 0xFF || data[i+1]&0xE0 != 0xE0 {
			continue
		}
		versionBits := (data[i+1] >> 3) & 0x03
		layerBits := (data[i+1] >> 1) & 0x03
		if versionBits != 0x03 || layerBits != 0x01 { // MPEG1, Layer III
			continue
		}
		bitrateIdx := (data[i+2] >> 4) & 0x0F
		sampleIdx := (data[i+2] >> 2) & 0x03
		if bitrateIdx == 0 || bitrateIdx == 0x0F || sampleIdx == 0x03 {
			continue
		}

		br := mpegBitrateTableV1L3[bitrateIdx]
		sr := mpegSampleRateTableV1[sampleIdx]
		if br == 0 || sr == 0 {
			continue
		}

		if firstBitrate == 0 {
			firstBitrate = br
			sampleRate = sr
		} else if br != firstBitrate {
			vbr = true
			break
		}
	}

	if firstBitrate == 0 {
		return Attributes{}, errors.New("audio: no valid MPEG frame found")
	}

	duration := uint32(0)
	if firstBitrate > 0 {
		duration = uint32(uint64(len(data)) * 8 / 1000 / uint64(firstBitrate))
	}

	return Attributes{
		Bitrate:    firstBitrate,
		Duration:   duration,
		VBR:        vbr,
		SampleRate: sampleRate,
		BitDepth:   0,
	}, nil
}
