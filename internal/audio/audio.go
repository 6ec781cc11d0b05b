// Package audio parses just enough of a handful of audio containers
// to populate the share index's per-file attributes (bitrate,
// duration, VBR, sample rate, bit depth). Parsing is best-effort: a
// format that cannot be read returns an error and the caller leaves
// the file's metadata unfilled rather than failing the whole index.
package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Attributes mirrors the FileAttribute tags the wire protocol expects
// for a shared file.
type Attributes struct {
	Bitrate    uint32
	Duration   uint32
	VBR        bool
	SampleRate uint32
	BitDepth   uint32
}

// Parser extracts Attributes from a file on disk.
type Parser interface {
	Parse(path string) (Attributes, error)
}

type ParserFunc func(path string) (Attributes, error)

func (f ParserFunc) Parse(path string) (Attributes, error) { return f(path) }

var registry = map[string]Parser{
	".mp3":  ParserFunc(parseMP3),
	".flac": ParserFunc(parseFLAC),
	".ogg":  ParserFunc(parseOGG),
	".wav":  ParserFunc(parseWAV),
	".aiff": ParserFunc(parseAIFF),
	".aif":  ParserFunc(parseAIFF),
}

// ErrUnsupportedFormat is returned for extensions with no registered parser.
var ErrUnsupportedFormat = fmt.Errorf("audio: unsupported format")

// ParserFor returns the registered parser for path's extension, or
// ErrUnsupportedFormat if none is registered.
func ParserFor(path string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := registry[ext]
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	return p, nil
}

// Parse dispatches path to its format's parser by extension.
func Parse(path string) (Attributes, error) {
	p, err := ParserFor(path)
	if err != nil {
		return Attributes{}, err
	}
	return p.Parse(path)
}
