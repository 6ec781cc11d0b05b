// Package transfer drives the download state machine: a queued
// request becomes a starting handshake, becomes a streamed byte copy
// with progress tracking, and ends complete or failed.
package transfer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/prxssh/slsk/internal/events"
)

type Status string

const (
	StatusQueued      Status = "Queued"
	StatusStarting    Status = "Starting"
	StatusDownloading Status = "Downloading"
	StatusComplete    Status = "Complete"
	StatusFailed      Status = "Failed"
)

type Config struct {
	DownloadDir string
	ChunkSize   int
	QueueSize   int
}

func WithDefaultConfig() *Config {
	return &Config{
		DownloadDir: getDefaultDownloadDir(),
		ChunkSize:   64 * 1024,
		QueueSize:   200,
	}
}

func getDefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if cwd, err := os.Getwd(); err == nil {
			return filepath.Join(cwd, "downloads")
		}
		return "./downloads"
	}
	return filepath.Join(home, ".local", "share", "slsk", "downloads")
}

// Download tracks one in-flight or completed transfer.
type Download struct {
	Username string
	Filename string
	DestPath string
	Filesize uint64
	Token    uint32

	mut        sync.Mutex
	status     Status
	downloaded uint64
}

func (d *Download) Status() Status {
	d.mut.Lock()
	defer d.mut.Unlock()
	return d.status
}

func (d *Download) setStatus(s Status) {
	d.mut.Lock()
	d.status = s
	d.mut.Unlock()
}

func (d *Download) addProgress(n uint64) {
	d.mut.Lock()
	d.downloaded += n
	d.mut.Unlock()
}

// Percentage returns completion in [0, 100]; a zero-size transfer
// reports 0 until it completes.
func (d *Download) Percentage() uint8 {
	d.mut.Lock()
	defer d.mut.Unlock()
	if d.Filesize == 0 {
		if d.status == StatusComplete {
			return 100
		}
		return 0
	}
	pct := float64(d.downloaded) / float64(d.Filesize) * 100
	if pct > 100 {
		pct = 100
	}
	return uint8(pct)
}

// Engine owns the set of active downloads and publishes progress onto
// the event bus as chunks land.
type Engine struct {
	cfg *Config
	log *slog.Logger
	bus *events.Bus

	mu        sync.RWMutex
	downloads map[string]*Download // keyed by destination path
	byToken   map[uint32]*Download
}

func New(cfg *Config, bus *events.Bus, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if cfg == nil {
		cfg = WithDefaultConfig()
	}
	return &Engine{
		cfg:       cfg,
		log:       log.With("component", "transfer"),
		bus:       bus,
		downloads: make(map[string]*Download),
		byToken:   make(map[uint32]*Download),
	}
}

// ByToken looks up the download queued under the given transfer token,
// used by the peer broker to hand a freshly opened FileTransfer
// connection to the matching Download once the handshake completes.
func (e *Engine) ByToken(token uint32) (*Download, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	dl, ok := e.byToken[token]
	return dl, ok
}

// Enqueue registers a new download against a remote filename, resolving
// any local path collision before returning the Download handle.
func (e *Engine) Enqueue(username, remoteFilename string, filesize uint64, token uint32) (*Download, error) {
	if err := os.MkdirAll(e.cfg.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}

	dest := e.resolveDestination(remoteFilename)
	dl := &Download{
		Username: username,
		Filename: remoteFilename,
		DestPath: dest,
		Filesize: filesize,
		Token:    token,
		status:   StatusQueued,
	}

	e.mu.Lock()
	e.downloads[dest] = dl
	e.byToken[token] = dl
	e.mu.Unlock()

	e.publish(dl)
	return dl, nil
}

// resolveDestination picks a non-colliding local path by appending
// " (n)" before the extension, same convention most desktop clients
// use for duplicate downloads.
func (e *Engine) resolveDestination(remoteFilename string) string {
	base := sanitizeFilename(filepath.Base(toForwardSlashes(remoteFilename)))
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]

	candidate := filepath.Join(e.cfg.DownloadDir, base)
	for n := 1; ; n++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(e.cfg.DownloadDir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
	}
}

func toForwardSlashes(s string) string {
	return strings.ReplaceAll(s, `\`, "/")
}

func sanitizeFilename(name string) string {
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return name
}

func (e *Engine) publish(dl *Download) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(events.NewUpdateDownload(dl.Filename, dl.Filesize, string(dl.Status()), dl.Percentage()))
}
