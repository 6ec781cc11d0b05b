// Package client wires the server session, peer broker, share index,
// token arena, and event bus together into the single object bound to
// the Wails desktop shell.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prxssh/slsk/internal/catalog"
	"github.com/prxssh/slsk/internal/config"
	"github.com/prxssh/slsk/internal/events"
	"github.com/prxssh/slsk/internal/peerbroker"
	"github.com/prxssh/slsk/internal/server"
	"github.com/prxssh/slsk/internal/shareindex"
	"github.com/prxssh/slsk/internal/token"
	"github.com/prxssh/slsk/internal/transfer"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

type Client struct {
	log *slog.Logger
	ctx context.Context

	bus      *events.Bus
	tokens   *token.Arena
	session  *server.Session
	broker   *peerbroker.Broker
	index    *shareindex.Index
	xfer     *transfer.Engine
	username string

	mu      sync.RWMutex
	running bool
}

func NewClient() (*Client, error) {
	return &Client{
		log: slog.Default(),
		ctx: context.Background(),
		bus: events.NewBus(),
	}, nil
}

func (c *Client) Startup(ctx context.Context) {
	c.ctx = ctx
}

// Connect loads configuration, opens the share index, and starts the
// server session and peer broker. It blocks while the server session
// runs: it returns an error if the dial or login fails, and otherwise
// returns when the session's read/write loops end. The broker and
// listener goroutines it starts are not stopped by its return.
func (c *Client) Connect(configPath string) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already connected")
	}
	c.running = true
	c.mu.Unlock()

	if err := config.Init(configPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := config.Load()

	if err := os.MkdirAll(cfg.Index.SaveDir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	idx, err := shareindex.Open(filepath.Join(cfg.Index.SaveDir, "index.db"), c.log)
	if err != nil {
		return fmt.Errorf("open share index: %w", err)
	}
	c.index = idx

	c.tokens = token.NewArena(5 * time.Minute)
	c.xfer = transfer.New(&transfer.Config{
		DownloadDir: cfg.Index.SaveDir,
		ChunkSize:   cfg.ChunkSize,
		QueueSize:   200,
	}, c.bus, c.log)

	c.broker = peerbroker.New(peerbroker.Options{
		Logger:      c.log,
		Bus:         c.bus,
		DialTimeout: cfg.DialTimeout,
		AddressLookupTimeout: cfg.AddressLookupTimeout,
		Workers:     cfg.PeerWorkers,
		OnFileTransfer: func(conn net.Conn, username string, token uint32) {
			dl, ok := c.xfer.ByToken(token)
			if !ok {
				c.log.Warn("file transfer connection with no matching download", "username", username, "token", token)
				conn.Close()
				return
			}
			if err := c.xfer.Run(c.ctx, dl, conn); err != nil {
				c.log.Error("transfer failed", "username", username, "err", err)
			}
		},
	})

	c.username = cfg.User.Name

	c.session = server.New(server.Config{
		Address:     cfg.Server.Address,
		Port:        uint32(cfg.Server.Port),
		Username:    cfg.User.Name,
		Password:    cfg.User.Password,
		ListenPort:  uint32(cfg.User.Port),
		DialTimeout: cfg.DialTimeout,
	}, c.bus, c.broker, c.log)

	go func() {
		if err := c.broker.Run(c.ctx); err != nil {
			c.log.Error("peer broker stopped", "err", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.User.Port)
		if err := c.broker.Listen(c.ctx, addr); err != nil {
			c.log.Error("peer listener stopped", "err", err)
		}
	}()

	if err := c.session.Run(c.ctx); err != nil {
		return fmt.Errorf("server session: %w", err)
	}
	return nil
}

// Disconnect tears down the server session; the broker's worker pool
// is stopped by the shared context cancellation on shutdown.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Close()
	}
	if c.index != nil {
		c.index.Close()
	}
	c.running = false
}

// Search issues a global file search and returns the token the caller
// should correlate incoming SearchResults events against. Like every
// other UI-originated command, the request reaches the wire only by
// way of the event bus, never through a direct session call.
func (c *Client) Search(query string) uint32 {
	tok := c.tokens.Reserve()
	c.bus.Publish(events.NewFileSearch(tok, query))
	return tok
}

// JoinRoom requests membership in a chatroom.
func (c *Client) JoinRoom(room string) {
	c.bus.Publish(events.NewJoinRoom(room))
}

// SendChatMessage sends a chat message to a room.
func (c *Client) SendChatMessage(room, message string) {
	c.bus.Publish(events.NewChatroomMessage(room, c.username, message, true))
}

// AddRootFolder registers a new shared folder and re-indexes it.
func (c *Client) AddRootFolder(path, alias string) error {
	return c.index.IndexRoot(shareindex.RootFolder{Path: path, Alias: alias})
}

// RequestDownload asks a peer for a file and queues the local-side
// transfer tracking; the actual byte stream is handed to the
// transfer engine once the peer broker completes the
// TransferRequest/TransferResponse handshake.
func (c *Client) RequestDownload(username, remoteFilename string, filesize uint64) error {
	tok := c.tokens.Reserve()
	if _, err := c.xfer.Enqueue(username, remoteFilename, filesize, tok); err != nil {
		return err
	}
	c.bus.Publish(events.NewConnect(username, tok, string(catalog.ConnectionFileTransfer)))
	return nil
}

// SelectDownloadDirectory opens the native folder picker, same
// pattern used throughout the desktop shell for path selection.
func (c *Client) SelectDownloadDirectory() (string, error) {
	path, err := runtime.OpenDirectoryDialog(c.ctx, runtime.OpenDialogOptions{
		Title: "Select Download Directory",
	})
	if err != nil {
		return "", err
	}
	return path, nil
}
