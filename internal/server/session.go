// Package server owns the single persistent connection to the
// SoulSeek server: login, room membership, user status, and search
// dispatch all ride over this one socket, mediated by the event bus.
package server

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prxssh/slsk/internal/catalog"
	"github.com/prxssh/slsk/internal/config"
	"github.com/prxssh/slsk/internal/events"
	"github.com/prxssh/slsk/internal/wire"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Address     string
	Port        uint32
	Username    string
	Password    string
	ListenPort  uint32
	DialTimeout time.Duration
}

// PeerAddressResolver is implemented by the peer broker so the session
// can hand off resolved addresses without importing that package.
type PeerAddressResolver interface {
	RecordPeerAddress(username string, ip net.IP, port uint32)
	EnqueueIndirect(req catalog.ConnectToPeer)
}

type Session struct {
	cfg  Config
	log  *slog.Logger
	bus  *events.Bus
	peer PeerAddressResolver

	conn      net.Conn
	connMu    sync.Mutex
	outbox    chan []byte
	cancel    context.CancelFunc
	closeOnce sync.Once

	loggedIn atomic.Bool
	restart  atomic.Bool
}

// Restart reports whether the last Quit event requested a restart
// rather than a full stop; valid once Run has returned.
func (s *Session) Restart() bool {
	return s.restart.Load()
}

func New(cfg Config, bus *events.Bus, peer PeerAddressResolver, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	return &Session{
		cfg:    cfg,
		log:    log.With("component", "server"),
		bus:    bus,
		peer:   peer,
		outbox: make(chan []byte, 128),
	}
}

// Run dials the server, logs in, and runs the paired read/write loops
// until ctx is cancelled or the connection drops.
func (s *Session) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Address, s.cfg.Port)

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	conn, err := (&net.Dialer{}).DialContext(dialCtx, "tcp", addr)
	cancel()
	if err != nil {
		return fmt.Errorf("dial server: %w", err)
	}
	s.conn = conn
	defer s.Close()

	ctx, stop := context.WithCancel(ctx)
	s.cancel = stop

	if err := s.login(); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.readLoop(gctx) })
	g.Go(func() error { return s.writeLoop(gctx) })
	g.Go(func() error { return s.commandLoop(gctx) })

	return g.Wait()
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

func (s *Session) login() error {
	req := catalog.LoginRequest{
		Username:     s.cfg.Username,
		Password:     s.cfg.Password,
		MajorVersion: catalog.MajorVersion,
		PasswordHash: passwordHash(s.cfg.Username, s.cfg.Password),
		MinorVersion: catalog.MinorVersion,
	}
	framed := req.Encode()

	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.DialTimeout))
	if _, err := s.conn.Write(framed); err != nil {
		return err
	}

	s.conn.SetReadDeadline(time.Now().Add(s.cfg.DialTimeout))
	frame, err := wire.ReadFrameU32(s.conn)
	if err != nil {
		return err
	}
	s.conn.SetReadDeadline(time.Time{})

	resp, err := catalog.DecodeLoginResponse(frame.Payload)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("server rejected login: %s", resp.Reason)
	}

	s.loggedIn.Store(true)
	s.Enqueue(catalog.EncodeSetWaitPort(s.cfg.ListenPort))

	if s.bus != nil {
		s.bus.Publish(events.NewLoginResult(true, resp.Reason))
	}
	return nil
}

// passwordHash is the md5 hex digest of username||password, the
// fourth field of LoginRequest the server checks against its own
// records before accepting the plaintext password fields.
func passwordHash(username, password string) string {
	sum := md5.Sum([]byte(username + password))
	return hex.EncodeToString(sum[:])
}

// Enqueue schedules an already-framed message for the write loop.
func (s *Session) Enqueue(framed []byte) {
	select {
	case s.outbox <- framed:
	default:
		s.log.Warn("server outbox full; dropping message")
	}
}

func (s *Session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case framed, ok := <-s.outbox:
			if !ok {
				return nil
			}
			s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if _, err := s.conn.Write(framed); err != nil {
				return fmt.Errorf("write: %w", err)
			}
		}
	}
}

func (s *Session) readLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		s.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		frame, err := wire.ReadFrameU32(s.conn)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if err := s.dispatch(frame.Code, frame.Payload); err != nil {
			s.log.Warn("failed to handle server message", "code", frame.Code, "err", err)
		}
	}
}

// commandLoop is the write task's subscription to the event bus: the
// UI never calls into the session directly, it only publishes events,
// and this loop is what translates the subset of them that reach the
// wire (§4.4's event-to-wire translation table).
func (s *Session) commandLoop(ctx context.Context) error {
	if s.bus == nil {
		<-ctx.Done()
		return nil
	}

	ch, cancel := s.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-ch:
			s.handleCommand(ev)
		}
	}
}

func (s *Session) handleCommand(ev events.Event) {
	switch e := ev.(type) {
	case events.TryLogin:
		config.Update(func(c *config.Config) {
			c.User.Name = e.Data.Username
			c.User.Password = e.Data.Password
		})
		s.cfg.Username = e.Data.Username
		s.cfg.Password = e.Data.Password
		req := catalog.LoginRequest{
			Username:     e.Data.Username,
			Password:     e.Data.Password,
			MajorVersion: catalog.MajorVersion,
			PasswordHash: passwordHash(e.Data.Username, e.Data.Password),
			MinorVersion: catalog.MinorVersion,
		}
		s.Enqueue(req.Encode())

	case events.Quit:
		s.restart.Store(e.Data.Restart)
		s.Close()

	case events.JoinRoom:
		s.JoinRoom(e.Data.Room)

	case events.LeaveRoom:
		s.LeaveRoom(e.Data.Room)

	case events.ChatroomMessage:
		if e.Data.Local {
			s.SendChatMessage(e.Data.Room, e.Data.Message)
		}

	case events.FileSearch:
		s.Search(e.Data.Token, e.Data.Query)

	case events.GetInfo:
		s.RequestPeerAddress(e.Data.Username)
	}
}
