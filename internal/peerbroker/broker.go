// Package peerbroker serves three concurrent peer-connection intake
// paths (outbound dial, indirect hole-punch, inbound direct) into one
// FIFO worker pool, the same dialer/worker-pool split a BitTorrent
// swarm uses for its single connect queue, generalized here to three
// producers feeding one queue.
package peerbroker

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/prxssh/slsk/internal/catalog"
	"github.com/prxssh/slsk/internal/events"
	"github.com/prxssh/slsk/pkg/syncmap"
)

// PeerDescriptor is what the broker needs to dial a peer directly.
type PeerDescriptor struct {
	Username string
	IP       net.IP
	Port     uint32
}

type outboundRequest struct {
	Username string
	Token    uint32
	Type     catalog.ConnectionType
}

// workItem is one already-established connection ready for a worker
// to speak one message exchange over.
type workItem struct {
	Conn     net.Conn
	Username string
	Token    uint32
	Type     catalog.ConnectionType
}

type queuedFile struct {
	Filename string
	Filesize uint64
	HasSize  bool
}

type downloadUpdate struct {
	Status         string
	Percentage     uint8
	DownloadAll    bool
	HasDownloadAll bool
}

// Broker owns the three intake queues, the unified TCP work queue, and
// the shared maps the dispatcher and workers coordinate through.
type Broker struct {
	log *slog.Logger
	bus *events.Bus

	outboundCh chan outboundRequest
	indirectCh chan catalog.ConnectToPeer
	directCh   chan workItem
	tcpQueue   chan workItem

	userInfo        *syncmap.Map[string, PeerDescriptor]
	fileInfo        *syncmap.Map[uint32, []queuedFile]
	downloadUpdates *syncmap.Map[string, downloadUpdate]
	pendingBytes    *syncmap.Map[uint32, []byte]
	searchCounts    *syncmap.Map[uint32, int]

	sharesMu      sync.RWMutex
	sharesMessage []byte

	dialTimeout          time.Duration
	addressLookupTimeout time.Duration
	workers              int

	onFileTransfer func(conn net.Conn, username string, token uint32)
}

// Options configures a new Broker.
type Options struct {
	Logger               *slog.Logger
	Bus                  *events.Bus
	DialTimeout          time.Duration
	AddressLookupTimeout time.Duration
	Workers              int
	// OnFileTransfer is invoked when a worker pulls a work item whose
	// connection type is FileTransfer; it hands the stream off to the
	// transfer engine.
	OnFileTransfer func(conn net.Conn, username string, token uint32)
}

func New(opts Options) *Broker {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 256
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.AddressLookupTimeout <= 0 {
		opts.AddressLookupTimeout = time.Second
	}

	return &Broker{
		log:                  opts.Logger.With("component", "peerbroker"),
		bus:                  opts.Bus,
		outboundCh:           make(chan outboundRequest, 256),
		indirectCh:           make(chan catalog.ConnectToPeer, 256),
		directCh:             make(chan workItem, 256),
		tcpQueue:             make(chan workItem, 256),
		userInfo:             syncmap.New[string, PeerDescriptor](),
		fileInfo:             syncmap.New[uint32, []queuedFile](),
		downloadUpdates:      syncmap.New[string, downloadUpdate](),
		pendingBytes:         syncmap.New[uint32, []byte](),
		searchCounts:         syncmap.New[uint32, int](),
		dialTimeout:          opts.DialTimeout,
		addressLookupTimeout: opts.AddressLookupTimeout,
		workers:              opts.Workers,
		onFileTransfer:       opts.OnFileTransfer,
	}
}

// Run starts the dispatcher, the worker pool, and the bus subscription
// that feeds the broker its UI-originated commands; it blocks until
// ctx is cancelled.
func (b *Broker) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		b.dispatch(ctx)
	}()

	if b.bus != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.commandLoop(ctx)
		}()
	}

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.work(ctx)
		}()
	}

	wg.Wait()
	return nil
}

// commandLoop is the broker's subscription to the event bus: the UI
// never calls EnqueueOutbound/QueueMessage directly, it publishes
// Connect/QueueMessage events and this loop performs the translation
// (§4.4's event-to-wire-effect table, the rows owned by the broker
// rather than the server session).
func (b *Broker) commandLoop(ctx context.Context) {
	ch, cancel := b.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			b.handleCommand(ev)
		}
	}
}

func (b *Broker) handleCommand(ev events.Event) {
	switch e := ev.(type) {
	case events.Connect:
		typ := catalog.ParseConnectionType(e.Data.Type)
		if _, ok := b.userInfo.Get(e.Data.Username); !ok {
			b.bus.Publish(events.NewGetInfo(e.Data.Username))
		}
		b.EnqueueOutbound(e.Data.Username, e.Data.Token, typ)

	case events.QueueMessage:
		b.QueueMessage(e.Data.Token, e.Data.Bytes)
	}
}

// EnqueueOutbound is the UI/server-session's entry point for opening a
// connection to username for the given connection type.
func (b *Broker) EnqueueOutbound(username string, token uint32, typ catalog.ConnectionType) {
	select {
	case b.outboundCh <- outboundRequest{Username: username, Token: token, Type: typ}:
	default:
		b.log.Warn("outbound queue full; dropping request", "username", username)
	}
}

// EnqueueIndirect is fed by the server session when it receives a
// ConnectToPeer frame telling us to dial a peer back.
func (b *Broker) EnqueueIndirect(req catalog.ConnectToPeer) {
	select {
	case b.indirectCh <- req:
	default:
		b.log.Warn("indirect queue full; dropping request", "username", req.Username)
	}
}

// EnqueueDirect is fed by the inbound listener after completing the
// PeerInit handshake on a freshly accepted connection.
func (b *Broker) EnqueueDirect(conn net.Conn, username string, token uint32, typ catalog.ConnectionType) {
	item := workItem{Conn: conn, Username: username, Token: token, Type: typ}
	select {
	case b.directCh <- item:
	default:
		b.log.Warn("direct queue full; dropping connection", "username", username)
		conn.Close()
	}
}

// RecordPeerAddress feeds the broker a resolved peer address, typically
// learned from a server GetPeerAddress response.
func (b *Broker) RecordPeerAddress(username string, ip net.IP, port uint32) {
	b.userInfo.Put(username, PeerDescriptor{Username: username, IP: ip, Port: port})
}

// QueueMessage appends bytes to be flushed to the peer holding token
// before the worker reads its reply.
func (b *Broker) QueueMessage(token uint32, payload []byte) {
	existing, _ := b.pendingBytes.Get(token)
	b.pendingBytes.Put(token, append(existing, payload...))
}

// UpdateDownload records the latest state for a named download in
// downloadUpdates. Nothing in the broker or the transfer engine reads
// that map back.
func (b *Broker) UpdateDownload(filename, status string, pct uint8, downloadAll bool, hasDownloadAll bool) {
	b.downloadUpdates.Put(filename, downloadUpdate{
		Status: status, Percentage: pct, DownloadAll: downloadAll, HasDownloadAll: hasDownloadAll,
	})
}

// SetSharesMessage caches the pre-serialized SharedFileListResponse
// frame sent in reply to SharedFileListRequest. It is not called
// after an indexing pass; until it is set, replyShares sends an empty
// list.
func (b *Broker) SetSharesMessage(framed []byte) {
	b.sharesMu.Lock()
	b.sharesMessage = framed
	b.sharesMu.Unlock()
}

func (b *Broker) getSharesMessage() []byte {
	b.sharesMu.RLock()
	defer b.sharesMu.RUnlock()
	return b.sharesMessage
}
