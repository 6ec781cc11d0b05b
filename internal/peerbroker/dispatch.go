package peerbroker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/prxssh/slsk/internal/catalog"
	"github.com/prxssh/slsk/pkg/retry"
)

var errAddressUnknown = errors.New("peerbroker: address unknown")

// dispatch pulls from all three intake queues and turns each request
// into a dialed TCP connection pushed onto the single FIFO work
// queue. Outbound and indirect requests still need a dial; direct
// requests already carry a live connection and pass straight through.
func (b *Broker) dispatch(ctx context.Context) {
	for {
		// Outbound requests are taken first, then indirect ones, before
		// falling through to an unbiased wait on all queues.
		select {
		case req := <-b.outboundCh:
			go b.dialOutbound(ctx, req)
			continue
		default:
		}
		select {
		case req := <-b.indirectCh:
			go b.dialIndirect(ctx, req)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return

		case req := <-b.outboundCh:
			go b.dialOutbound(ctx, req)

		case req := <-b.indirectCh:
			go b.dialIndirect(ctx, req)

		case item := <-b.directCh:
			b.enqueueWork(ctx, item)
		}
	}
}

func (b *Broker) dialOutbound(ctx context.Context, req outboundRequest) {
	desc, ok := b.awaitPeerAddress(ctx, req.Username)
	if !ok {
		b.log.Warn("no known address for outbound peer", "username", req.Username)
		return
	}

	addr := fmt.Sprintf("%s:%d", desc.IP.String(), desc.Port)
	conn, err := b.dial(ctx, addr)
	if err != nil {
		b.log.Debug("outbound dial failed", "username", req.Username, "addr", addr, "err", err)
		return
	}

	item := workItem{Conn: conn, Username: req.Username, Token: req.Token, Type: req.Type}
	if err := sendPeerInit(conn, req.Username, req.Type, req.Token); err != nil {
		b.log.Warn("PeerInit failed", "username", req.Username, "err", err)
		conn.Close()
		return
	}

	b.enqueueWork(ctx, item)
}

func (b *Broker) dialIndirect(ctx context.Context, req catalog.ConnectToPeer) {
	addr := fmt.Sprintf("%s:%d", req.IP.String(), req.Port)
	conn, err := b.dial(ctx, addr)
	if err != nil {
		b.log.Debug("indirect dial failed", "username", req.Username, "addr", addr, "err", err)
		return
	}

	if err := sendPierceFirewall(conn, req.Token); err != nil {
		b.log.Warn("PierceFirewall failed", "username", req.Username, "err", err)
		conn.Close()
		return
	}

	item := workItem{Conn: conn, Username: req.Username, Token: req.Token, Type: req.Type}
	b.enqueueWork(ctx, item)
}

// awaitPeerAddress polls userInfo for username, covering the race
// where an outbound request arrives before the GetPeerAddress reply
// that resolves it. It gives up once addressLookupTimeout elapses.
func (b *Broker) awaitPeerAddress(ctx context.Context, username string) (PeerDescriptor, bool) {
	if desc, ok := b.userInfo.Get(username); ok {
		return desc, true
	}

	lookupCtx, cancel := context.WithTimeout(ctx, b.addressLookupTimeout)
	defer cancel()

	attempts := int(b.addressLookupTimeout/(10*time.Millisecond)) + 1
	var desc PeerDescriptor
	err := retry.Do(lookupCtx, func(context.Context) error {
		var ok bool
		desc, ok = b.userInfo.Get(username)
		if !ok {
			return errAddressUnknown
		}
		return nil
	}, retry.WithLinearBackoff(attempts, 10*time.Millisecond)...)

	return desc, err == nil
}

func (b *Broker) dial(ctx context.Context, addr string) (net.Conn, error) {
	var conn net.Conn
	dialCtx, cancel := context.WithTimeout(ctx, b.dialTimeout)
	defer cancel()

	err := retry.Do(dialCtx, func(ctx context.Context) error {
		var dialErr error
		d := net.Dialer{}
		conn, dialErr = d.DialContext(ctx, "tcp", addr)
		return dialErr
	}, retry.WithMaxAttempts(3), retry.WithInitialDelay(200*time.Millisecond))
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (b *Broker) enqueueWork(ctx context.Context, item workItem) {
	select {
	case b.tcpQueue <- item:
	case <-ctx.Done():
		item.Conn.Close()
	default:
		b.log.Warn("tcp queue full; dropping connection", "username", item.Username)
		item.Conn.Close()
	}
}
