package peerbroker

import (
	"context"
	"net"
	"time"

	"github.com/prxssh/slsk/internal/catalog"
	"github.com/prxssh/slsk/internal/wire"
)

func sendPeerInit(conn net.Conn, username string, typ catalog.ConnectionType, token uint32) error {
	payload := catalog.PeerInit{Username: username, Type: typ, Token: token}.Encode()
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err := conn.Write(payload)
	return err
}

func sendPierceFirewall(conn net.Conn, token uint32) error {
	payload := catalog.PierceFirewall{Token: token}.Encode()
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err := conn.Write(payload)
	return err
}

// AcceptInbound completes the responding side of the peer handshake
// on a freshly accepted connection: the code of the first frame (a
// single byte after the u32 length) is always PeerInit or
// PierceFirewall, which tells us whether
// the remote is opening a new connection or piercing our firewall in
// response to a ConnectToPeer we sent through the server.
//
// An unsolicited PierceFirewall (one whose token we never reserved)
// is logged and the connection closed rather than handed to a worker.
func (b *Broker) AcceptInbound(conn net.Conn) {
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	frame, err := wire.ReadFrameU8(conn)
	if err != nil {
		b.log.Debug("failed to read peer-init frame", "err", err)
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})
	code, payload := uint8(frame.Code), frame.Payload

	switch code {
	case catalog.CodePeerInit:
		init, err := catalog.DecodePeerInit(payload)
		if err != nil {
			b.log.Debug("malformed PeerInit", "err", err)
			conn.Close()
			return
		}
		b.EnqueueDirect(conn, init.Username, init.Token, init.Type)

	case catalog.CodePierceFirewall:
		pierce, err := catalog.DecodePierceFirewall(payload)
		if err != nil {
			b.log.Debug("malformed PierceFirewall", "err", err)
			conn.Close()
			return
		}
		if !b.isExpectedToken(pierce.Token) {
			b.log.Info("unsolicited PierceFirewall, closing", "token", pierce.Token)
			conn.Close()
			return
		}
		b.enqueueWork(context.Background(), workItem{Conn: conn, Token: pierce.Token})

	default:
		b.log.Debug("unexpected peer-init code", "code", code)
		conn.Close()
	}
}

func (b *Broker) isExpectedToken(token uint32) bool {
	_, ok := b.pendingBytes.Get(token)
	return ok
}
