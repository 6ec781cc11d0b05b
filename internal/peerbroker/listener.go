package peerbroker

import (
	"context"
	"net"
)

// Listen accepts inbound peer connections on addr (our configured
// listen port, announced to the server via SetWaitPort) and hands each
// one to AcceptInbound for handshake completion.
func (b *Broker) Listen(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				b.log.Warn("accept failed", "err", err)
				continue
			}
		}
		go b.AcceptInbound(conn)
	}
}
