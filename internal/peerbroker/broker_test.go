package peerbroker

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prxssh/slsk/internal/catalog"
)

func TestEnqueueDirectDispatchesToWorker(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	b := New(Options{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// A peer asking for our shared file list, framed as code 4
		// with an empty payload.
		req := []byte{4, 0, 0, 0, 4, 0, 0, 0}
		client.Write(req)
		buf := make([]byte, 64)
		client.SetReadDeadline(time.Now().Add(2 * time.Second))
		client.Read(buf)
	}()

	b.EnqueueDirect(server, "someuser", 0, catalog.ConnectionPeerToPeer)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for worker to service the connection")
	}
}

func TestRecordPeerAddressStoresDescriptor(t *testing.T) {
	b := New(Options{})
	b.RecordPeerAddress("alice", net.ParseIP("127.0.0.1"), 2234)

	desc, ok := b.userInfo.Get("alice")
	if !ok || desc.Port != 2234 {
		t.Fatalf("expected recorded descriptor, got %+v ok=%v", desc, ok)
	}
}

func TestSetSharesMessageIsVisibleToWorkers(t *testing.T) {
	b := New(Options{})
	b.SetSharesMessage([]byte{1, 2, 3})
	if got := b.getSharesMessage(); len(got) != 3 {
		t.Fatalf("getSharesMessage = %v", got)
	}
}
