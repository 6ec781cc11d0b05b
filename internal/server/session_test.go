package server

import (
	"net"
	"testing"

	"github.com/prxssh/slsk/internal/catalog"
	"github.com/prxssh/slsk/internal/wire"
)

type fakeResolver struct {
	addresses []string
	indirect  []catalog.ConnectToPeer
}

func (f *fakeResolver) RecordPeerAddress(username string, ip net.IP, port uint32) {
	f.addresses = append(f.addresses, username)
}

func (f *fakeResolver) EnqueueIndirect(req catalog.ConnectToPeer) {
	f.indirect = append(f.indirect, req)
}

func TestPasswordHashMatchesWorkedExample(t *testing.T) {
	got := passwordHash("alice", "secret")
	want := "c4e31313222cf05fcdd1fc068af5570e"
	if got != want {
		t.Fatalf("passwordHash(alice, secret) = %s, want %s", got, want)
	}
}

func TestDispatchGetPeerAddressRecordsResolver(t *testing.T) {
	resolver := &fakeResolver{}
	s := New(Config{Address: "server.slsknet.org", Port: 2242}, nil, resolver, nil)

	payload := encodeGetPeerAddressResponseForTest("alice", net.ParseIP("127.0.0.1"), 2234)
	if err := s.dispatch(catalog.CodeGetPeerAddress, payload); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(resolver.addresses) != 1 || resolver.addresses[0] != "alice" {
		t.Fatalf("resolver.addresses = %v", resolver.addresses)
	}
}

func TestDispatchConnectToPeerEnqueuesIndirect(t *testing.T) {
	resolver := &fakeResolver{}
	s := New(Config{Address: "server.slsknet.org", Port: 2242}, nil, resolver, nil)

	payload := encodeConnectToPeerForTest("bob", "P", net.ParseIP("10.0.0.1"), 1, 42)
	if err := s.dispatch(catalog.CodeConnectToPeer, payload); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(resolver.indirect) != 1 || resolver.indirect[0].Username != "bob" {
		t.Fatalf("resolver.indirect = %v", resolver.indirect)
	}
}

func encodeGetPeerAddressResponseForTest(username string, ip net.IP, port uint32) []byte {
	var e wire.Encoder
	e.PutString(username)
	e.PutIPv4(ip)
	e.PutUint32(port)
	return e.Bytes()
}

func encodeConnectToPeerForTest(username, typ string, ip net.IP, port, token uint32) []byte {
	var e wire.Encoder
	e.PutString(username)
	e.PutString(typ)
	e.PutIPv4(ip)
	e.PutUint32(port)
	e.PutUint32(token)
	return e.Bytes()
}
