package catalog

import (
	"bytes"
	"net"
	"testing"

	"github.com/prxssh/slsk/internal/wire"
)

func TestLoginResponseSuccess(t *testing.T) {
	var e wire.Encoder
	e.PutBool(true)
	e.PutString("Welcome")
	e.PutIPv4(net.ParseIP("1.2.3.4"))
	e.PutString("somehash")
	e.PutBool(true)

	resp, err := DecodeLoginResponse(e.Bytes())
	if err != nil {
		t.Fatalf("DecodeLoginResponse: %v", err)
	}
	if !resp.Success || resp.Greet != "Welcome" || resp.Hash != "somehash" || !resp.IsSupporter {
		t.Fatalf("resp = %+v", resp)
	}
	if !resp.IP.Equal(net.ParseIP("1.2.3.4")) {
		t.Fatalf("ip = %v", resp.IP)
	}
}

func TestLoginResponseFailure(t *testing.T) {
	var e wire.Encoder
	e.PutBool(false)
	e.PutString("INVALIDUSERNAME")

	resp, err := DecodeLoginResponse(e.Bytes())
	if err != nil {
		t.Fatalf("DecodeLoginResponse: %v", err)
	}
	if resp.Success || resp.Reason != "INVALIDUSERNAME" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestParseConnectionTypeDefaultsToP2P(t *testing.T) {
	if got := ParseConnectionType("X"); got != ConnectionPeerToPeer {
		t.Fatalf("ParseConnectionType(X) = %v, want P", got)
	}
	if got := ParseConnectionType("F"); got != ConnectionFileTransfer {
		t.Fatalf("ParseConnectionType(F) = %v, want F", got)
	}
}

func TestConnectToPeerRoundTrip(t *testing.T) {
	var e wire.Encoder
	e.PutString("alice")
	e.PutString("F")
	e.PutIPv4(net.ParseIP("10.0.0.1"))
	e.PutUint32(2234)
	e.PutUint32(555)
	e.PutBool(false)

	got, err := DecodeConnectToPeer(e.Bytes())
	if err != nil {
		t.Fatalf("DecodeConnectToPeer: %v", err)
	}
	if got.Username != "alice" || got.Type != ConnectionFileTransfer || got.Port != 2234 || got.Token != 555 {
		t.Fatalf("got = %+v", got)
	}
}

func TestSharedFileListResponseRoundTrip(t *testing.T) {
	msg := SharedFileListResponse{
		Directories: []Directory{
			{
				Path: `music\album`,
				Files: []File{
					{Code: 1, Filename: "track1.mp3", Size: 4096, Extension: "mp3", Attributes: []FileAttribute{
						{Tag: AttrBitrate, Value: 320},
					}},
				},
			},
		},
	}

	framed := msg.Encode()
	frame, err := wire.ReadFrameU32(bytes.NewReader(framed))
	if err != nil {
		t.Fatalf("ReadFrameU32: %v", err)
	}
	if frame.Code != CodeSharedFileListResponse {
		t.Fatalf("code = %d, want %d", frame.Code, CodeSharedFileListResponse)
	}

	decoded, err := DecodeSharedFileListResponse(frame.Payload)
	if err != nil {
		t.Fatalf("DecodeSharedFileListResponse: %v", err)
	}
	if len(decoded.Directories) != 1 || len(decoded.Directories[0].Files) != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}
	if decoded.Directories[0].Files[0].Filename != "track1.mp3" {
		t.Fatalf("filename = %q", decoded.Directories[0].Files[0].Filename)
	}
}
