package catalog

import "github.com/prxssh/slsk/internal/wire"

// PeerInit opens a fresh peer connection that we dialed ourselves.
type PeerInit struct {
	Username string
	Type     ConnectionType
	Token    uint32
}

func (m PeerInit) Encode() []byte {
	var e wire.Encoder
	e.PutString(m.Username)
	e.PutString(string(m.Type))
	e.PutUint32(m.Token)
	return wire.FrameU8Code(CodePeerInit, e.Bytes())
}

func DecodePeerInit(payload []byte) (PeerInit, error) {
	d := wire.NewDecoder(payload)
	username, err := d.GetString()
	if err != nil {
		return PeerInit{}, err
	}
	typ, err := d.GetString()
	if err != nil {
		return PeerInit{}, err
	}
	token, err := d.GetUint32()
	if err != nil {
		return PeerInit{}, err
	}
	return PeerInit{Username: username, Type: ParseConnectionType(typ), Token: token}, nil
}

// PierceFirewall answers a server-brokered ConnectToPeer by announcing
// which firewall token this connection is completing.
type PierceFirewall struct {
	Token uint32
}

func (m PierceFirewall) Encode() []byte {
	var e wire.Encoder
	e.PutUint32(m.Token)
	return wire.FrameU8Code(CodePierceFirewall, e.Bytes())
}

func DecodePierceFirewall(payload []byte) (PierceFirewall, error) {
	d := wire.NewDecoder(payload)
	token, err := d.GetUint32()
	if err != nil {
		return PierceFirewall{}, err
	}
	return PierceFirewall{Token: token}, nil
}
