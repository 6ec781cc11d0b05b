package catalog

import (
	"net"

	"github.com/prxssh/slsk/internal/wire"
)

// LoginRequest is the asymmetric request half of code 1: the response
// carries entirely different fields on success vs failure.
type LoginRequest struct {
	Username     string
	Password     string
	MajorVersion uint32
	PasswordHash string
	MinorVersion uint32
}

func (r LoginRequest) Encode() []byte {
	var e wire.Encoder
	e.PutString(r.Username)
	e.PutString(r.Password)
	e.PutUint32(r.MajorVersion)
	e.PutString(r.PasswordHash)
	e.PutUint32(r.MinorVersion)
	return wire.FrameU32Code(CodeLogin, e.Bytes())
}

type LoginResponse struct {
	Success     bool
	Greet       string
	IP          net.IP
	Hash        string
	IsSupporter bool
	Reason      string
}

func DecodeLoginResponse(payload []byte) (LoginResponse, error) {
	d := wire.NewDecoder(payload)

	success, err := d.GetBool()
	if err != nil {
		return LoginResponse{}, err
	}
	if !success {
		reason, err := d.GetString()
		if err != nil {
			return LoginResponse{}, err
		}
		return LoginResponse{Success: false, Reason: reason}, nil
	}

	greet, err := d.GetString()
	if err != nil {
		return LoginResponse{}, err
	}
	ip, err := d.GetIPv4()
	if err != nil {
		return LoginResponse{}, err
	}
	hash, err := d.GetString()
	if err != nil {
		return LoginResponse{}, err
	}
	// IsSupporter trails on some server builds; treat as present-if-any-bytes-remain.
	isSupporter := false
	if d.Remaining() > 0 {
		isSupporter, err = d.GetBool()
		if err != nil {
			return LoginResponse{}, err
		}
	}

	return LoginResponse{
		Success:     true,
		Greet:       greet,
		IP:          ip,
		Hash:        hash,
		IsSupporter: isSupporter,
	}, nil
}

func EncodeSetWaitPort(port uint32) []byte {
	var e wire.Encoder
	e.PutUint32(port)
	return wire.FrameU32Code(CodeSetWaitPort, e.Bytes())
}

func EncodeGetPeerAddressRequest(username string) []byte {
	var e wire.Encoder
	e.PutString(username)
	return wire.FrameU32Code(CodeGetPeerAddress, e.Bytes())
}

type GetPeerAddressResponse struct {
	Username      string
	IP            net.IP
	Port          uint32
	FirewallToken uint32
}

func DecodeGetPeerAddressResponse(payload []byte) (GetPeerAddressResponse, error) {
	d := wire.NewDecoder(payload)
	username, err := d.GetString()
	if err != nil {
		return GetPeerAddressResponse{}, err
	}
	ip, err := d.GetIPv4()
	if err != nil {
		return GetPeerAddressResponse{}, err
	}
	port, err := d.GetUint32()
	if err != nil {
		return GetPeerAddressResponse{}, err
	}
	firewall := uint32(0)
	if d.Remaining() >= 4 {
		firewall, _ = d.GetUint32()
	}
	return GetPeerAddressResponse{Username: username, IP: ip, Port: port, FirewallToken: firewall}, nil
}

// SayChatroom is symmetric: the same schema serializes outbound chat
// and deserializes inbound chat.
type SayChatroom struct {
	Room     string
	Username string
	Message  string
}

func (m SayChatroom) EncodeSend() []byte {
	var e wire.Encoder
	e.PutString(m.Room)
	e.PutString(m.Message)
	return wire.FrameU32Code(CodeSayChatroom, e.Bytes())
}

func DecodeSayChatroom(payload []byte) (SayChatroom, error) {
	d := wire.NewDecoder(payload)
	room, err := d.GetString()
	if err != nil {
		return SayChatroom{}, err
	}
	username, err := d.GetString()
	if err != nil {
		return SayChatroom{}, err
	}
	message, err := d.GetString()
	if err != nil {
		return SayChatroom{}, err
	}
	return SayChatroom{Room: room, Username: username, Message: message}, nil
}

func EncodeJoinRoom(room string) []byte {
	var e wire.Encoder
	e.PutString(room)
	return wire.FrameU32Code(CodeJoinRoom, e.Bytes())
}

func EncodeLeaveRoom(room string) []byte {
	var e wire.Encoder
	e.PutString(room)
	return wire.FrameU32Code(CodeLeaveRoom, e.Bytes())
}

type RoomUser struct {
	Username string
	Status   UserStatus
	AvgSpeed uint32
	UploadNum uint64
	NumFiles  uint32
	NumDirs   uint32
}

// JoinRoomResponse ends with an optional {owner, operators} tail iff
// the payload still has bytes left once the core fields are consumed;
// presence is determined from remaining length, never a sentinel.
type JoinRoomResponse struct {
	Room      string
	Users     []RoomUser
	Owner     string
	Operators []string
	HasOwner  bool
}

func DecodeJoinRoomResponse(payload []byte) (JoinRoomResponse, error) {
	d := wire.NewDecoder(payload)
	room, err := d.GetString()
	if err != nil {
		return JoinRoomResponse{}, err
	}

	usernames, err := wire.GetList(d, (*wire.Decoder).GetString)
	if err != nil {
		return JoinRoomResponse{}, err
	}
	statuses, err := wire.GetList(d, func(dd *wire.Decoder) (UserStatus, error) {
		v, err := dd.GetUint32()
		return ParseUserStatus(v), err
	})
	if err != nil {
		return JoinRoomResponse{}, err
	}
	speeds, err := wire.GetList(d, (*wire.Decoder).GetUint32)
	if err != nil {
		return JoinRoomResponse{}, err
	}
	uploadNums, err := wire.GetList(d, (*wire.Decoder).GetUint64)
	if err != nil {
		return JoinRoomResponse{}, err
	}
	numFiles, err := wire.GetList(d, (*wire.Decoder).GetUint32)
	if err != nil {
		return JoinRoomResponse{}, err
	}
	numDirs, err := wire.GetList(d, (*wire.Decoder).GetUint32)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	users := make([]RoomUser, len(usernames))
	for i, name := range usernames {
		u := RoomUser{Username: name}
		if i < len(statuses) {
			u.Status = statuses[i]
		}
		if i < len(speeds) {
			u.AvgSpeed = speeds[i]
		}
		if i < len(uploadNums) {
			u.UploadNum = uploadNums[i]
		}
		if i < len(numFiles) {
			u.NumFiles = numFiles[i]
		}
		if i < len(numDirs) {
			u.NumDirs = numDirs[i]
		}
		users[i] = u
	}

	resp := JoinRoomResponse{Room: room, Users: users}
	if d.Remaining() > 0 {
		owner, err := d.GetString()
		if err != nil {
			return resp, nil // tail is best-effort
		}
		operators, err := wire.GetList(d, (*wire.Decoder).GetString)
		if err != nil {
			return resp, nil
		}
		resp.Owner = owner
		resp.Operators = operators
		resp.HasOwner = true
	}

	return resp, nil
}

func EncodeFileSearch(token uint32, query string) []byte {
	var e wire.Encoder
	e.PutUint32(token)
	e.PutString(query)
	return wire.FrameU32Code(CodeFileSearch, e.Bytes())
}

func EncodeSetStatus(status UserStatus) []byte {
	var e wire.Encoder
	e.PutUint32(uint32(status))
	return wire.FrameU32Code(CodeSetStatus, e.Bytes())
}

func EncodeSharedFoldersFiles(dirCount, fileCount uint32) []byte {
	var e wire.Encoder
	e.PutUint32(dirCount)
	e.PutUint32(fileCount)
	return wire.FrameU32Code(CodeSharedFoldersFiles, e.Bytes())
}

type ConnectToPeer struct {
	Username       string
	Type           ConnectionType
	IP             net.IP
	Port           uint32
	Token          uint32
	PrivilegedUser bool
}

func DecodeConnectToPeer(payload []byte) (ConnectToPeer, error) {
	d := wire.NewDecoder(payload)
	username, err := d.GetString()
	if err != nil {
		return ConnectToPeer{}, err
	}
	typ, err := d.GetString()
	if err != nil {
		return ConnectToPeer{}, err
	}
	ip, err := d.GetIPv4()
	if err != nil {
		return ConnectToPeer{}, err
	}
	port, err := d.GetUint32()
	if err != nil {
		return ConnectToPeer{}, err
	}
	token, err := d.GetUint32()
	if err != nil {
		return ConnectToPeer{}, err
	}
	privileged := false
	if d.Remaining() > 0 {
		privileged, _ = d.GetBool()
	}
	return ConnectToPeer{
		Username: username,
		Type:     ParseConnectionType(typ),
		IP:       ip,
		Port:     port,
		Token:    token,
		PrivilegedUser: privileged,
	}, nil
}

type Room struct {
	Name      string
	UserCount uint32
}

func DecodeRoomList(payload []byte) ([]Room, error) {
	d := wire.NewDecoder(payload)
	names, err := wire.GetList(d, (*wire.Decoder).GetString)
	if err != nil {
		return nil, err
	}
	counts, err := wire.GetList(d, (*wire.Decoder).GetUint32)
	if err != nil {
		return nil, err
	}
	rooms := make([]Room, len(names))
	for i, n := range names {
		r := Room{Name: n}
		if i < len(counts) {
			r.UserCount = counts[i]
		}
		rooms[i] = r
	}
	return rooms, nil
}
