package server

import (
	"github.com/prxssh/slsk/internal/catalog"
	"github.com/prxssh/slsk/internal/events"
)

// dispatch translates one decoded server frame into bus events and,
// where the peer broker needs to react (address resolution, indirect
// connects), direct calls against the PeerAddressResolver.
func (s *Session) dispatch(code uint32, payload []byte) error {
	switch code {
	case catalog.CodeGetPeerAddress:
		resp, err := catalog.DecodeGetPeerAddressResponse(payload)
		if err != nil {
			return err
		}
		if s.peer != nil {
			s.peer.RecordPeerAddress(resp.Username, resp.IP, resp.Port)
		}

	case catalog.CodeConnectToPeer:
		req, err := catalog.DecodeConnectToPeer(payload)
		if err != nil {
			return err
		}
		if s.peer != nil {
			s.peer.EnqueueIndirect(req)
		}

	case catalog.CodeSayChatroom:
		msg, err := catalog.DecodeSayChatroom(payload)
		if err != nil {
			return err
		}
		if s.bus != nil {
			s.bus.Publish(events.GenericEvent[events.ChatroomMessageData]{Data: events.ChatroomMessageData{
				Room: msg.Room, Username: msg.Username, Message: msg.Message,
			}})
		}

	case catalog.CodeRoomList:
		rooms, err := catalog.DecodeRoomList(payload)
		if err != nil {
			return err
		}
		views := make([]events.RoomView, 0, len(rooms))
		for _, r := range rooms {
			views = append(views, events.RoomView{Name: r.Name, UserCount: r.UserCount})
		}
		if s.bus != nil {
			s.bus.Publish(events.GenericEvent[events.RoomListData]{Data: events.RoomListData{Rooms: views}})
		}

	case catalog.CodeUserJoinedRoom, catalog.CodeUserLeftRoom:
		// Room membership deltas; forwarded as a generic room update so
		// the UI can refresh without the session knowing its shape.
		if s.bus != nil {
			s.bus.Publish(events.GenericEvent[events.UpdateRoomData]{Data: events.UpdateRoomData{}})
		}

	case catalog.CodeCantConnectToPeer:
		s.log.Debug("server reports peer unreachable")

	case catalog.CodeRelogged:
		// Another client logged in as us; the server drops this
		// connection right after, so tear down rather than wait for
		// the read to fail.
		s.log.Warn("relogged from another client, disconnecting")
		if s.bus != nil {
			s.bus.Publish(events.NewLoginResult(false, "OtherLogin"))
		}
		s.Close()

	default:
		s.log.Debug("unhandled server message", "code", code)
	}

	return nil
}

// JoinRoom requests membership in room and queues the request on the
// write loop.
func (s *Session) JoinRoom(room string) {
	s.Enqueue(catalog.EncodeJoinRoom(room))
}

// LeaveRoom queues a room-leave request.
func (s *Session) LeaveRoom(room string) {
	s.Enqueue(catalog.EncodeLeaveRoom(room))
}

// SendChatMessage queues a chat message for room.
func (s *Session) SendChatMessage(room, message string) {
	s.Enqueue(catalog.SayChatroom{Room: room, Message: message}.EncodeSend())
}

// Search queues a global file search under token.
func (s *Session) Search(token uint32, query string) {
	s.Enqueue(catalog.EncodeFileSearch(token, query))
}

// SetStatus queues an online/away/offline status update.
func (s *Session) SetStatus(status catalog.UserStatus) {
	s.Enqueue(catalog.EncodeSetStatus(status))
}

// AnnounceShares queues the directory/file counts the server shows
// other users before they ever ask for the full list.
func (s *Session) AnnounceShares(dirCount, fileCount uint32) {
	s.Enqueue(catalog.EncodeSharedFoldersFiles(dirCount, fileCount))
}

// RequestPeerAddress asks the server to resolve username to an IP and
// port so the peer broker can dial it directly.
func (s *Session) RequestPeerAddress(username string) {
	s.Enqueue(catalog.EncodeGetPeerAddressRequest(username))
}
