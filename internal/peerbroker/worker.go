package peerbroker

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"time"

	"github.com/prxssh/slsk/internal/catalog"
	"github.com/prxssh/slsk/internal/events"
)

// work is one of the ~256 pool goroutines draining the unified TCP
// queue. Each item gets exactly one message exchange: a single
// request read (or write, for the shares/search-result path) and the
// connection is then closed. Peers that want another exchange open a
// fresh connection, mirroring the one-message-per-connection policy.
func (b *Broker) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-b.tcpQueue:
			b.handle(item)
		}
	}
}

func (b *Broker) handle(item workItem) {
	// FileTransfer connections carry no code/length framing at all:
	// the first bytes on the wire are the raw u32 init_token the
	// transfer engine itself reads, so this type is routed straight
	// to onFileTransfer before any peer-message parsing is attempted.
	if item.Type == catalog.ConnectionFileTransfer {
		if b.onFileTransfer != nil {
			go b.onFileTransfer(item.Conn, item.Username, item.Token)
			return
		}
		item.Conn.Close()
		b.log.Debug("file transfer connection with no handler", "username", item.Username)
		return
	}

	defer item.Conn.Close()

	if pending, ok := b.pendingBytes.Get(item.Token); ok {
		item.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if _, err := item.Conn.Write(pending); err != nil {
			b.log.Debug("failed to flush pending message", "username", item.Username, "err", err)
			return
		}
		b.pendingBytes.Delete(item.Token)
	}

	item.Conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	code, payload, err := readPeerFrame(item.Conn)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			b.log.Debug("peer read failed", "username", item.Username, "err", err)
		}
		return
	}

	switch code {
	case catalog.CodeSharedFileListRequest:
		b.replyShares(item.Conn)

	case catalog.CodeFileSearchResponse:
		b.handleSearchResponse(item.Username, payload)

	case catalog.CodeTransferRequest:
		b.handleTransferRequest(item, payload)

	case catalog.CodeTransferResponse:
		b.handleTransferResponse(item.Username, payload)

	case catalog.CodeQueueUpload:
		b.handleQueueUpload(item.Username, payload)

	default:
		b.log.Debug("unhandled peer message", "code", code, "username", item.Username)
	}
}

func (b *Broker) replyShares(conn net.Conn) {
	msg := b.getSharesMessage()
	if msg == nil {
		msg = catalog.SharedFileListResponse{}.Encode()
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	conn.Write(msg)
}

func (b *Broker) handleSearchResponse(username string, payload []byte) {
	resp, err := catalog.DecodeFileSearchResponse(payload)
	if err != nil {
		b.log.Debug("malformed FileSearchResponse", "username", username, "err", err)
		return
	}

	count, _ := b.searchCounts.Get(resp.Token)
	if count >= catalog.MaxResults {
		b.log.Debug("search result cap reached, dropping", "token", resp.Token)
		return
	}
	b.searchCounts.Put(resp.Token, count+len(resp.Files))

	files := make([]events.FileView, 0, len(resp.Files))
	for _, f := range resp.Files {
		files = append(files, events.FileView{
			Filename: f.Filename,
			Size:     f.Size,
			Bitrate:  attrValue(f.Attributes, catalog.AttrBitrate),
			Duration: attrValue(f.Attributes, catalog.AttrDuration),
		})
	}

	if b.bus != nil && len(files) > 0 {
		b.bus.Publish(events.NewSearchResults(resp.Token, username, files, resp.SlotFree, resp.AvgSpeed))
	}
}

func attrValue(attrs []catalog.FileAttribute, tag catalog.FileAttributeTag) uint32 {
	for _, a := range attrs {
		if a.Tag == tag {
			return a.Value
		}
	}
	return 0
}

func (b *Broker) handleTransferRequest(item workItem, payload []byte) {
	req, err := catalog.DecodeTransferRequest(payload)
	if err != nil {
		b.log.Debug("malformed TransferRequest", "username", item.Username, "err", err)
		return
	}

	allow, reason := b.decideTransfer(item.Username, req)
	resp := catalog.TransferResponse{Token: req.Token, Allowed: allow, Reason: reason}
	item.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	item.Conn.Write(resp.Encode())
}

// decideTransfer answers a peer's TransferRequest. An UploadToPeer
// request (the peer offering us a file) is always accepted and its
// (filename, filesize) queued in fileInfo under the request's token
// as a per-token FIFO. The transfer engine does not read this queue;
// it finds a download by token through Engine.ByToken.
func (b *Broker) decideTransfer(username string, req catalog.TransferRequest) (bool, string) {
	if req.Direction == catalog.UploadToPeer {
		queue, _ := b.fileInfo.Get(req.Token)
		queue = append(queue, queuedFile{Filename: req.Filename, Filesize: req.Filesize, HasSize: req.HasSize})
		b.fileInfo.Put(req.Token, queue)
		return true, ""
	}
	return false, "Queued"
}

func (b *Broker) handleTransferResponse(username string, payload []byte) {
	if b.bus == nil {
		return
	}
	b.log.Debug("transfer response received", "username", username, "bytes", len(payload))
}

func (b *Broker) handleQueueUpload(username string, payload []byte) {
	b.log.Debug("queue upload request", "username", username, "bytes", len(payload))
}

func readPeerFrame(conn net.Conn) (uint32, []byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return 0, nil, err
	}
	length := binary.LittleEndian.Uint32(header[:4])
	code := binary.LittleEndian.Uint32(header[4:8])
	if length < 4 {
		return code, nil, nil
	}
	payload := make([]byte, length-4)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return code, nil, err
	}
	return code, payload, nil
}
