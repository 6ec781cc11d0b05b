package transfer

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
)

// Run completes the FileTransfer connection handshake and then streams
// filesize bytes from conn into the destination file, advancing the
// Download's progress counter one chunk at a time. The caller is
// expected to have already completed the peer-side
// TransferRequest/TransferResponse exchange; conn is a freshly opened
// FileTransfer connection on which the first bytes are the raw u32
// init_token rather than file data.
func (e *Engine) Run(ctx context.Context, dl *Download, conn net.Conn) error {
	dl.setStatus(StatusStarting)
	e.publish(dl)

	var tokenBuf [4]byte
	if _, err := io.ReadFull(conn, tokenBuf[:]); err != nil {
		dl.setStatus(StatusFailed)
		e.publish(dl)
		return fmt.Errorf("read init token: %w", err)
	}
	initToken := binary.LittleEndian.Uint32(tokenBuf[:])
	if initToken != dl.Token {
		e.log.Warn("init token does not match queued download", "want", dl.Token, "got", initToken)
	}

	f, err := os.Create(dl.DestPath)
	if err != nil {
		dl.setStatus(StatusFailed)
		e.publish(dl)
		return fmt.Errorf("create destination: %w", err)
	}
	defer f.Close()

	// Acknowledge with the starting byte offset, telling the peer to
	// begin streaming from the beginning of the file; resume support
	// would send the count of bytes already on disk instead of 0.
	var offsetBuf [8]byte
	binary.LittleEndian.PutUint64(offsetBuf[:], 0)
	if _, err := conn.Write(offsetBuf[:]); err != nil {
		dl.setStatus(StatusFailed)
		e.publish(dl)
		return fmt.Errorf("write start offset: %w", err)
	}

	dl.setStatus(StatusDownloading)
	e.publish(dl)

	buf := make([]byte, e.cfg.ChunkSize)
	var total uint64

	for {
		select {
		case <-ctx.Done():
			dl.setStatus(StatusFailed)
			e.publish(dl)
			return ctx.Err()
		default:
		}

		n, readErr := conn.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				dl.setStatus(StatusFailed)
				e.publish(dl)
				return fmt.Errorf("write chunk: %w", writeErr)
			}
			total += uint64(n)
			dl.addProgress(uint64(n))
			e.publish(dl)
		}

		if readErr != nil {
			if (readErr == io.EOF && dl.Filesize == 0) || (dl.Filesize > 0 && total >= dl.Filesize) {
				break
			}
			dl.setStatus(StatusFailed)
			e.publish(dl)
			return fmt.Errorf("read chunk: %w", readErr)
		}

		if dl.Filesize > 0 && total >= dl.Filesize {
			break
		}
	}

	dl.setStatus(StatusComplete)
	e.publish(dl)
	return nil
}
