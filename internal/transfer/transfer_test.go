package transfer

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnqueueAvoidsCollisions(t *testing.T) {
	dir := t.TempDir()
	e := New(&Config{DownloadDir: dir, ChunkSize: 4096, QueueSize: 10}, nil, nil)

	dl1, err := e.Enqueue("alice", `music\track.mp3`, 100, 1)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if filepath.Base(dl1.DestPath) != "track.mp3" {
		t.Fatalf("DestPath = %q", dl1.DestPath)
	}

	os.WriteFile(dl1.DestPath, []byte("existing"), 0o644)

	dl2, err := e.Enqueue("alice", `music\track.mp3`, 100, 2)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if filepath.Base(dl2.DestPath) != "track (1).mp3" {
		t.Fatalf("DestPath = %q", dl2.DestPath)
	}
}

func TestRunStreamsDataAndTracksProgress(t *testing.T) {
	dir := t.TempDir()
	e := New(&Config{DownloadDir: dir, ChunkSize: 4, QueueSize: 10}, nil, nil)

	dl, err := e.Enqueue("bob", "song.mp3", 8, 1)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	server, client := net.Pipe()
	defer client.Close()

	go func() {
		var tokenBuf [4]byte
		binary.LittleEndian.PutUint32(tokenBuf[:], dl.Token)
		client.Write(tokenBuf[:])

		var offsetBuf [8]byte
		io.ReadFull(client, offsetBuf[:])
		if binary.LittleEndian.Uint64(offsetBuf[:]) != 0 {
			t.Errorf("start offset = %d, want 0", binary.LittleEndian.Uint64(offsetBuf[:]))
		}

		client.Write([]byte("12345678"))
		client.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := e.Run(ctx, dl, server); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if dl.Status() != StatusComplete {
		t.Fatalf("status = %v", dl.Status())
	}
	if dl.Percentage() != 100 {
		t.Fatalf("percentage = %d", dl.Percentage())
	}

	got, err := os.ReadFile(dl.DestPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "12345678" {
		t.Fatalf("contents = %q", got)
	}
}
