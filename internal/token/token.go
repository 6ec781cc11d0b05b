// Package token generates and reserves the 32-bit correlation
// identifiers used for searches, transfers, and queued peer messages.
package token

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	pqueue "github.com/prxssh/slsk/pkg/utils/heap"
)

type reservation struct {
	token    uint32
	deadline time.Time
}

// Arena issues random tokens and tracks their reservation deadline so
// a maintenance goroutine can release any token whose holder never
// produced a correlated response.
type Arena struct {
	mu       sync.Mutex
	inUse    map[uint32]struct{}
	deadline time.Duration

	expiry *pqueue.PriorityQueue[reservation]

	stop chan struct{}
	once sync.Once
}

// NewArena constructs an Arena that releases reservations left
// unanswered for longer than deadline. A deadline of 0 disables
// automatic expiry.
func NewArena(deadline time.Duration) *Arena {
	a := &Arena{
		inUse:    make(map[uint32]struct{}),
		deadline: deadline,
		expiry: pqueue.NewPriorityQueue(func(a, b reservation) bool {
			return a.deadline.Before(b.deadline)
		}),
		stop: make(chan struct{}),
	}
	if deadline > 0 {
		go a.reap()
	}
	return a
}

// Reserve returns a fresh token guaranteed not to collide with any
// currently reserved token.
func (a *Arena) Reserve() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()

	var t uint32
	for {
		t = randomUint32()
		if _, taken := a.inUse[t]; !taken {
			break
		}
	}
	a.inUse[t] = struct{}{}

	if a.deadline > 0 {
		a.expiry.Enqueue(reservation{token: t, deadline: time.Now().Add(a.deadline)})
	}

	return t
}

// Release frees t for reuse. Releasing an unreserved token is a no-op.
func (a *Arena) Release(t uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inUse, t)
}

// InUse reports whether t is currently reserved.
func (a *Arena) InUse(t uint32) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.inUse[t]
	return ok
}

func (a *Arena) reap() {
	ticker := time.NewTicker(a.deadline / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			a.mu.Lock()
			for {
				item, ok := a.expiry.Peek()
				if !ok || item.deadline.After(now) {
					break
				}
				item, _ = a.expiry.Dequeue()
				delete(a.inUse, item.token)
			}
			a.mu.Unlock()
		case <-a.stop:
			return
		}
	}
}

// Close stops the reaper goroutine, if running.
func (a *Arena) Close() {
	a.once.Do(func() { close(a.stop) })
}

func randomUint32() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}
