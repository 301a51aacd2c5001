package workflow

import "sync"

// Emitter delivers transcript messages, including stream chunks, to the
// host application over a buffered channel. Emit never blocks the run: when
// the consumer falls behind, messages are dropped from the channel rather
// than stalling an agent turn. The transcript itself is the source of truth;
// the channel exists for incremental rendering only.
type Emitter struct {
	ch     chan Message
	closed bool
	mu     sync.Mutex
}

// NewEmitter creates an Emitter with the given channel buffer size.
func NewEmitter(bufferSize int) *Emitter {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Emitter{ch: make(chan Message, bufferSize)}
}

// Emit sends a message to the channel. Events sent after Close, or while
// the buffer is full, are silently dropped.
func (e *Emitter) Emit(msg Message) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	select {
	case e.ch <- msg:
	default:
	}
}

// Events returns the read-only message channel.
func (e *Emitter) Events() <-chan Message {
	return e.ch
}

// Close closes the channel. Safe to call multiple times.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}
