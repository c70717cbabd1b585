package session

import (
	"sync"
	"time"

	"github.com/parterm-dev/parterm/wire"
)

// outputBatchWindow is how long outgoing PTY bytes are accumulated before
// being flushed as a single Output message, trading latency for fewer,
// larger frames under heavy output.
const outputBatchWindow = 16 * time.Millisecond

// outputFlushThreshold forces an early flush once this many bytes have
// accumulated, bounding per-message size independent of the timer.
const outputFlushThreshold = 64 * 1024

type outputBatcher struct {
	mu   sync.Mutex
	buf  []byte
}

// HandleShellOutput feeds raw PTY bytes into the terminal engine and queues
// them for batched broadcast. It is the callback passed to pty.New.
func (s *Session) HandleShellOutput(data []byte) {
	_, _ = s.Term.Write(data)
	s.scanTriggers()

	s.outBatch.mu.Lock()
	s.outBatch.buf = append(s.outBatch.buf, data...)
	flush := len(s.outBatch.buf) >= outputFlushThreshold
	s.outBatch.mu.Unlock()

	if flush {
		s.flushOutput()
	}
}

func (s *Session) flushOutput() {
	s.outBatch.mu.Lock()
	if len(s.outBatch.buf) == 0 {
		s.outBatch.mu.Unlock()
		return
	}
	chunk := s.outBatch.buf
	s.outBatch.buf = nil
	s.outBatch.mu.Unlock()

	s.Broadcast(wire.MsgOutput, &wire.Output{Data: chunk}, wire.EventOutput)
}

// outputFlushLoop periodically flushes batched output on a timer,
// independent of the size-triggered flush in HandleShellOutput.
func (s *Session) outputFlushLoop() {
	ticker := time.NewTicker(outputBatchWindow)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.flushOutput()
		}
	}
}
